// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import "github.com/callvista/callsight/storage"

// NewMemoryRepositories creates in-memory call, segment, and feature
// repositories for testing.
// Caller must close all three repos and the backend when done.
func NewMemoryRepositories() (storage.CallRepository, storage.SegmentRepository, storage.FeatureRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	callRepo, err := NewCallRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	segmentRepo, err := NewSegmentRepository(backend)
	if err != nil {
		callRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	featureRepo, err := NewFeatureRepository(backend)
	if err != nil {
		segmentRepo.Close()
		callRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return callRepo, segmentRepo, featureRepo, backend, nil
}
