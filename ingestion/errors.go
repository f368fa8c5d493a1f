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


package ingestion

import "errors"

var (
	// ErrCallSourceRequired is returned when a call source is not provided.
	ErrCallSourceRequired = errors.New("call source required")

	// ErrCallRepositoryRequired is returned when a call repository is not provided.
	ErrCallRepositoryRequired = errors.New("call repository required")

	// ErrSegmentRepositoryRequired is returned when a segment repository is not provided.
	ErrSegmentRepositoryRequired = errors.New("segment repository required")

	// ErrFeatureRepositoryRequired is returned when a feature repository is not provided.
	ErrFeatureRepositoryRequired = errors.New("feature repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyTranscript indicates a call transcript contained no spoken text.
	ErrEmptyTranscript = errors.New("empty transcript")
)
