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


// Package storage provides the storage abstraction layer for CallSight.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic. It allows for different storage backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern with one repository per
// corpus:
//
//   - CallRepository: Call rows with summary embeddings
//   - SegmentRepository: Transcript segment rows
//   - FeatureRepository: Feature request rows
//
// All three embed the common Repository interface, whose FindSimilar method is
// the similarity-search capability the retrieval engine pages over.
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types to enforce abstraction and enable
// alternative backends; internal constructors may return concrete types.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context. Pass context.Background()
// for operations without specific timeout requirements.
package storage
