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

// Package storage provides the storage abstraction layer for issuegraph.
//
// This package defines the repository interfaces that decouple the record
// corpus from search and graph synthesis. Search and graph code only depend
// on RecordReader, so tests can substitute any in-memory or failing reader.
//
// # Architecture
//
//   - Repository: transaction support and lifecycle shared by all repositories
//   - RecordReader: per-kind listing used by the search component
//   - RecordRepository: full corpus management (upsert, get, delete, count)
//
// Records are stored in the MUS binary format (see RecordMUS). IDs are
// content-derived, so re-ingesting a record overwrites it in place.
//
// # Usage
//
// Create a repository instance:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	repo := badger.NewRecordRepository(backend)
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation.
// Pass context.Background() for operations without specific
// timeout requirements.
package storage
