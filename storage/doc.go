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

// Package storage provides the persistence abstraction for dealflow.
//
// The only persisted state is the embedding cache: vectors computed for corpus
// signals, keyed by embedding model and signal id and tagged with the content
// hash of the text they were computed from. The corpus itself always comes from
// its source file and is never written here.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interface rather than the concrete type:
//
//	cache, err := badger.NewEmbeddingCache(backend) // returns storage.EmbeddingCache
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/var/cache/dealflow", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, err := badger.NewEmbeddingCache(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
// Use in tests with in-memory storage:
//
//	cache, err := badger.NewMemoryEmbeddingCache()
//
// # Serialization
//
// Cached embeddings are encoded with mus-go serializers (see
// MarshalSignalEmbedding). The format carries no version tag; a decode
// failure is treated as a cache miss by callers.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
