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


// Package storage provides the persistence abstraction for retrievit.
//
// The document store only needs one thing from durable storage: opaque
// named blobs with load/save round-trip correctness. The BlobStore
// interface captures exactly that, which keeps backends swappable
// (BadgerDB in production, in-memory for tests) without the retrieval
// core knowing about either.
//
// The serialization helpers in this package encode corpus snapshots in
// MUS binary format. Snapshots carry each document together with its
// embedding, so restoring a store never re-embeds the corpus; the lexical
// index is instead rebuilt from the restored documents, which is cheap.
//
// # Thread Safety
//
// All BlobStore implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
