// Package store maintains the document corpus and its search indices.
//
// The store keeps documents, a BM25 lexical index, and a vector index in
// an immutable snapshot published through an atomic pointer. Writers take
// a mutex, build the next snapshot, and swap it in; readers load whatever
// snapshot is current and are never blocked by writes.
//
// New documents are embedded in fixed-size batches on a worker pool before
// indexing. Snapshots can be persisted to and restored from a blob store;
// a missing or corrupt blob degrades to an empty store instead of failing.
package store
