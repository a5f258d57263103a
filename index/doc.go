// Package index provides the two in-process indices backing hybrid
// retrieval: a BM25 Okapi lexical index and a flat exact nearest-neighbor
// vector index.
//
// Both structures are designed for the snapshot discipline used by the
// document store: the lexical index is immutable after construction, and
// the vector index is cloned before the store extends it, so published
// snapshots are never mutated under a concurrent reader.
package index
