package store

import "errors"

var (
	// ErrEmbedderRequired is returned when creating a store without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmbeddingCountMismatch is returned when the embedder returns a
	// different number of vectors than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedder returned wrong number of vectors")

	// ErrUnknownDocument is returned when setting vectors for an ID not in
	// the corpus.
	ErrUnknownDocument = errors.New("document not in corpus")
)
