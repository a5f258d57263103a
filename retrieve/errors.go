package retrieve

import "errors"

var (
	// ErrStoreRequired is returned when creating a retriever without a store.
	ErrStoreRequired = errors.New("document store is required")

	// ErrEmbedderRequired is returned when creating a retriever without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrRetrieverRequired is returned when creating a multi-hop retriever without a retriever.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrInvalidTopK is returned for a negative result count.
	ErrInvalidTopK = errors.New("topK must not be negative")

	// ErrInvalidWeight is returned when the lexical weight is outside [0, 1].
	ErrInvalidWeight = errors.New("bm25 weight must be within [0, 1]")
)
