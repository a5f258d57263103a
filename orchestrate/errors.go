package orchestrate

import "errors"

var (
	// ErrDecomposerRequired is returned when creating an orchestrator without a decomposer.
	ErrDecomposerRequired = errors.New("decomposer is required")

	// ErrMultiHopRequired is returned when creating an orchestrator without a multi-hop retriever.
	ErrMultiHopRequired = errors.New("multi-hop retriever is required")

	// ErrGeneratorRequired is returned when creating an orchestrator without a generator.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrInvalidTimeout is returned for a non-positive model timeout.
	ErrInvalidTimeout = errors.New("model timeout must be positive")
)
