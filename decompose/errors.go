package decompose

import "errors"

// ErrGeneratorRequired is returned when creating a decomposer without a generator.
var ErrGeneratorRequired = errors.New("generator is required")
