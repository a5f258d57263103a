package mock

import (
	"context"
	"strings"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default echo behavior.
	GenerateFunc func(ctx context.Context, prompt string, supportingDocs []string) (string, error)

	callCount int
	// lastPrompt holds the prompt from the most recent Generate call.
	lastPrompt string
}

// NewMockGenerator creates a mock generator with default echo behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate produces a canned completion.
// Default behavior: echoes the first line of the prompt with a fixed prefix,
// which is enough for callers that only assert on non-empty output.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, supportingDocs []string) (string, error) {
	m.callCount++
	m.lastPrompt = prompt

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, supportingDocs)
	}

	firstLine, _, _ := strings.Cut(strings.TrimSpace(prompt), "\n")
	return "mock response: " + firstLine, nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// LastPrompt returns the prompt passed to the most recent Generate call.
func (m *MockGenerator) LastPrompt() string {
	return m.lastPrompt
}
