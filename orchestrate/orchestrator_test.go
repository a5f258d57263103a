package orchestrate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/decompose"
	"github.com/poiesic/retrievit/retrieve"
	"github.com/poiesic/retrievit/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestOrchestrator wires an orchestrator over a small corpus with the
// given generator handling both decomposition and synthesis.
func newTestOrchestrator(t *testing.T, gen *mock.MockGenerator) *Orchestrator {
	t.Helper()

	embedder := mock.NewMockEmbedder()
	s, err := store.NewDocumentStore(embedder)
	require.NoError(t, err)
	t.Cleanup(s.Release)

	_, err = s.AddDocuments(context.Background(),
		core.Document{ID: "lm", Content: "lm(formula, data) fits linear models in R", Meta: core.DocumentMeta{Type: "man_page", Package: "stats", Function: "lm"}},
		core.Document{ID: "plot", Content: "plot(x, y) produces scatter plots", Meta: core.DocumentMeta{Type: "man_page", Package: "graphics", Function: "plot"}},
		core.Document{ID: "diag", Content: "Check residuals for linear regression assumptions", Meta: core.DocumentMeta{Type: "vignette", Task: "statistical_modeling"}},
	)
	require.NoError(t, err)

	r, err := retrieve.NewRetriever(s, embedder)
	require.NoError(t, err)
	mh, err := retrieve.NewMultiHopRetriever(r)
	require.NoError(t, err)
	d, err := decompose.NewDecomposer(gen)
	require.NoError(t, err)

	o, err := NewOrchestrator(d, mh, gen)
	require.NoError(t, err)
	return o
}

func TestProcessQueryRejectsEmptyQuery(t *testing.T) {
	o := newTestOrchestrator(t, mock.NewMockGenerator())

	_, err := o.ProcessQuery(context.Background(), "  ")
	assert.ErrorIs(t, err, core.ErrEmptyQuestion)
}

func TestProcessQueryFullWorkflow(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		if strings.Contains(prompt, "query analysis expert") {
			return `[{"question": "How to use lm()?", "type": "function", "priority": 1}]`, nil
		}
		return "Fit the model with lm():\n```r\nfit <- lm(y ~ x)\nsummary(fit)\n```", nil
	}

	o := newTestOrchestrator(t, gen)
	answer, err := o.ProcessQuery(context.Background(), "How do I fit a linear model?")
	require.NoError(t, err)
	assert.Contains(t, answer, "lm()")
	assert.NotContains(t, answer, "Validation Notes")
}

func TestProcessQuerySynthesisPromptContents(t *testing.T) {
	var synthesisPromptSeen string
	var supportingSeen []string

	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		if strings.Contains(prompt, "query analysis expert") {
			return `[{"question": "How to use lm()?", "type": "function", "priority": 1}]`, nil
		}
		synthesisPromptSeen = prompt
		supportingSeen = docs
		return "an answer", nil
	}

	o := newTestOrchestrator(t, gen)
	_, err := o.ProcessQuery(context.Background(), "How do I fit a linear model?")
	require.NoError(t, err)

	assert.Contains(t, synthesisPromptSeen, "How do I fit a linear model?")
	assert.Contains(t, synthesisPromptSeen, "1. How to use lm()? (type: function, priority: 1)")
	assert.NotEmpty(t, supportingSeen)
	assert.LessOrEqual(t, len(supportingSeen), 5)
}

func TestProcessQueryDegradesOnSynthesisFailure(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		if strings.Contains(prompt, "query analysis expert") {
			return `[{"question": "How to use lm()?", "type": "function", "priority": 1}]`, nil
		}
		return "", errors.New("model overloaded")
	}

	o := newTestOrchestrator(t, gen)
	answer, err := o.ProcessQuery(context.Background(), "How do I fit a linear model?")
	require.NoError(t, err)

	// Degraded answer carries the raw retrieved context.
	assert.Contains(t, answer, "could not generate a complete answer")
	assert.Contains(t, answer, "fits linear models")
}

func TestProcessQueryDegradesOnDecompositionFailure(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		if strings.Contains(prompt, "query analysis expert") {
			return "", errors.New("model down")
		}
		return "synthesized from fallback sub-questions", nil
	}

	o := newTestOrchestrator(t, gen)
	answer, err := o.ProcessQuery(context.Background(), "how to plot residuals")
	require.NoError(t, err)
	assert.Equal(t, "synthesized from fallback sub-questions", answer)
}

func TestProcessQueryAnnotatesDangerousCode(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		if strings.Contains(prompt, "query analysis expert") {
			return `[{"question": "cleanup", "type": "general", "priority": 1}]`, nil
		}
		return "Clean up like this:\n```r\nold <- list.files()\nfile.remove(old)\n```", nil
	}

	o := newTestOrchestrator(t, gen)
	answer, err := o.ProcessQuery(context.Background(), "remove old files")
	require.NoError(t, err)
	assert.Contains(t, answer, "**Validation Notes:**")
	assert.Contains(t, answer, "file.remove(")
}

func TestProcessQueryModelTimeout(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		if strings.Contains(prompt, "query analysis expert") {
			return `[{"question": "slow", "type": "general", "priority": 1}]`, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return "too late", nil
		}
	}

	embedder := mock.NewMockEmbedder()
	s, err := store.NewDocumentStore(embedder)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	_, err = s.AddDocuments(context.Background(), core.Document{ID: "a", Content: "alpha"})
	require.NoError(t, err)

	r, err := retrieve.NewRetriever(s, embedder)
	require.NoError(t, err)
	mh, err := retrieve.NewMultiHopRetriever(r)
	require.NoError(t, err)
	d, err := decompose.NewDecomposer(gen)
	require.NoError(t, err)

	o, err := NewOrchestrator(d, mh, gen, WithModelTimeout(50*time.Millisecond))
	require.NoError(t, err)

	answer, err := o.ProcessQuery(context.Background(), "anything slow")
	require.NoError(t, err)
	assert.Contains(t, answer, "could not generate a complete answer")
}

func TestNewOrchestratorValidatesCollaborators(t *testing.T) {
	_, err := NewOrchestrator(nil, nil, mock.NewMockGenerator())
	assert.ErrorIs(t, err, ErrDecomposerRequired)

	_, err = NewOrchestrator(nil, nil, nil)
	assert.ErrorIs(t, err, ErrDecomposerRequired)
}
