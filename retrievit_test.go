package retrievit

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	opts = append([]EngineOption{WithInMemory(), WithProvider(mock.NewMockProvider())}, opts...)
	e, err := NewEngine("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngineAddAndSearch(t *testing.T) {
	e := newTestEngine(t, WithBM25Weight(1.0))
	ctx := context.Background()

	added, err := e.AddDocuments(ctx,
		core.Document{ID: "lm", Content: "lm fits linear models"},
		core.Document{ID: "plot", Content: "plot draws graphics"},
		core.Document{ID: "read", Content: "read.csv loads data files"},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, 3, e.Len())

	results, err := e.Search(ctx, "linear models", 2)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "lm", results[0].Doc.ID)
}

func TestEnginePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	e, err := NewEngine(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	_, err = e.AddDocuments(ctx, core.Document{ID: "a", Content: "alpha material"})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	reopened, err := NewEngine(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 1, reopened.Len())
	results, err := reopened.Search(ctx, "alpha", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Doc.ID)
}

func TestEngineAsk(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		if strings.Contains(prompt, "query analysis expert") {
			return `[{"question": "How to use lm()?", "type": "function", "priority": 1}]`, nil
		}
		return "Use lm() to fit the model.", nil
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), generator)

	e := newTestEngine(t, WithProvider(provider))
	ctx := context.Background()

	_, err := e.AddDocuments(ctx, core.Document{ID: "lm", Content: "lm fits linear models"})
	require.NoError(t, err)

	answer, err := e.Ask(ctx, "How do I fit a linear model?")
	require.NoError(t, err)
	assert.Equal(t, "Use lm() to fit the model.", answer)
}

func TestEngineAskRejectsEmptyQuery(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Ask(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptyQuestion)
}

func TestEngineSearchEmptyCorpus(t *testing.T) {
	e := newTestEngine(t)

	results, err := e.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
