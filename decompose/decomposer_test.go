package decompose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDecomposer(t *testing.T, gen *mock.MockGenerator) *Decomposer {
	t.Helper()
	d, err := NewDecomposer(gen)
	require.NoError(t, err)
	return d
}

func TestDecomposeRejectsEmptyQuery(t *testing.T) {
	d := newDecomposer(t, mock.NewMockGenerator())

	_, err := d.Decompose(context.Background(), "   ")
	assert.ErrorIs(t, err, core.ErrEmptyQuestion)
}

func TestDecomposeParsesModelJSON(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		return `Here are the sub-questions:
[
  {"question": "What packages are available for linear regression?", "type": "package", "priority": 2},
  {"question": "How to use lm()?", "type": "function", "priority": 1}
]
Done.`, nil
	}

	d := newDecomposer(t, gen)
	subQs, err := d.Decompose(context.Background(), "How do I fit a linear model?")
	require.NoError(t, err)
	require.Len(t, subQs, 2)

	// Sorted ascending by priority.
	assert.Equal(t, "How to use lm()?", subQs[0].Question)
	assert.Equal(t, core.QuestionFunction, subQs[0].Type)
	assert.Equal(t, core.PriorityCritical, subQs[0].Priority)
	assert.Equal(t, core.QuestionPackage, subQs[1].Type)
}

func TestDecomposeRepairsBrokenKeyQuoting(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		// Missing opening quote before "type", a failure mode seen in
		// small-model output.
		return `[{"question": "How to use lm()?", type": "function", "priority": 1}]`, nil
	}

	d := newDecomposer(t, gen)
	subQs, err := d.Decompose(context.Background(), "lm usage")
	require.NoError(t, err)
	require.Len(t, subQs, 1)
	assert.Equal(t, core.QuestionFunction, subQs[0].Type)
}

func TestDecomposeUnknownTypeAndPriorityNormalized(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		return `[{"question": "Something odd", "type": "mystery", "priority": 9}]`, nil
	}

	d := newDecomposer(t, gen)
	subQs, err := d.Decompose(context.Background(), "odd question")
	require.NoError(t, err)
	require.Len(t, subQs, 1)
	assert.Equal(t, core.QuestionGeneral, subQs[0].Type)
	assert.Equal(t, core.PriorityHelpful, subQs[0].Priority)
}

func TestDecomposeFallsBackOnGeneratorError(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		return "", errors.New("model unavailable")
	}

	d := newDecomposer(t, gen)
	subQs, err := d.Decompose(context.Background(), "How do I make a plot?")
	require.NoError(t, err)
	require.NotEmpty(t, subQs)
	assert.Equal(t, "How to create plots in R?", subQs[0].Question)
}

func TestDecomposeFallsBackOnMalformedResponse(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, docs []string) (string, error) {
		return "I cannot answer in JSON, sorry.", nil
	}

	d := newDecomposer(t, gen)
	subQs, err := d.Decompose(context.Background(), "completely novel question")
	require.NoError(t, err)
	require.Len(t, subQs, 1)
	assert.Equal(t, "completely novel question", subQs[0].Question)
	assert.Equal(t, core.QuestionGeneral, subQs[0].Type)
	assert.Equal(t, core.PriorityCritical, subQs[0].Priority)
}

func TestFallbackLinearRegressionRule(t *testing.T) {
	subQs := fallbackDecomposition("Explain linear regression assumptions and diagnostics")
	require.Len(t, subQs, 3)

	var conceptQ string
	for _, sq := range subQs {
		if sq.Type == core.QuestionConcept {
			conceptQ = sq.Question
		}
	}
	assert.Contains(t, strings.ToLower(conceptQ), "assumption")
}

func TestFallbackMultipleRulesFire(t *testing.T) {
	subQs := fallbackDecomposition("plot my linear regression results")
	// Both the regression rule (3) and the plot rule (2) fire.
	assert.Len(t, subQs, 5)
}

func TestFallbackDataImportRule(t *testing.T) {
	subQs := fallbackDecomposition("how to read data from a csv file")
	require.Len(t, subQs, 2)
	assert.Equal(t, "How to read data in R?", subQs[0].Question)
}

func TestFallbackNeverEmpty(t *testing.T) {
	for _, query := range []string{"x", "weather tomorrow", "deploy kubernetes"} {
		subQs := fallbackDecomposition(query)
		require.NotEmpty(t, subQs, "query %q", query)
		assert.Equal(t, core.PriorityCritical, subQs[0].Priority)
	}
}

func TestRepairJSONFixesMissingOpeningQuote(t *testing.T) {
	broken := `{"question": "q", type": "function"}`
	assert.Equal(t, `{"question": "q", "type": "function"}`, repairJSON(broken))
}

func TestRepairJSONLeavesValidJSONAlone(t *testing.T) {
	valid := `[{"question": "q", "type": "function", "priority": 1}]`
	assert.Equal(t, valid, repairJSON(valid))
}
