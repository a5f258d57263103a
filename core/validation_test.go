package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := &Document{
			ID:      "doc-1",
			Content: "lm() fits linear models.",
			Meta:    DocumentMeta{Type: "man_page", Package: "stats", Function: "lm"},
		}
		require.NoError(t, ValidateDocument(doc))
	})

	t.Run("empty ID is valid", func(t *testing.T) {
		doc := &Document{Content: "content without an ID"}
		require.NoError(t, ValidateDocument(doc))
	})

	t.Run("nil document", func(t *testing.T) {
		err := ValidateDocument(nil)
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("empty content", func(t *testing.T) {
		err := ValidateDocument(&Document{ID: "doc-1"})
		assert.ErrorIs(t, err, ErrInvalidDocument)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("whitespace-only content", func(t *testing.T) {
		err := ValidateDocument(&Document{ID: "doc-1", Content: "  \n\t "})
		assert.ErrorIs(t, err, ErrEmptyContent)
	})
}

func TestValidateSubQuestion(t *testing.T) {
	t.Run("valid sub-question", func(t *testing.T) {
		sq := &SubQuestion{
			Question: "How to perform linear regression in R?",
			Type:     QuestionFunction,
			Priority: PriorityCritical,
		}
		require.NoError(t, ValidateSubQuestion(sq))
	})

	t.Run("nil sub-question", func(t *testing.T) {
		assert.ErrorIs(t, ValidateSubQuestion(nil), ErrInvalidSubQuestion)
	})

	t.Run("empty question", func(t *testing.T) {
		err := ValidateSubQuestion(&SubQuestion{Type: QuestionGeneral, Priority: 1})
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("priority out of range", func(t *testing.T) {
		for _, p := range []int{0, -1, 4, 100} {
			err := ValidateSubQuestion(&SubQuestion{Question: "q", Type: QuestionGeneral, Priority: p})
			assert.ErrorIs(t, err, ErrInvalidPriority, "priority %d", p)
		}
	})
}
