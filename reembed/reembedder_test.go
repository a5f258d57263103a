package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/retrievit/ai/mock"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T, docCount int) *store.DocumentStore {
	t.Helper()
	s, err := store.NewDocumentStore(mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(s.Release)

	docs := make([]core.Document, docCount)
	for i := range docs {
		docs[i] = core.Document{
			ID:      string(rune('a' + i)),
			Content: "document body " + string(rune('a'+i)),
		}
	}
	_, err = s.AddDocuments(context.Background(), docs...)
	require.NoError(t, err)
	return s
}

func TestReembedReplacesAllVectors(t *testing.T) {
	s := seededStore(t, 5)

	replacement := mock.NewMockEmbedder()
	replacement.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{9, 9, 9}
		}
		return out, nil
	}

	var buf bytes.Buffer
	config := &Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 1, RetryDelay: time.Millisecond}
	r := NewReembedder(s, replacement, config, &buf)

	require.NoError(t, r.Run(context.Background()))

	snap := s.Snapshot()
	for i := 0; i < snap.Len(); i++ {
		vec, ok := snap.Vector().Get(snap.DocAt(i).ID)
		require.True(t, ok)
		assert.Equal(t, []float32{9, 9, 9}, vec)
	}
	assert.Contains(t, buf.String(), "Reembedding complete")
}

func TestReembedEmptyCorpus(t *testing.T) {
	s, err := store.NewDocumentStore(mock.NewMockEmbedder())
	require.NoError(t, err)
	t.Cleanup(s.Release)

	var buf bytes.Buffer
	r := NewReembedder(s, mock.NewMockEmbedder(), nil, &buf)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, buf.String(), "No documents found")
}

func TestReembedRetriesTransientFailures(t *testing.T) {
	s := seededStore(t, 3)

	calls := 0
	flaky := mock.NewMockEmbedder()
	base := mock.NewMockEmbedder()
	flaky.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient failure")
		}
		return base.EmbedTexts(ctx, texts)
	}

	var buf bytes.Buffer
	config := &Config{BatchSize: 10, ReportInterval: 1, MaxRetries: 3, RetryDelay: time.Millisecond}
	r := NewReembedder(s, flaky, config, &buf)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestReembedGivesUpAfterMaxRetries(t *testing.T) {
	s := seededStore(t, 2)

	broken := mock.NewMockEmbedder()
	broken.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding backend down")
	}

	var buf bytes.Buffer
	config := &Config{BatchSize: 10, ReportInterval: 1, MaxRetries: 2, RetryDelay: time.Millisecond}
	r := NewReembedder(s, broken, config, &buf)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}
