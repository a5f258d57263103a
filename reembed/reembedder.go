// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/store"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of documents to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the vector index for every document in a store,
// typically after switching to a different embedding model. The lexical
// index and corpus are left untouched.
type Reembedder struct {
	docs     *store.DocumentStore
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(docs *store.DocumentStore, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reembedder{
		docs:     docs,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run reembeds all documents in the store, batch by batch. Each batch is
// published as soon as it succeeds, so an interrupted run leaves a mix of
// old and new vectors but never a broken index.
func (r *Reembedder) Run(ctx context.Context) error {
	snap := r.docs.Snapshot()
	total := snap.Len()
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found in corpus (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	for start := 0; start < total; start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > total {
			end = total
		}

		ids := make([]string, 0, end-start)
		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			doc := snap.DocAt(i)
			ids = append(ids, doc.ID)
			texts = append(texts, doc.Content)
		}

		var embeddings [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var embedErr error
			embeddings, embedErr = r.embedder.EmbedTexts(ctx, texts)
			return embedErr
		}, r.config.MaxRetries, r.config.RetryDelay)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
		}
		if len(embeddings) != len(texts) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(embeddings))
		}

		if err := r.docs.SetVectors(ids, embeddings); err != nil {
			return fmt.Errorf("failed to update vectors: %w", err)
		}

		processed += len(ids)
		tracker.Update(processed)
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d documents in %v (%.1f documents/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
