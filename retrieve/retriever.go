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

package retrieve

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/index"
	"github.com/poiesic/retrievit/store"
)

const (
	// defaultBM25Weight is the lexical share of the fused score.
	defaultBM25Weight = 0.3

	// defaultTopK is used when the caller passes zero.
	defaultTopK = 5
)

// Retriever provides hybrid lexical and semantic retrieval over a
// document store. Each pass fetches twice the requested number of
// candidates, normalizes scores against that pass's own maximum, and
// fuses them with a fixed weight.
type Retriever struct {
	docs       *store.DocumentStore
	embedder   ai.Embedder
	bm25Weight float64
	logger     *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithBM25Weight sets the lexical share of the fused score.
// Must be within [0, 1]; 1 is pure lexical, 0 is pure semantic.
func WithBM25Weight(weight float64) Option {
	return func(r *Retriever) error {
		if weight < 0 || weight > 1 {
			return ErrInvalidWeight
		}
		r.bm25Weight = weight
		return nil
	}
}

// NewRetriever creates a retriever over the given document store.
func NewRetriever(docs *store.DocumentStore, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if docs == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		docs:       docs,
		embedder:   embedder,
		bm25Weight: defaultBM25Weight,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns up to topK documents ranked by fused lexical and
// semantic relevance. A topK of zero uses the default; negative topK is
// rejected.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (core.RetrievalResult, error) {
	return r.RetrieveWithMonitor(ctx, query, topK, nil)
}

// RetrieveWithMonitor is Retrieve with stage callbacks.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, topK int, monitor RetrievalMonitor) (core.RetrievalResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if topK < 0 {
		return nil, ErrInvalidTopK
	}
	if topK == 0 {
		topK = defaultTopK
	}

	monitor.Start(query)

	snap := r.docs.Snapshot()
	if snap.Len() == 0 {
		r.logger.Warn("retrieval against empty corpus", "query", query)
		empty := core.RetrievalResult{}
		monitor.Finish(empty)
		return empty, nil
	}

	candidateK := topK * 2

	// Lexical pass: BM25 candidates normalized by their own maximum.
	lexScores := make(map[string]float64)
	lexHits := snap.Lexical().TopN(index.Tokenize(query), candidateK)
	var maxLex float64
	for _, hit := range lexHits {
		if hit.Score > maxLex {
			maxLex = hit.Score
		}
	}
	lexIDs := make([]string, 0, len(lexHits))
	for _, hit := range lexHits {
		id := snap.DocAt(hit.Index).ID
		if maxLex > 0 {
			lexScores[id] = hit.Score / maxLex
		} else {
			lexScores[id] = 0
		}
		lexIDs = append(lexIDs, id)
	}
	monitor.AfterLexicalPass(lexIDs)

	// Semantic pass: nearest neighbors with distances mapped to
	// similarities, normalized the same way.
	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	vecScores := make(map[string]float64)
	neighbors := snap.Vector().Query(embedding, candidateK)
	var maxVec float64
	for _, nb := range neighbors {
		sim := 1 / (1 + nb.Distance)
		if sim > maxVec {
			maxVec = sim
		}
	}
	vecIDs := make([]string, 0, len(neighbors))
	for _, nb := range neighbors {
		sim := 1 / (1 + nb.Distance)
		if maxVec > 0 {
			vecScores[nb.ID] = sim / maxVec
		} else {
			vecScores[nb.ID] = 0
		}
		vecIDs = append(vecIDs, nb.ID)
	}
	monitor.AfterVectorPass(vecIDs)

	// Fuse. A document missing from one pass contributes zero there.
	ordered := make([]string, 0, len(lexIDs)+len(vecIDs))
	seen := make(map[string]bool, len(lexIDs)+len(vecIDs))
	for _, id := range lexIDs {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}
	for _, id := range vecIDs {
		if !seen[id] {
			seen[id] = true
			ordered = append(ordered, id)
		}
	}

	results := make(core.RetrievalResult, 0, len(ordered))
	for _, id := range ordered {
		doc, ok := snap.DocByID(id)
		if !ok {
			continue
		}
		combined := r.bm25Weight*lexScores[id] + (1-r.bm25Weight)*vecScores[id]
		results = append(results, core.ScoredDocument{Doc: doc, Score: combined})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	monitor.Finish(results)
	return results, nil
}
