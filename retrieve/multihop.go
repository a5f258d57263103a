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
	"strings"

	"github.com/poiesic/retrievit/core"
)

const (
	// defaultMaxDocsPerHop bounds the result size of a single hop.
	defaultMaxDocsPerHop = 5

	// maxContextTags limits how many accumulated tags enhance one query.
	maxContextTags = 3

	// maxTagsPerHop limits how many tags one hop contributes.
	maxTagsPerHop = 2
)

// HopResult holds the outcome of one retrieval hop.
type HopResult struct {
	SubQuestion core.SubQuestion
	Documents   core.RetrievalResult
}

// MultiHopRetriever runs the hybrid retriever once per sub-question,
// strictly in priority order. Context tags extracted from earlier hops
// bias later queries; a failed hop yields an empty result for that hop
// only.
type MultiHopRetriever struct {
	retriever     *Retriever
	maxDocsPerHop int
	logger        *slog.Logger
}

// MultiHopOption configures a MultiHopRetriever.
type MultiHopOption func(*MultiHopRetriever) error

// WithMaxDocsPerHop sets how many documents each hop may return.
func WithMaxDocsPerHop(n int) MultiHopOption {
	return func(m *MultiHopRetriever) error {
		if n < 1 {
			return ErrInvalidTopK
		}
		m.maxDocsPerHop = n
		return nil
	}
}

// WithMultiHopLogger sets a custom logger.
func WithMultiHopLogger(logger *slog.Logger) MultiHopOption {
	return func(m *MultiHopRetriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewMultiHopRetriever creates a multi-hop retriever over the given
// hybrid retriever.
func NewMultiHopRetriever(retriever *Retriever, opts ...MultiHopOption) (*MultiHopRetriever, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}

	m := &MultiHopRetriever{
		retriever:     retriever,
		maxDocsPerHop: defaultMaxDocsPerHop,
		logger:        slog.Default().With("component", "multihop"),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Retrieve resolves each sub-question against the hybrid retriever,
// carrying forward context tags between hops. Hops run sequentially
// because each depends on context from all prior hops. Results come
// back in hop order.
func (m *MultiHopRetriever) Retrieve(ctx context.Context, subQuestions []core.SubQuestion) ([]HopResult, error) {
	ordered := make([]core.SubQuestion, len(subQuestions))
	copy(ordered, subQuestions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	results := make([]HopResult, 0, len(ordered))
	var contextTags []string

	for i, sq := range ordered {
		enhanced := enhanceQuery(sq.Question, sq.Type, contextTags)
		m.logger.Info("hop", "n", i+1, "total", len(ordered), "question", sq.Question)

		docs, err := m.retriever.Retrieve(ctx, enhanced, m.maxDocsPerHop*2)
		if err != nil {
			m.logger.Warn("hop retrieval failed, continuing with empty result",
				"question", sq.Question, "err", err)
			results = append(results, HopResult{SubQuestion: sq})
			continue
		}

		docs = rerankForType(docs, sq.Type, m.maxDocsPerHop)
		results = append(results, HopResult{SubQuestion: sq, Documents: docs})

		contextTags = append(contextTags, extractContextTags(docs)...)
	}

	return results, nil
}

// enhanceQuery appends a parenthetical hint built from accumulated tags
// relevant to the question's type. The original question text is never
// replaced.
func enhanceQuery(question string, qtype core.QuestionType, tags []string) string {
	if len(tags) == 0 {
		return question
	}

	recent := tags
	if len(recent) > maxContextTags {
		recent = recent[len(recent)-maxContextTags:]
	}

	var relevant []string
	for _, tag := range recent {
		lower := strings.ToLower(tag)
		switch qtype {
		case core.QuestionPackage:
			if strings.Contains(lower, "package") || strings.Contains(lower, "library") {
				relevant = append(relevant, tag)
			}
		case core.QuestionFunction:
			if strings.Contains(lower, "function") || strings.Contains(lower, "method") {
				relevant = append(relevant, tag)
			}
		case core.QuestionConcept:
			relevant = append(relevant, tag)
		}
	}

	if len(relevant) == 0 {
		return question
	}
	return question + " (considering: " + strings.Join(relevant, ", ") + ")"
}

// rerankForType adds small fixed bonuses for documents whose declared
// type or task matches the sub-question, re-sorts, and truncates.
func rerankForType(docs core.RetrievalResult, qtype core.QuestionType, maxDocs int) core.RetrievalResult {
	adjusted := make(core.RetrievalResult, len(docs))
	for i, sd := range docs {
		var bonus float64
		docType := sd.Doc.Meta.Type
		docTask := sd.Doc.Meta.Task

		switch {
		case qtype == core.QuestionPackage && (docType == "package_description" || docType == "task_view"):
			bonus = 0.2
		case qtype == core.QuestionFunction && (docType == "man_page" || docType == "function"):
			bonus = 0.2
		case qtype == core.QuestionConcept && (docType == "vignette" || docType == "r_extensions"):
			bonus = 0.15
		case qtype == core.QuestionExample && (docType == "vignette" || docType == "man_page"):
			bonus = 0.1
		}

		if (qtype == core.QuestionFunction || qtype == core.QuestionConcept) &&
			(docTask == "statistical_modeling" || docTask == "data_visualization") {
			bonus += 0.1
		}

		adjusted[i] = core.ScoredDocument{Doc: sd.Doc, Score: sd.Score + bonus}
	}

	sort.SliceStable(adjusted, func(i, j int) bool {
		return adjusted[i].Score > adjusted[j].Score
	})
	if len(adjusted) > maxDocs {
		adjusted = adjusted[:maxDocs]
	}
	return adjusted
}

// extractContextTags pulls short labels from the top results of a hop
// for use in later query enhancement.
func extractContextTags(docs core.RetrievalResult) []string {
	var tags []string
	top := docs
	if len(top) > 2 {
		top = top[:2]
	}
	for _, sd := range top {
		if sd.Doc.Meta.Package != "" {
			tags = append(tags, "package:"+sd.Doc.Meta.Package)
		}
		if sd.Doc.Meta.Function != "" {
			tags = append(tags, "function:"+sd.Doc.Meta.Function)
		}
		if sd.Doc.Meta.Task != "" {
			tags = append(tags, "task:"+sd.Doc.Meta.Task)
		}
		if len(tags) >= maxTagsPerHop {
			return tags[:maxTagsPerHop]
		}
	}
	return tags
}
