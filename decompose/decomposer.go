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

package decompose

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
)

// Decomposer breaks a user query into typed, prioritized sub-questions.
// It asks a language model first and falls back to keyword rules when the
// model is unavailable or returns something unparseable, so a non-empty
// query always yields at least one sub-question.
type Decomposer struct {
	generator ai.Generator
	logger    *slog.Logger
}

// Option configures a Decomposer.
type Option func(*Decomposer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decomposer) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewDecomposer creates a decomposer backed by the given generator.
func NewDecomposer(generator ai.Generator, opts ...Option) (*Decomposer, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	d := &Decomposer{
		generator: generator,
		logger:    slog.Default().With("component", "decompose"),
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// rawSubQuestion mirrors the JSON shape the model is asked to produce.
type rawSubQuestion struct {
	Question string `json:"question"`
	Type     string `json:"type"`
	Priority int    `json:"priority"`
}

// Decompose returns the sub-questions for a query, sorted ascending by
// priority with original order preserved among equals.
func (d *Decomposer) Decompose(ctx context.Context, query string) ([]core.SubQuestion, error) {
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrEmptyQuestion
	}

	response, err := d.generator.Generate(ctx, decompositionPrompt(query), nil)
	if err != nil {
		d.logger.Warn("decomposition generation failed, using fallback rules", "err", err)
		return sortByPriority(fallbackDecomposition(query)), nil
	}

	subQs, ok := parseSubQuestions(response)
	if !ok {
		d.logger.Warn("decomposition response unparseable, using fallback rules")
		return sortByPriority(fallbackDecomposition(query)), nil
	}

	return sortByPriority(subQs), nil
}

// parseSubQuestions extracts the JSON array span from a model response
// and decodes it. Malformed key quoting is repaired before decoding.
func parseSubQuestions(response string) ([]core.SubQuestion, bool) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}

	var raw []rawSubQuestion
	if err := json.Unmarshal([]byte(repairJSON(response[start:end+1])), &raw); err != nil {
		return nil, false
	}

	subQs := make([]core.SubQuestion, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Question) == "" {
			continue
		}
		priority := r.Priority
		if priority < core.PriorityCritical || priority > core.PriorityHelpful {
			priority = core.PriorityHelpful
		}
		subQs = append(subQs, core.SubQuestion{
			Question: r.Question,
			Type:     core.ParseQuestionType(r.Type),
			Priority: priority,
		})
	}

	if len(subQs) == 0 {
		return nil, false
	}
	return subQs, true
}

// fallbackDecomposition applies keyword rules when the model cannot be
// used. Multiple rules may fire for one query; when none do, the query
// itself becomes a single critical general question.
func fallbackDecomposition(query string) []core.SubQuestion {
	lower := strings.ToLower(query)
	var subQs []core.SubQuestion

	if strings.Contains(lower, "linear regression") || strings.Contains(lower, "lm(") {
		subQs = append(subQs,
			core.SubQuestion{Question: "How to perform linear regression in R?", Type: core.QuestionFunction, Priority: core.PriorityCritical},
			core.SubQuestion{Question: "What packages are needed for linear regression?", Type: core.QuestionPackage, Priority: core.PriorityImportant},
			core.SubQuestion{Question: "How to check linear regression assumptions?", Type: core.QuestionConcept, Priority: core.PriorityImportant},
		)
	}

	if strings.Contains(lower, "plot") || strings.Contains(lower, "visualization") {
		subQs = append(subQs,
			core.SubQuestion{Question: "How to create plots in R?", Type: core.QuestionFunction, Priority: core.PriorityCritical},
			core.SubQuestion{Question: "What visualization packages are available?", Type: core.QuestionPackage, Priority: core.PriorityImportant},
		)
	}

	if strings.Contains(lower, "data") &&
		(strings.Contains(lower, "import") || strings.Contains(lower, "read") || strings.Contains(lower, "load")) {
		subQs = append(subQs,
			core.SubQuestion{Question: "How to read data in R?", Type: core.QuestionFunction, Priority: core.PriorityCritical},
			core.SubQuestion{Question: "What data import packages are available?", Type: core.QuestionPackage, Priority: core.PriorityImportant},
		)
	}

	if len(subQs) == 0 {
		subQs = append(subQs, core.SubQuestion{
			Question: query,
			Type:     core.QuestionGeneral,
			Priority: core.PriorityCritical,
		})
	}

	return subQs
}

func sortByPriority(subQs []core.SubQuestion) []core.SubQuestion {
	sort.SliceStable(subQs, func(i, j int) bool {
		return subQs[i].Priority < subQs[j].Priority
	})
	return subQs
}
