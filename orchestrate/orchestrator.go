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

package orchestrate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/decompose"
	"github.com/poiesic/retrievit/retrieve"
)

const (
	// defaultModelTimeout bounds a single language-model call.
	defaultModelTimeout = 60 * time.Second

	// maxSynthesisDocs caps how many document contents enter the prompt.
	maxSynthesisDocs = 10

	// maxSupportingDocs caps how many documents ride along as explicit
	// model context.
	maxSupportingDocs = 5

	// topDocsPerHop is how many results each hop contributes.
	topDocsPerHop = 3
)

// stage identifies a step in an orchestration run. Stages always execute
// in order; failures degrade the output of a stage, never skip one.
type stage string

const (
	stageDecompose  stage = "decompose"
	stageRetrieve   stage = "retrieve"
	stageSynthesize stage = "synthesize"
	stageValidate   stage = "validate"
	stageDone       stage = "done"
)

// Orchestrator drives a query through decomposition, multi-hop retrieval,
// synthesis, and validation. Every failure past the argument check
// produces a degraded textual answer; callers never see a mid-run error.
type Orchestrator struct {
	decomposer   *decompose.Decomposer
	multiHop     *retrieve.MultiHopRetriever
	generator    ai.Generator
	modelTimeout time.Duration
	logger       *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithModelTimeout bounds each language-model call.
// Default is 60 seconds.
func WithModelTimeout(d time.Duration) Option {
	return func(o *Orchestrator) error {
		if d <= 0 {
			return ErrInvalidTimeout
		}
		o.modelTimeout = d
		return nil
	}
}

// NewOrchestrator creates an orchestrator from its three collaborators.
func NewOrchestrator(
	decomposer *decompose.Decomposer,
	multiHop *retrieve.MultiHopRetriever,
	generator ai.Generator,
	opts ...Option,
) (*Orchestrator, error) {
	if decomposer == nil {
		return nil, ErrDecomposerRequired
	}
	if multiHop == nil {
		return nil, ErrMultiHopRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	o := &Orchestrator{
		decomposer:   decomposer,
		multiHop:     multiHop,
		generator:    generator,
		modelTimeout: defaultModelTimeout,
		logger:       slog.Default().With("component", "orchestrate"),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// ProcessQuery runs the full workflow for one query and returns a textual
// answer. Only an empty query is reported as an error; everything else
// degrades to the best answer available at that point.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", core.ErrEmptyQuestion
	}

	logger := o.logger.With("run", uuid.NewString())
	logger.Info("processing query", "query", query)

	logger.Debug("stage", "stage", stageDecompose)
	subQuestions, err := o.decomposer.Decompose(ctx, query)
	if err != nil || len(subQuestions) == 0 {
		logger.Warn("decomposition failed, using query as single sub-question", "err", err)
		subQuestions = []core.SubQuestion{{
			Question: query,
			Type:     core.QuestionGeneral,
			Priority: core.PriorityCritical,
		}}
	}
	logger.Info("decomposed query", "subQuestions", len(subQuestions))

	logger.Debug("stage", "stage", stageRetrieve)
	hops, err := o.multiHop.Retrieve(ctx, subQuestions)
	if err != nil {
		logger.Warn("multi-hop retrieval failed, synthesizing without context", "err", err)
		hops = nil
	}

	logger.Debug("stage", "stage", stageSynthesize)
	answer := o.synthesize(ctx, logger, query, subQuestions, hops)

	logger.Debug("stage", "stage", stageValidate)
	answer = annotateHazards(answer)

	logger.Debug("stage", "stage", stageDone)
	return answer, nil
}

// synthesize asks the model for a workflow answer over the retrieved
// context. A model failure or timeout degrades to the raw context.
func (o *Orchestrator) synthesize(ctx context.Context, logger *slog.Logger, query string, subQuestions []core.SubQuestion, hops []retrieve.HopResult) string {
	contents := collectContents(hops, topDocsPerHop, maxSynthesisDocs)

	prompt := synthesisPrompt(query, subQuestions, contents)

	supporting := contents
	if len(supporting) > maxSupportingDocs {
		supporting = supporting[:maxSupportingDocs]
	}

	tctx, cancel := context.WithTimeout(ctx, o.modelTimeout)
	defer cancel()

	answer, err := o.generator.Generate(tctx, prompt, supporting)
	if err != nil || strings.TrimSpace(answer) == "" {
		logger.Warn("synthesis failed, returning raw retrieved context", "err", err)
		return degradedAnswer(query, contents)
	}
	return answer
}

// collectContents gathers document contents in hop order, then rank
// within each hop, capped per hop and in total.
func collectContents(hops []retrieve.HopResult, perHop, total int) []string {
	var contents []string
	for _, hop := range hops {
		docs := hop.Documents
		if len(docs) > perHop {
			docs = docs[:perHop]
		}
		for _, sd := range docs {
			if len(contents) >= total {
				return contents
			}
			contents = append(contents, sd.Doc.Content)
		}
	}
	return contents
}

// degradedAnswer presents the retrieved context directly when no
// synthesized narrative is available.
func degradedAnswer(query string, contents []string) string {
	var sb strings.Builder
	sb.WriteString("I could not generate a complete answer for: ")
	sb.WriteString(query)
	if len(contents) == 0 {
		sb.WriteString("\n\nNo relevant documentation was found either. Please try rephrasing the question.")
		return sb.String()
	}
	sb.WriteString("\n\nHere is the most relevant documentation that was found:\n")
	for _, content := range contents {
		sb.WriteString("\n---\n")
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String()
}
