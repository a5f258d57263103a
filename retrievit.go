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

package retrievit

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/ai/openai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/decompose"
	"github.com/poiesic/retrievit/orchestrate"
	"github.com/poiesic/retrievit/reembed"
	"github.com/poiesic/retrievit/retrieve"
	"github.com/poiesic/retrievit/storage/badger"
	"github.com/poiesic/retrievit/store"
)

// snapshotKey is the blob key the corpus snapshot persists under.
const snapshotKey = "corpus"

// Engine bundles the document store, retrievers, and orchestrator behind
// one handle. It is the intended entry point for embedding the system in
// an application.
type Engine struct {
	backend      *badger.Backend
	docs         *store.DocumentStore
	provider     ai.AIProvider
	retriever    *retrieve.Retriever
	orchestrator *orchestrate.Orchestrator
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	provider     ai.AIProvider
	inMemory     bool
	bm25Weight   float64
	weightSet    bool
	modelTimeout time.Duration
}

// WithAIConfig sets the model endpoints and names used when no provider
// is injected.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider, bypassing the default
// OpenAI-compatible one. Intended for tests and custom transports.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all persisted state in memory. The storage path is
// ignored.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithBM25Weight sets the lexical share of the fused retrieval score.
func WithBM25Weight(weight float64) EngineOption {
	return func(o *engineOptions) {
		o.bm25Weight = weight
		o.weightSet = true
	}
}

// WithModelTimeout bounds each language-model call during orchestration.
func WithModelTimeout(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		o.modelTimeout = d
	}
}

// NewEngine opens the storage backend at filePath, restores any persisted
// corpus snapshot, and wires the retrieval pipeline.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	docs, err := store.NewDocumentStore(provider.Embedder())
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	if err := docs.Restore(context.Background(), backend, snapshotKey); err != nil {
		docs.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	var retrieverOpts []retrieve.Option
	if options.weightSet {
		retrieverOpts = append(retrieverOpts, retrieve.WithBM25Weight(options.bm25Weight))
	}
	retriever, err := retrieve.NewRetriever(docs, provider.Embedder(), retrieverOpts...)
	if err != nil {
		docs.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	multiHop, err := retrieve.NewMultiHopRetriever(retriever)
	if err != nil {
		docs.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	decomposer, err := decompose.NewDecomposer(provider.Generator())
	if err != nil {
		docs.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	var orchestratorOpts []orchestrate.Option
	if options.modelTimeout > 0 {
		orchestratorOpts = append(orchestratorOpts, orchestrate.WithModelTimeout(options.modelTimeout))
	}
	orchestrator, err := orchestrate.NewOrchestrator(decomposer, multiHop, provider.Generator(), orchestratorOpts...)
	if err != nil {
		docs.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:      backend,
		docs:         docs,
		provider:     provider,
		retriever:    retriever,
		orchestrator: orchestrator,
		logger:       slog.Default(),
	}, nil
}

// AddDocuments ingests documents into the corpus and persists the
// resulting snapshot.
func (e *Engine) AddDocuments(ctx context.Context, docs ...core.Document) (int, error) {
	added, err := e.docs.AddDocuments(ctx, docs...)
	if err != nil {
		return 0, err
	}
	if err := e.docs.Persist(ctx, e.backend, snapshotKey); err != nil {
		return added, err
	}
	return added, nil
}

// Len returns the number of documents in the corpus.
func (e *Engine) Len() int {
	return e.docs.Len()
}

// Search runs a single hybrid retrieval pass.
func (e *Engine) Search(ctx context.Context, query string, topK int) (core.RetrievalResult, error) {
	return e.retriever.Retrieve(ctx, query, topK)
}

// Ask answers a query with the full decompose-retrieve-synthesize
// workflow.
func (e *Engine) Ask(ctx context.Context, query string) (string, error) {
	return e.orchestrator.ProcessQuery(ctx, query)
}

// Reembed regenerates every document vector with the engine's current
// embedder and persists the result. Used after switching embedding
// models, when all stored vectors are stale.
func (e *Engine) Reembed(ctx context.Context, config *reembed.Config, progress io.Writer) error {
	r := reembed.NewReembedder(e.docs, e.provider.Embedder(), config, progress)
	if err := r.Run(ctx); err != nil {
		return err
	}
	return e.docs.Persist(ctx, e.backend, snapshotKey)
}

// Persist writes the current corpus snapshot to storage.
func (e *Engine) Persist(ctx context.Context) error {
	return e.docs.Persist(ctx, e.backend, snapshotKey)
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	e.docs.Release()

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
