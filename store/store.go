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

package store

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/index"
	"github.com/poiesic/retrievit/storage"
)

// embedChunkSize bounds how many documents go to the embedder per call.
const embedChunkSize = 32

// Snapshot is an immutable view of the corpus and both indices. Readers
// hold a snapshot for the duration of a retrieval pass and never observe
// a partially applied write.
type Snapshot struct {
	docs    []core.Document
	byID    map[string]int
	lexical *index.Lexical
	vector  *index.Vector
}

// Len returns the number of documents in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.docs)
}

// DocAt returns the document at corpus position i.
func (s *Snapshot) DocAt(i int) *core.Document {
	return &s.docs[i]
}

// DocByID looks up a document by its ID.
func (s *Snapshot) DocByID(id string) (*core.Document, bool) {
	at, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return &s.docs[at], true
}

// Lexical returns the BM25 index over the snapshot's corpus.
func (s *Snapshot) Lexical() *index.Lexical {
	return s.lexical
}

// Vector returns the nearest-neighbor index over the snapshot's corpus.
func (s *Snapshot) Vector() *index.Vector {
	return s.vector
}

// DocumentStore holds the document corpus together with its lexical and
// vector indices. Writes build a fresh snapshot and publish it atomically;
// concurrent readers keep using the snapshot they loaded.
type DocumentStore struct {
	current  atomic.Pointer[Snapshot]
	mu       sync.Mutex // serializes writers
	embedder ai.Embedder
	pool     *ants.Pool
	logger   *slog.Logger
}

// StoreOption configures a DocumentStore during creation.
type StoreOption func(*DocumentStore) error

// WithLogger sets a custom logger for the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *DocumentStore) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithPoolSize replaces the embedding worker pool with one of the given size.
func WithPoolSize(size int) StoreOption {
	return func(s *DocumentStore) error {
		if size < 1 {
			return errors.New("pool size must be at least 1")
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// NewDocumentStore creates an empty store that embeds new documents with
// the given embedder.
func NewDocumentStore(embedder ai.Embedder, opts ...StoreOption) (*DocumentStore, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &DocumentStore{
		embedder: embedder,
		pool:     pool,
		logger:   slog.Default().With("component", "store"),
	}
	s.current.Store(emptySnapshot())

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	return s, nil
}

// Snapshot returns the current published view of the corpus.
func (s *DocumentStore) Snapshot() *Snapshot {
	return s.current.Load()
}

// Len returns the number of documents in the current snapshot.
func (s *DocumentStore) Len() int {
	return s.current.Load().Len()
}

// AddDocuments validates, embeds, and indexes the given documents, then
// publishes a new snapshot. Documents without an ID get one derived from
// their content. Duplicate IDs are last-write-wins, both within the batch
// and against the existing corpus. Returns the number of documents added
// or replaced.
func (s *DocumentStore) AddDocuments(ctx context.Context, docs ...core.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	// Validate and assign content-derived IDs, collapsing in-batch
	// duplicates so each ID is embedded once.
	batch := make([]core.Document, 0, len(docs))
	batchPos := make(map[string]int, len(docs))
	for i := range docs {
		doc := docs[i]
		if err := core.ValidateDocument(&doc); err != nil {
			return 0, err
		}
		if doc.ID == "" {
			doc.ID = core.IDFromContent(doc.Content)
		}
		if at, ok := batchPos[doc.ID]; ok {
			batch[at] = doc
			continue
		}
		batchPos[doc.ID] = len(batch)
		batch = append(batch, doc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()

	// Merge into a fresh corpus. Replacements keep their position;
	// new documents append in batch order.
	next := make([]core.Document, len(cur.docs))
	copy(next, cur.docs)
	byID := make(map[string]int, len(cur.byID)+len(batch))
	for id, at := range cur.byID {
		byID[id] = at
	}

	toEmbed := make([]core.Document, 0, len(batch))
	for _, doc := range batch {
		if at, ok := byID[doc.ID]; ok {
			if next[at].Content == doc.Content {
				next[at] = doc
				continue
			}
			next[at] = doc
		} else {
			byID[doc.ID] = len(next)
			next = append(next, doc)
		}
		toEmbed = append(toEmbed, doc)
	}

	vector := cur.vector.Clone()
	if len(toEmbed) > 0 {
		vectors, err := s.embedBatch(ctx, toEmbed)
		if err != nil {
			return 0, err
		}
		ids := make([]string, len(toEmbed))
		for i, doc := range toEmbed {
			ids[i] = doc.ID
		}
		if err := vector.Upsert(ids, vectors); err != nil {
			return 0, err
		}
	}

	tokenized := make([][]string, len(next))
	for i := range next {
		tokenized[i] = index.Tokenize(next[i].Content)
	}

	s.current.Store(&Snapshot{
		docs:    next,
		byID:    byID,
		lexical: index.BuildLexical(tokenized),
		vector:  vector,
	})

	s.logger.Debug("published snapshot", "documents", len(next), "embedded", len(toEmbed))
	return len(batch), nil
}

// embedBatch embeds documents in fixed-size chunks on the worker pool,
// preserving input order. The first chunk error aborts the whole batch.
func (s *DocumentStore) embedBatch(ctx context.Context, docs []core.Document) ([][]float32, error) {
	results := make([][]float32, len(docs))

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	for start := 0; start < len(docs); start += embedChunkSize {
		end := start + embedChunkSize
		if end > len(docs) {
			end = len(docs)
		}
		chunkStart, chunkEnd := start, end

		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()

			texts := make([]string, chunkEnd-chunkStart)
			for i := chunkStart; i < chunkEnd; i++ {
				texts[i-chunkStart] = docs[i].Content
			}

			vectors, err := s.embedder.EmbedTexts(ctx, texts)
			if err == nil && len(vectors) != len(texts) {
				err = ErrEmbeddingCountMismatch
			}
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			copy(results[chunkStart:chunkEnd], vectors)
		})
		if submitErr != nil {
			wg.Done()
			errMu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			errMu.Unlock()
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// SetVectors replaces the stored vectors for the given document IDs and
// publishes a new snapshot. Every ID must already be in the corpus.
func (s *DocumentStore) SetVectors(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return index.ErrLengthMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	for _, id := range ids {
		if _, ok := cur.byID[id]; !ok {
			return ErrUnknownDocument
		}
	}

	vector := cur.vector.Clone()
	if err := vector.Upsert(ids, vectors); err != nil {
		return err
	}

	s.current.Store(&Snapshot{
		docs:    cur.docs,
		byID:    cur.byID,
		lexical: cur.lexical,
		vector:  vector,
	})
	return nil
}

// Persist serializes the current snapshot and saves it under key.
func (s *DocumentStore) Persist(ctx context.Context, blobs storage.BlobStore, key string) error {
	snap := s.current.Load()

	records := make([]storage.SnapshotRecord, len(snap.docs))
	for i := range snap.docs {
		vec, _ := snap.vector.Get(snap.docs[i].ID)
		records[i] = storage.SnapshotRecord{
			Doc:    snap.docs[i],
			Vector: vec,
		}
	}

	if err := blobs.Save(ctx, key, storage.MarshalSnapshot(records)); err != nil {
		return err
	}

	s.logger.Info("persisted snapshot", "key", key, "documents", len(records))
	return nil
}

// Restore replaces the store's contents with a previously persisted
// snapshot. A missing or unreadable blob leaves the store empty rather
// than failing, so a fresh deployment starts cleanly.
func (s *DocumentStore) Restore(ctx context.Context, blobs storage.BlobStore, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := blobs.Load(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("no persisted snapshot found, starting empty", "key", key)
			s.current.Store(emptySnapshot())
			return nil
		}
		return err
	}

	records, err := storage.UnmarshalSnapshot(data)
	if err != nil {
		s.logger.Warn("persisted snapshot unreadable, starting empty", "key", key, "err", err)
		s.current.Store(emptySnapshot())
		return nil
	}

	docs := make([]core.Document, len(records))
	byID := make(map[string]int, len(records))
	ids := make([]string, len(records))
	vectors := make([][]float32, len(records))
	tokenized := make([][]string, len(records))
	for i, rec := range records {
		docs[i] = rec.Doc
		byID[rec.Doc.ID] = i
		ids[i] = rec.Doc.ID
		vectors[i] = rec.Vector
		tokenized[i] = index.Tokenize(rec.Doc.Content)
	}

	vector := index.NewVector()
	if err := vector.Upsert(ids, vectors); err != nil {
		return err
	}

	s.current.Store(&Snapshot{
		docs:    docs,
		byID:    byID,
		lexical: index.BuildLexical(tokenized),
		vector:  vector,
	})

	s.logger.Info("restored snapshot", "key", key, "documents", len(docs))
	return nil
}

// Release shuts down the embedding worker pool. The store remains
// readable afterwards but cannot accept new documents.
func (s *DocumentStore) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		byID:    make(map[string]int),
		lexical: index.BuildLexical(nil),
		vector:  index.NewVector(),
	}
}
