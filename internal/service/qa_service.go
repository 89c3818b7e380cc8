// Package service wires the pipeline together: indexing (load → clean →
// chunk → embed) and the per-question cycle (retrieve → compose). Each
// question is an independent request/response with no memory of prior turns.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"santerag/internal/domain"
	"santerag/internal/index"
	"santerag/internal/loader"
	"santerag/internal/logger"
)

// ErrIndexNotReady is returned when a question arrives before any index has
// been built or loaded.
var ErrIndexNotReady = errors.New("index not built yet")

// Stats summarizes an indexing pass.
type Stats struct {
	Documents int
	Chunks    int
	Dimension int
}

// QAService answers questions over an indexed brochure corpus.
type QAService struct {
	loader   *loader.Loader
	cleaner  domain.Cleaner
	chunker  domain.Chunker
	composer domain.Composer
	topK     int
	newIndex func() (*index.Index, error)
	current  atomic.Pointer[index.Index]
}

// New assembles a QAService. newIndex is called on every rebuild so a fresh
// index replaces the active one atomically once its build completes; queries
// are never served from a half-built index.
func New(ld *loader.Loader, cl domain.Cleaner, ch domain.Chunker, comp domain.Composer, newIndex func() (*index.Index, error), topK int) *QAService {
	if topK <= 0 {
		topK = 3
	}
	return &QAService{
		loader:   ld,
		cleaner:  cl,
		chunker:  ch,
		composer: comp,
		topK:     topK,
		newIndex: newIndex,
	}
}

// BuildIndex runs the full indexing pass over dir and swaps the active
// index on success. Unreadable documents are skipped inside the loader;
// embedder failures abort the build and leave any previous index serving.
func (s *QAService) BuildIndex(ctx context.Context, dir string) (Stats, error) {
	docs, err := s.loader.Load(ctx, dir)
	if err != nil {
		return Stats{}, err
	}

	var chunks []domain.Chunk
	kept := 0
	for _, doc := range docs {
		cleaned := s.cleaner.Clean(doc.RawText)
		if cleaned == "" {
			logger.Warn("document %s has no usable text after cleaning", doc.Title)
			continue
		}
		docChunks, err := s.chunker.Chunk(doc, cleaned)
		if err != nil {
			return Stats{}, fmt.Errorf("chunking %s: %w", doc.Title, err)
		}
		chunks = append(chunks, docChunks...)
		kept++
	}

	ix, err := s.newIndex()
	if err != nil {
		return Stats{}, err
	}
	if err := ix.Build(chunks); err != nil {
		return Stats{}, err
	}
	s.current.Store(ix)
	return Stats{Documents: kept, Chunks: len(chunks), Dimension: ix.Dimension()}, nil
}

// UseIndex installs a previously built index (for example one reloaded from
// disk) as the active one.
func (s *QAService) UseIndex(ix *index.Index) {
	s.current.Store(ix)
}

// Ready reports whether an index is available for queries.
func (s *QAService) Ready() bool { return s.current.Load() != nil }

// Retrieve returns the top-k chunks most similar to the question. It is a
// pure function of the question and the current index contents.
func (s *QAService) Retrieve(question string, k int) ([]domain.SearchResult, error) {
	ix := s.current.Load()
	if ix == nil {
		return nil, ErrIndexNotReady
	}
	return ix.Query(question, k)
}

// Ask retrieves the most relevant chunks and composes the extractive answer.
func (s *QAService) Ask(question string) (domain.Answer, error) {
	results, err := s.Retrieve(question, s.topK)
	if err != nil {
		return domain.Answer{}, err
	}
	return s.composer.Compose(question, results), nil
}

// Documents lists the brochures behind the active index.
func (s *QAService) Documents() []domain.Document {
	ix := s.current.Load()
	if ix == nil {
		return nil
	}
	return ix.Documents()
}

// TopK returns the configured retrieval depth.
func (s *QAService) TopK() int { return s.topK }
