// Package memory implements an in-memory vector store using brute-force
// cosine similarity, sufficient for a small fixed brochure corpus.
package memory

import (
	"errors"
	"math"
	"sort"
	"sync"

	"santerag/internal/domain"
)

// Storage keeps all vectors in memory in insertion order.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

func (s *Storage) Upsert(chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK records with highest cosine similarity to vector,
// scores non-increasing, ties broken by insertion order.
func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		return nil, nil
	}
	idxs := make([]int, len(s.vectors))
	scores := make([]float64, len(s.vectors))
	for i := range s.vectors {
		idxs[i] = i
		scores[i] = cosine(s.vectors[i], vector)
	}
	// Stable sort keeps insertion order among equal scores.
	sort.SliceStable(idxs, func(a, b int) bool { return scores[idxs[a]] > scores[idxs[b]] })
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{Chunk: s.chunks[j], Score: scores[j]})
	}
	return results, nil
}

// Chunks returns the stored chunks in insertion order.
func (s *Storage) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dot, na, nb := 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
