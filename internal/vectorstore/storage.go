package vectorstore

import "santerag/internal/domain"

// Storage holds embedding records and supports similarity search. Init and
// Upsert are the only mutators; Search is read-only and repeatable.
type Storage interface {
	Init(dimension int) error
	Upsert(chunks []domain.Chunk, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.SearchResult, error)
	Chunks() []domain.Chunk
	Dimension() int
	Clear() error
}

// MetaStore is implemented by stores that persist small named blobs
// (embedder state, model identifier) alongside the vectors so a saved
// index can be reloaded without rebuilding.
type MetaStore interface {
	PutMeta(key string, value []byte) error
	GetMeta(key string) ([]byte, bool, error)
}
