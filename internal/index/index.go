// Package index implements the embedding index: one vector per chunk,
// computed ahead of query time, searchable by cosine similarity. Build is
// the only mutator; Query is read-only. An index backed by a persistent
// store can be reopened later without recomputing embeddings.
package index

import (
	"fmt"
	"path/filepath"

	"santerag/internal/domain"
	"santerag/internal/embedding"
	"santerag/internal/logger"
	"santerag/internal/vectorstore"
)

const (
	metaEmbedderName  = "embedder_name"
	metaEmbedderState = "embedder_state"
)

// Index owns the embedding records for a chunked corpus.
type Index struct {
	embedder embedding.Embedder
	store    vectorstore.Storage
}

// New creates an empty index over the given embedder and store.
func New(emb embedding.Embedder, store vectorstore.Storage) *Index {
	return &Index{embedder: emb, store: store}
}

// Build computes one vector per chunk and stores all records. Any embedder
// failure aborts the build: a half-built index is never left behind for
// queries. An empty chunk list is valid and produces an index that returns
// no results.
func (ix *Index) Build(chunks []domain.Chunk) error {
	if err := ix.store.Clear(); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	if len(chunks) == 0 {
		logger.Info("built empty index")
		return nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	if err := ix.embedder.Prepare(texts); err != nil {
		return fmt.Errorf("preparing embedder: %w", err)
	}

	vectors := make([][]float64, len(chunks))
	for i, ch := range chunks {
		vec, err := ix.embedder.Embed(ch.Text)
		if err != nil {
			return fmt.Errorf("embedding chunk %s: %w", ch.ChunkID, err)
		}
		vectors[i] = vec
	}

	// The dimension is only known after the first embed for remote models.
	if err := ix.store.Init(ix.embedder.Dimension()); err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	if err := ix.store.Upsert(chunks, vectors); err != nil {
		return fmt.Errorf("storing vectors: %w", err)
	}
	if err := ix.saveMeta(); err != nil {
		return err
	}
	logger.Info("indexed %d chunks, dimension %d", len(chunks), ix.embedder.Dimension())
	return nil
}

// Query embeds text with the index's embedder and returns the k records
// with highest cosine similarity, ties broken by original chunk order.
// k <= 0 yields an empty result. Query never mutates the index.
func (ix *Index) Query(text string, k int) ([]domain.SearchResult, error) {
	if k <= 0 || ix.Len() == 0 {
		return nil, nil
	}
	vec, err := ix.embedder.Embed(text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return ix.store.Search(vec, k)
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.store.Chunks()) }

// Dimension returns the shared vector dimension D.
func (ix *Index) Dimension() int { return ix.store.Dimension() }

// Documents lists the distinct source documents behind the indexed chunks,
// in index order. Raw text is not retained after indexing.
func (ix *Index) Documents() []domain.Document {
	seen := make(map[string]struct{})
	var docs []domain.Document
	for _, ch := range ix.store.Chunks() {
		if _, ok := seen[ch.DocumentID]; ok {
			continue
		}
		seen[ch.DocumentID] = struct{}{}
		docs = append(docs, domain.Document{
			ID:    ch.DocumentID,
			Path:  ch.DocumentPath,
			Title: filepath.Base(ch.DocumentPath),
		})
	}
	return docs
}

// Open restores an index from a previously persisted store, rehydrating the
// embedder state so queries embed exactly as they did at build time.
func Open(emb embedding.Embedder, store vectorstore.Storage) (*Index, error) {
	ms, ok := store.(vectorstore.MetaStore)
	if !ok {
		return nil, fmt.Errorf("store %T does not support persistence", store)
	}
	name, found, err := ms.GetMeta(metaEmbedderName)
	if err != nil {
		return nil, fmt.Errorf("reading embedder name: %w", err)
	}
	if found && string(name) != emb.Name() {
		return nil, fmt.Errorf("index was built with embedder %q, configured embedder is %q", name, emb.Name())
	}
	if codec, ok := emb.(embedding.StateCodec); ok {
		state, found, err := ms.GetMeta(metaEmbedderState)
		if err != nil {
			return nil, fmt.Errorf("reading embedder state: %w", err)
		}
		if found {
			if err := codec.UnmarshalState(state); err != nil {
				return nil, fmt.Errorf("restoring embedder state: %w", err)
			}
		}
	}
	ix := &Index{embedder: emb, store: store}
	logger.Info("opened index with %d chunks", ix.Len())
	return ix, nil
}

func (ix *Index) saveMeta() error {
	ms, ok := ix.store.(vectorstore.MetaStore)
	if !ok {
		return nil
	}
	if err := ms.PutMeta(metaEmbedderName, []byte(ix.embedder.Name())); err != nil {
		return fmt.Errorf("saving embedder name: %w", err)
	}
	if codec, ok := ix.embedder.(embedding.StateCodec); ok {
		state, err := codec.MarshalState()
		if err != nil {
			return fmt.Errorf("serializing embedder state: %w", err)
		}
		if err := ms.PutMeta(metaEmbedderState, state); err != nil {
			return fmt.Errorf("saving embedder state: %w", err)
		}
	}
	return nil
}
