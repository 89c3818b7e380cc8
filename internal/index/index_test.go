package index

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santerag/internal/domain"
	"santerag/internal/embedding/tfidf"
	"santerag/internal/vectorstore/memory"
	"santerag/internal/vectorstore/sqlite"
)

// stubEmbedder produces deterministic vectors without any corpus fitting,
// and can be told to fail at either phase.
type stubEmbedder struct {
	dim         int
	failPrepare bool
	failEmbed   bool
}

func (s *stubEmbedder) Name() string { return "stub" }

func (s *stubEmbedder) Prepare([]string) error {
	if s.failPrepare {
		return errors.New("prepare failed")
	}
	return nil
}

func (s *stubEmbedder) Dimension() int { return s.dim }

func (s *stubEmbedder) Embed(text string) ([]float64, error) {
	if s.failEmbed {
		return nil, errors.New("embed failed")
	}
	vec := make([]float64, s.dim)
	for i := range vec {
		vec[i] = float64((len(text)*(i+3))%7) + 1
	}
	return vec, nil
}

func corpusChunks() []domain.Chunk {
	texts := []string{
		"Le diabète est une maladie chronique caractérisée par un excès de sucre dans le sang.",
		"Les symptômes du diabète comprennent une soif intense et une fatigue durable.",
		"La grippe est une infection virale qui guérit le plus souvent en une semaine.",
	}
	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ChunkID:      "doc:" + string(rune('0'+i)),
			DocumentID:   "doc",
			DocumentPath: "data/brochure.pdf",
			Text:         text,
			Index:        i,
		}
	}
	return chunks
}

func TestBuildEmptyCorpus(t *testing.T) {
	ix := New(&stubEmbedder{dim: 4}, memory.NewStorage())
	require.NoError(t, ix.Build(nil))
	assert.Zero(t, ix.Len())
	results, err := ix.Query("question", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBuildFailsFastOnPrepareError(t *testing.T) {
	ix := New(&stubEmbedder{dim: 4, failPrepare: true}, memory.NewStorage())
	err := ix.Build(corpusChunks())
	require.Error(t, err)
	assert.Zero(t, ix.Len())
}

func TestBuildFailsFastOnEmbedError(t *testing.T) {
	ix := New(&stubEmbedder{dim: 4, failEmbed: true}, memory.NewStorage())
	err := ix.Build(corpusChunks())
	require.Error(t, err)
	assert.Zero(t, ix.Len())
}

func TestQueryDeterministic(t *testing.T) {
	ix := New(tfidf.NewEmbedder(), memory.NewStorage())
	require.NoError(t, ix.Build(corpusChunks()))

	first, err := ix.Query("Quels sont les symptômes du diabète ?", 2)
	require.NoError(t, err)
	second, err := ix.Query("Quels sont les symptômes du diabète ?", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
}

func TestQueryNonPositiveK(t *testing.T) {
	ix := New(tfidf.NewEmbedder(), memory.NewStorage())
	require.NoError(t, ix.Build(corpusChunks()))
	results, err := ix.Query("diabète", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	results, err = ix.Query("diabète", -1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDocumentsDistinct(t *testing.T) {
	chunks := corpusChunks()
	chunks = append(chunks, domain.Chunk{
		ChunkID:      "other:0",
		DocumentID:   "other",
		DocumentPath: "data/autre.pdf",
		Text:         "Une autre brochure avec un contenu différent sur la santé.",
		Index:        0,
	})
	ix := New(tfidf.NewEmbedder(), memory.NewStorage())
	require.NoError(t, ix.Build(chunks))

	docs := ix.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "doc", docs[0].ID)
	assert.Equal(t, "brochure.pdf", docs[0].Title)
	assert.Equal(t, "other", docs[1].ID)
	assert.Equal(t, "autre.pdf", docs[1].Title)
}

func TestOpenRestoresQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	store, err := sqlite.NewStorage(path)
	require.NoError(t, err)
	ix := New(tfidf.NewEmbedder(), store)
	require.NoError(t, ix.Build(corpusChunks()))
	question := "Quels sont les symptômes du diabète ?"
	want, err := ix.Query(question, 3)
	require.NoError(t, err)
	require.NotEmpty(t, want)
	require.NoError(t, store.Close())

	reopenedStore, err := sqlite.NewStorage(path)
	require.NoError(t, err)
	defer reopenedStore.Close()
	reopened, err := Open(tfidf.NewEmbedder(), reopenedStore)
	require.NoError(t, err)
	assert.Equal(t, ix.Len(), reopened.Len())

	got, err := reopened.Query(question, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOpenRejectsEmbedderMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	store, err := sqlite.NewStorage(path)
	require.NoError(t, err)
	ix := New(tfidf.NewEmbedder(), store)
	require.NoError(t, ix.Build(corpusChunks()))
	require.NoError(t, store.Close())

	reopenedStore, err := sqlite.NewStorage(path)
	require.NoError(t, err)
	defer reopenedStore.Close()
	_, err = Open(&stubEmbedder{dim: 4}, reopenedStore)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tfidf")
}

func TestOpenRequiresPersistentStore(t *testing.T) {
	_, err := Open(tfidf.NewEmbedder(), memory.NewStorage())
	assert.Error(t, err)
}
