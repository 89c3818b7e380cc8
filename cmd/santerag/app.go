package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"santerag/internal/chunker"
	"santerag/internal/cleaner"
	"santerag/internal/composer"
	"santerag/internal/config"
	"santerag/internal/embedding"
	"santerag/internal/embedding/openai"
	"santerag/internal/embedding/tfidf"
	"santerag/internal/index"
	"santerag/internal/loader"
	"santerag/internal/logger"
	"santerag/internal/service"
	"santerag/internal/vectorstore"
	"santerag/internal/vectorstore/memory"
	"santerag/internal/vectorstore/sqlite"
)

// app bundles the assembled components for one command invocation.
type app struct {
	cfg *config.AppConfig
	svc *service.QAService
}

// buildApp assembles components from configuration, selecting each
// implementation by its config type string.
func buildApp(cfg *config.AppConfig) (*app, error) {
	var ch *chunker.SentenceChunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.MinChars, cfg.Chunker.MaxChars, cfg.Chunker.OverlapSentences)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	ld := loader.New(cfg.Loader.PdftotextPath)
	cl := cleaner.New()
	comp := composer.New(composer.Config{
		MaxSentencesPerSection: cfg.Composer.MaxSentencesPerSection,
		MaxSentenceChars:       cfg.Composer.MaxSentenceChars,
	})

	newIndex := func() (*index.Index, error) {
		emb, err := newEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		st, err := newStore(cfg)
		if err != nil {
			return nil, err
		}
		return index.New(emb, st), nil
	}

	svc := service.New(ld, cl, ch, comp, newIndex, cfg.Retriever.TopK)
	return &app{cfg: cfg, svc: svc}, nil
}

// ensureIndex makes the service ready to answer: when a persisted index
// exists it is loaded, otherwise a fresh indexing pass runs.
func (a *app) ensureIndex(ctx context.Context) error {
	if a.cfg.VectorStore.Type == "sqlite" {
		st, err := newStore(a.cfg)
		if err != nil {
			return err
		}
		if len(st.Chunks()) > 0 {
			emb, err := newEmbedder(a.cfg)
			if err != nil {
				return err
			}
			ix, err := index.Open(emb, st)
			if err != nil {
				return err
			}
			a.svc.UseIndex(ix)
			logger.Info("loaded persisted index (%d chunks)", ix.Len())
			return nil
		}
		// empty store: fall through to a fresh build, which opens its own
		if c, ok := st.(io.Closer); ok {
			_ = c.Close()
		}
	}
	stats, err := a.svc.BuildIndex(ctx, a.cfg.Loader.BrochuresDir)
	if err != nil {
		return err
	}
	logger.Info("built index: %d documents, %d chunks", stats.Documents, stats.Chunks)
	return nil
}

func newEmbedder(cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidf.NewEmbedder(), nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func newStore(cfg *config.AppConfig) (vectorstore.Storage, error) {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "sqlite":
		if cfg.VectorStore.SQLite == nil {
			return nil, fmt.Errorf("sqlite vector store config missing")
		}
		return sqlite.NewStorage(cfg.VectorStore.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}
