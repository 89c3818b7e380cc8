package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoaderConfig configures where brochures are read from and how PDF text
// is extracted.
type LoaderConfig struct {
	BrochuresDir  string `yaml:"brochures_dir"`
	PdftotextPath string `yaml:"pdftotext_path"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how cleaned documents are split into chunks.
// OverlapSentences defaults to 0 so that concatenating chunks reconstructs
// the cleaned text.
type ChunkerConfig struct {
	Type             string `yaml:"type"`
	MinChars         int    `yaml:"min_chars"`
	MaxChars         int    `yaml:"max_chars"`
	OverlapSentences int    `yaml:"overlap_sentences"`
}

// SQLiteConfig contains the location of the persisted index.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// RetrieverConfig configures top-K retrieval.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// ComposerConfig holds the documented defaults for answer composition:
// how many sentences each section may keep and where long sentences are
// truncated.
type ComposerConfig struct {
	MaxSentencesPerSection int `yaml:"max_sentences_per_section"`
	MaxSentenceChars       int `yaml:"max_sentence_chars"`
}

// ServerConfig configures the web interface.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Loader      LoaderConfig      `yaml:"loader"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	Composer    ComposerConfig    `yaml:"composer"`
	Server      ServerConfig      `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/santerag/config.yaml.
// If neither exists, it writes defaults to ~/.config/santerag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "santerag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Loader:      LoaderConfig{BrochuresDir: filepath.Join("data", "brochures"), PdftotextPath: "pdftotext"},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Chunker:     ChunkerConfig{Type: "sentence", MinChars: 200, MaxChars: 800, OverlapSentences: 0},
		VectorStore: VectorStoreConfig{Type: "memory", SQLite: &SQLiteConfig{Path: filepath.Join("vector_store", "index.db")}},
		Retriever:   RetrieverConfig{TopK: 3},
		Composer:    ComposerConfig{MaxSentencesPerSection: 3, MaxSentenceChars: 240},
		Server:      ServerConfig{Addr: ":8080"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Loader.BrochuresDir == "" {
		cfg.Loader.BrochuresDir = filepath.Join("data", "brochures")
	}
	if cfg.Loader.PdftotextPath == "" {
		cfg.Loader.PdftotextPath = "pdftotext"
	}
	if cfg.Chunker.MinChars == 0 {
		cfg.Chunker.MinChars = 200
	}
	if cfg.Chunker.MaxChars == 0 {
		cfg.Chunker.MaxChars = 800
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 3
	}
	if cfg.Composer.MaxSentencesPerSection == 0 {
		cfg.Composer.MaxSentencesPerSection = 3
	}
	if cfg.Composer.MaxSentenceChars == 0 {
		cfg.Composer.MaxSentenceChars = 240
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.VectorStore.Type == "sqlite" && cfg.VectorStore.SQLite == nil {
		cfg.VectorStore.SQLite = &SQLiteConfig{Path: filepath.Join("vector_store", "index.db")}
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
}
