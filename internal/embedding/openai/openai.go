// Package openai provides an embeddings client for OpenAI-compatible APIs,
// including Ollama's native endpoint shape. The system treats the remote
// model as a black box that must be deterministic for identical text and
// model version.
package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Client is an OpenAI-compatible embeddings client implementing the
// embedding.Embedder interface.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	dimension  int
	maxRetries int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a new embeddings client. It fails fast when the API key
// environment variable is unset so indexing aborts before any work is done.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 5,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Prepare is a no-op for remote embedding; the dimension is learned from the
// first response.
func (c *Client) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
// It is zero until the first successful Embed call.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text, retrying transient
// upstream failures with exponential backoff.
func (c *Client) Embed(text string) ([]float64, error) {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		vec, retryable, err := c.embedOnce(text)
		if err == nil {
			if c.dimension == 0 {
				c.dimension = len(vec)
			}
			return vec, nil
		}
		if !retryable || attempt == c.maxRetries {
			return nil, err
		}
		time.Sleep(retryDelay(attempt))
	}
	return nil, errors.New("no embedding returned")
}

func (c *Client) embedOnce(text string) (vec []float64, retryable bool, err error) {
	body, _ := json.Marshal(struct {
		Input  string `json:"input,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}{Input: text, Prompt: text, Model: c.model})

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				time.Sleep(time.Duration(secs) * time.Second)
			}
		}
		return nil, true, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	if vec := decodeEmbedding(payload); vec != nil {
		return vec, false, nil
	}
	return nil, true, errors.New("no embedding returned")
}

// decodeEmbedding accepts the OpenAI response shape and falls back to
// Ollama's native {"embedding": [...]} shape.
func decodeEmbedding(payload []byte) []float64 {
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil {
		if len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
			return openaiOut.Data[0].Embedding
		}
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil && len(ollamaOut.Embedding) > 0 {
		return ollamaOut.Embedding
	}
	return nil
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := 200 * time.Millisecond << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}
