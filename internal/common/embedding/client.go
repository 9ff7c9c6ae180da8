// Package embedding turns text into vectors for the product similarity index.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"solar-advisor/internal/common/config"
	"solar-advisor/internal/common/httpclient"
)

var ErrEmptyEmbedding = errors.New("embedding response contained no vectors")

// Embedder computes a vector for a single text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder computes vectors for several texts in one request.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Client calls an OpenAI compatible /embeddings endpoint.
type Client struct {
	http       *httpclient.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

var (
	_ Embedder      = (*Client)(nil)
	_ BatchEmbedder = (*Client)(nil)
)

func NewClient(cfg config.EmbeddingConfig, opts ...httpclient.Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("embedding base_url is required")
	}
	return &Client{
		http:       httpclient.New("embedding", config.GetDuration(cfg.Timeout), cfg.MaxRetries, opts...),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Model returns the embedding model name, used to namespace cache keys.
func (c *Client) Model() string {
	return c.model
}

type embeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per input, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embeddingResponse
	err := c.http.DoJSON(ctx, httpclient.Request{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/embeddings",
		Headers: map[string]string{"Authorization": "Bearer " + c.apiKey},
		Body:    embeddingRequest{Input: texts, Model: c.model, Dimensions: c.dimensions},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}

	if len(resp.Data) != len(texts) {
		if len(resp.Data) == 0 {
			return nil, ErrEmptyEmbedding
		}
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if len(d.Embedding) == 0 {
			return nil, ErrEmptyEmbedding
		}
		out[i] = d.Embedding
	}
	return out, nil
}
