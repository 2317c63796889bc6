package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// ErrUnavailable means the provider has no API key configured.
var ErrUnavailable = errors.New("embedding provider unavailable")

// Config holds the embedding provider settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Provider computes text embeddings through the OpenAI embeddings API. The
// underlying client is created lazily on first use.
type Provider struct {
	cfg Config

	once   sync.Once
	client openai.Client
}

// NewProvider returns a Provider. An empty API key is allowed; Embed then
// fails with ErrUnavailable and callers degrade gracefully.
func NewProvider(cfg Config) *Provider {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = string(openai.EmbeddingModelTextEmbedding3Small)
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 60
	}
	return &Provider{cfg: cfg}
}

// Embed returns the embedding vector for text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, ErrUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("embedding: text is empty")
	}

	p.once.Do(func() {
		opts := []option.RequestOption{option.WithAPIKey(p.cfg.APIKey)}
		if base := strings.TrimSpace(p.cfg.BaseURL); base != "" {
			opts = append(opts, option.WithBaseURL(base))
		}
		p.client = openai.NewClient(opts...)
	})

	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Model: openai.EmbeddingModel(p.cfg.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding response is empty")
	}
	return resp.Data[0].Embedding, nil
}
