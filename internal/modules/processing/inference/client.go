package inference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	generateAttempts = 3
	retryBackoff     = 300 * time.Millisecond
)

// Config holds the vision model settings.
type Config struct {
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Client talks to the Gemini API for page transcription, identifier
// extraction and answer structuring.
type Client struct {
	cfg Config
}

// NewClient validates the configuration and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("inference: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("inference: model is required")
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 60
	}
	return &Client{cfg: cfg}, nil
}

// generate sends one prompt with optional image parts and returns the first
// text candidate. Transient failures are retried with linear backoff.
func (c *Client) generate(ctx context.Context, systemPrompt string, jsonOutput bool, parts ...genai.Part) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.cfg.APIKey))
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(c.cfg.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}
	if jsonOutput {
		m.GenerationConfig.ResponseMIMEType = "application/json"
	}
	if strings.TrimSpace(systemPrompt) != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	var lastErr error
	for attempt := 1; attempt <= generateAttempts; attempt++ {
		resp, genErr := m.GenerateContent(ctx, parts...)
		if genErr == nil {
			if text := firstText(resp); text != "" {
				return text, nil
			}
			lastErr = errors.New("empty model response")
		} else {
			lastErr = genErr
		}

		if attempt < generateAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}
	}
	return "", fmt.Errorf("gemini request failed after %d attempts: %w", generateAttempts, lastErr)
}

// imagePart loads a page image into a request blob.
func imagePart(path string) (genai.Part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page image %s: %w", path, err)
	}
	mime := "image/png"
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".jpg" || ext == ".jpeg" {
		mime = "image/jpeg"
	}
	return &genai.Blob{MIMEType: mime, Data: data}, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				trimmed := strings.TrimSpace(string(text))
				if trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
