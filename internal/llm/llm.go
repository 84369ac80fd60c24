// Package llm wraps the Gemini API behind the small generative capability
// the pipeline consumes.
package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"curator/internal/config"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout bounds a single model call when no timeout is configured.
	DefaultTimeout = 60 * time.Second
)

// Generator is the generative capability consumed by the scoring and
// delivery stages. A non-nil schema requests structured JSON output; the
// returned text is still raw and goes through the extract package.
type Generator interface {
	Complete(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error)
}

// Client is a rate-limited Gemini client implementing Generator.
type Client struct {
	gClient   *genai.Client
	modelName string
	limiter   *rate.Limiter
	timeout   time.Duration
}

// NewClient creates a Gemini client from configuration.
func NewClient(ctx context.Context, cfg config.Gemini) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or gemini.api_key in the config file")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}

	timeout := DefaultTimeout
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			timeout = d
		}
	}

	return &Client{
		gClient:   gClient,
		modelName: modelName,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		timeout:   timeout,
	}, nil
}

// Complete sends one prompt and returns the raw response text. Calls are
// rate limited and bounded by the configured timeout.
func (c *Client) Complete(ctx context.Context, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	genCfg := &genai.GenerateContentConfig{}
	if temperature > 0 {
		temp := temperature
		genCfg.Temperature = &temp
	}
	if schema != nil {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = schema
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}

// ModelName returns the model this client generates with.
func (c *Client) ModelName() string {
	return c.modelName
}
