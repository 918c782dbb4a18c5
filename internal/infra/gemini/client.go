package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"golf-caddie/internal/infra"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	requestTimeout = 20 * time.Second
)

// Client produces caddie advice through the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	config  *genai.GenerateContentConfig
	timeout time.Duration
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	return NewClientWithURL(ctx, apiKey, model, "")
}

// NewClientWithURL points the SDK at baseURL; an empty baseURL uses the public endpoint.
func NewClientWithURL(ctx context.Context, apiKey, model, baseURL string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText("You are a witty golf caddie.", genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.7),
			MaxOutputTokens:   180,
		},
		timeout: requestTimeout,
	}, nil
}

// WithTimeout bounds each generate call; used by tests.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

func (c *Client) Name() string {
	return "gemini"
}

func (c *Client) Recommend(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	var text string
	err := infra.WithRetry(ctx, infra.QuickRetryConfig(), func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.Models.GenerateContent(attemptCtx, c.model, contents, c.config)
		if err != nil {
			var apiErr genai.APIError
			if errors.As(err, &apiErr) && !infra.IsRetryableHTTPStatus(apiErr.Code) {
				return infra.Permanent(fmt.Errorf("gemini API error %d: %s", apiErr.Code, apiErr.Message))
			}
			return fmt.Errorf("generating content: %w", err)
		}
		text = strings.TrimSpace(resp.Text())
		return nil
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return text, nil
}
