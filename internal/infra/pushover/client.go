package pushover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golf-caddie/internal/infra"
)

const (
	defaultBaseURL = "https://api.pushover.net/1"
	maxMessageLen  = 1024
	title          = "Golf Caddie"
)

// Client pushes each caddie reply to a phone. Without credentials it does nothing.
type Client struct {
	token      string
	userKey    string
	baseURL    string
	httpClient *http.Client
}

func NewClient(token, userKey string) *Client {
	return NewClientWithURL(token, userKey, defaultBaseURL)
}

func NewClientWithURL(token, userKey, baseURL string) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type messageResponse struct {
	Status int      `json:"status"`
	Errors []string `json:"errors"`
}

func (c *Client) Notify(ctx context.Context, message string) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}
	if r := []rune(message); len(r) > maxMessageLen {
		message = string(r[:maxMessageLen])
	}

	form := url.Values{
		"token":   {c.token},
		"user":    {c.userKey},
		"title":   {title},
		"message": {message},
	}.Encode()

	return infra.WithRetry(ctx, infra.QuickRetryConfig(), func() error {
		return c.post(ctx, form)
	})
}

func (c *Client) post(ctx context.Context, form string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages.json", strings.NewReader(form))
	if err != nil {
		return infra.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return infra.StatusError("pushover", resp.StatusCode, body)
	}

	var out messageResponse
	if err := json.Unmarshal(body, &out); err == nil && out.Status != 1 {
		return infra.Permanent(fmt.Errorf("pushover rejected message: %s", strings.Join(out.Errors, "; ")))
	}
	return nil
}
