package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golf-caddie/internal/domain"
	"golf-caddie/internal/infra"
	"golf-caddie/internal/infra/cache"
)

const (
	defaultBaseURL = "https://api.open-meteo.com"
	// FreshFor is how long a reading is served without asking again.
	FreshFor = 60 * time.Second
	// keepFor bounds how old a stale reading may be when the API is down.
	keepFor = 6 * time.Hour
)

// Client fetches current wind and serves the last reading when the API fails.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      cache.Cache
	now        func() time.Time
}

func NewClient(c cache.Cache) *Client {
	return NewClientWithURL(defaultBaseURL, c)
}

func NewClientWithURL(baseURL string, c cache.Cache) *Client {
	if c == nil {
		c = cache.NewMemory()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 2 * time.Second},
		baseURL:    baseURL,
		cache:      c,
		now:        time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

type forecastResponse struct {
	Current struct {
		WindSpeed     float64 `json:"wind_speed_10m"`
		WindDirection float64 `json:"wind_direction_10m"`
	} `json:"current"`
}

type cachedReading struct {
	SpeedMS      float64   `json:"speed_ms"`
	DirectionDeg int       `json:"direction_deg"`
	FetchedAt    time.Time `json:"fetched_at"`
}

func cacheKey(at domain.Coordinates) string {
	return fmt.Sprintf("wind:%.4f,%.4f", at.Lat, at.Lon)
}

func (c *Client) CurrentWind(ctx context.Context, at domain.Coordinates) (domain.WindReading, error) {
	key := cacheKey(at)
	cached, hit := c.load(ctx, key)
	if hit && c.now().Sub(cached.FetchedAt) < FreshFor {
		return cached, nil
	}

	reading, err := c.fetch(ctx, at)
	if err != nil {
		if hit {
			cached.Stale = true
			return cached, nil
		}
		return domain.WindReading{}, fmt.Errorf("%w: wind at %s: %v", domain.ErrUnavailable, at, err)
	}

	c.store(ctx, key, reading)
	return reading, nil
}

func (c *Client) fetch(ctx context.Context, at domain.Coordinates) (domain.WindReading, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", at.Lat))
	q.Set("longitude", fmt.Sprintf("%.4f", at.Lon))
	q.Set("current", "wind_speed_10m,wind_direction_10m")
	q.Set("wind_speed_unit", "ms")
	q.Set("timezone", "UTC")
	endpoint := c.baseURL + "/v1/forecast?" + q.Encode()

	var result forecastResponse
	retryErr := infra.WithRetry(ctx, infra.QuickRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return infra.StatusError("open-meteo", resp.StatusCode, body)
		}

		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return infra.Permanent(fmt.Errorf("decoding response: %w", err))
		}
		return nil
	})
	if retryErr != nil {
		return domain.WindReading{}, retryErr
	}

	return domain.WindReading{
		SpeedMS:      result.Current.WindSpeed,
		DirectionDeg: int(result.Current.WindDirection),
		FetchedAt:    c.now(),
	}, nil
}

func (c *Client) load(ctx context.Context, key string) (domain.WindReading, bool) {
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return domain.WindReading{}, false
	}
	var cr cachedReading
	if err := json.Unmarshal(data, &cr); err != nil {
		return domain.WindReading{}, false
	}
	return domain.WindReading{SpeedMS: cr.SpeedMS, DirectionDeg: cr.DirectionDeg, FetchedAt: cr.FetchedAt}, true
}

func (c *Client) store(ctx context.Context, key string, r domain.WindReading) {
	data, err := json.Marshal(cachedReading{SpeedMS: r.SpeedMS, DirectionDeg: r.DirectionDeg, FetchedAt: r.FetchedAt})
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, key, data, keepFor)
}
