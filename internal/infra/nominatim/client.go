package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golf-caddie/internal/domain"
	"golf-caddie/internal/infra"
	"golf-caddie/internal/infra/cache"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "golfcaddie/1.0"
	resultTTL        = 24 * time.Hour
)

// Client geocodes place names through the OpenStreetMap Nominatim search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	cache      cache.Cache
}

func NewClient(userAgent string, c cache.Cache) *Client {
	return NewClientWithURL(defaultBaseURL, userAgent, c)
}

func NewClientWithURL(baseURL, userAgent string, c cache.Cache) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if c == nil {
		c = cache.NewMemory()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		userAgent:  userAgent,
		cache:      c,
	}
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) Geocode(ctx context.Context, query string) (domain.Coordinates, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Coordinates{}, domain.ErrNoResults
	}

	key := "geocode:" + strings.ToLower(query)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var coords domain.Coordinates
		if json.Unmarshal(data, &coords) == nil {
			return coords, nil
		}
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")
	endpoint := c.baseURL + "/search?" + q.Encode()

	var places []place
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return infra.StatusError("nominatim", resp.StatusCode, body)
		}

		if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
			return infra.Permanent(fmt.Errorf("decoding response: %w", err))
		}
		return nil
	})
	if retryErr != nil {
		return domain.Coordinates{}, fmt.Errorf("geocoding %q: %w", query, retryErr)
	}

	if len(places) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocoding %q: %w", query, domain.ErrNoResults)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parsing latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parsing longitude %q: %w", places[0].Lon, err)
	}
	coords := domain.Coordinates{Lat: lat, Lon: lon}

	if data, err := json.Marshal(coords); err == nil {
		_ = c.cache.Set(ctx, key, data, resultTTL)
	}
	return coords, nil
}
