package openmeteo_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golf-caddie/internal/domain"
	"golf-caddie/internal/infra/cache"
	"golf-caddie/internal/infra/openmeteo"
)

var finchley = domain.Coordinates{Lat: 51.61234, Lon: -0.18766}

func TestClient_CurrentWind(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/v1/forecast" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		q := r.URL.Query()
		if q.Get("latitude") != "51.6123" || q.Get("longitude") != "-0.1877" {
			t.Errorf("coordinates: got %s,%s", q.Get("latitude"), q.Get("longitude"))
		}
		if q.Get("current") != "wind_speed_10m,wind_direction_10m" || q.Get("wind_speed_unit") != "ms" {
			t.Errorf("query: got %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"current":{"time":"2026-05-01T09:00","wind_speed_10m":4.2,"wind_direction_10m":245}}`))
	}))
	defer server.Close()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	client := openmeteo.NewClientWithURL(server.URL, cache.NewMemory()).WithClock(func() time.Time { return now })

	reading, err := client.CurrentWind(context.Background(), finchley)
	if err != nil {
		t.Fatalf("CurrentWind: %v", err)
	}
	if reading.SpeedMS != 4.2 || reading.DirectionDeg != 245 || reading.Stale {
		t.Errorf("reading: got %+v", reading)
	}

	now = now.Add(30 * time.Second)
	if _, err := client.CurrentWind(context.Background(), finchley); err != nil {
		t.Fatalf("CurrentWind: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("fresh reading should come from cache, calls=%d", calls.Load())
	}

	now = now.Add(time.Minute)
	client.CurrentWind(context.Background(), finchley)
	if calls.Load() != 2 {
		t.Errorf("expired reading should be refetched, calls=%d", calls.Load())
	}
}

func TestClient_ServesStaleOnFailure(t *testing.T) {
	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"current":{"wind_speed_10m":3,"wind_direction_10m":90}}`))
	}))
	defer server.Close()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	client := openmeteo.NewClientWithURL(server.URL, cache.NewMemory()).WithClock(func() time.Time { return now })

	if _, err := client.CurrentWind(context.Background(), finchley); err != nil {
		t.Fatalf("CurrentWind: %v", err)
	}

	failing.Store(true)
	now = now.Add(5 * time.Minute)

	reading, err := client.CurrentWind(context.Background(), finchley)
	if err != nil {
		t.Fatalf("stale fallback: %v", err)
	}
	if !reading.Stale || reading.SpeedMS != 3 {
		t.Errorf("reading: got %+v", reading)
	}
}

func TestClient_UnavailableWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer server.Close()

	client := openmeteo.NewClientWithURL(server.URL, nil)

	_, err := client.CurrentWind(context.Background(), finchley)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("got %v, want ErrUnavailable", err)
	}
}
