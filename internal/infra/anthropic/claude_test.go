package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"golf-caddie/internal/infra/anthropic"
)

func TestClaudeClient_Recommend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if r.Header.Get("x-api-key") != "test-key" || r.Header.Get("anthropic-version") == "" {
			t.Errorf("headers: %v", r.Header)
		}

		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "claude-test" || req["system"] != "You are a witty golf caddie." {
			t.Errorf("request: got %v", req)
		}

		response := map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "Smooth 7-iron at the middle. "},
				{"type": "text", "text": "Water is for fish."},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "claude-test", server.URL)

	got, err := client.Recommend(context.Background(), "150 yards over water")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got != "Smooth 7-iron at the middle. Water is for fish." {
		t.Errorf("got %q", got)
	}
}

func TestClaudeClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "", server.URL)
	if _, err := client.Recommend(context.Background(), "prompt"); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestClaudeClient_RetriesOverload(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", 529)
			return
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"Take one more club."}]}`))
	}))
	defer server.Close()

	client := anthropic.NewClaudeClientWithURL("test-key", "", server.URL)

	got, err := client.Recommend(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got != "Take one more club." {
		t.Errorf("got %q", got)
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2", calls.Load())
	}
}
