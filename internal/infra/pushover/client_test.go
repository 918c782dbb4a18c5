package pushover_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golf-caddie/internal/infra/pushover"
)

func TestClient_Notify(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages.json" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		r.ParseForm()
		got = map[string]string{
			"token":   r.PostForm.Get("token"),
			"user":    r.PostForm.Get("user"),
			"message": r.PostForm.Get("message"),
			"title":   r.PostForm.Get("title"),
		}
		w.Write([]byte(`{"status":1}`))
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("tok", "usr", server.URL)
	if err := client.Notify(context.Background(), "8-iron, aim left edge"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	want := map[string]string{"token": "tok", "user": "usr", "message": "8-iron, aim left edge", "title": "Golf Caddie"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: got %q, want %q", k, got[k], v)
		}
	}
}

func TestClient_NotifyWithoutCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("", "", server.URL)
	if err := client.Notify(context.Background(), "hello"); err != nil {
		t.Errorf("Notify: %v", err)
	}
}

func TestClient_NotifyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":0}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("tok", "usr", server.URL)
	if err := client.Notify(context.Background(), "hello"); err == nil {
		t.Error("expected error")
	}
}

func TestClient_NotifyRejected(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"status":0,"errors":["user identifier is invalid"]}`))
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("tok", "usr", server.URL)
	err := client.Notify(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "user identifier is invalid") {
		t.Errorf("got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestClient_NotifyRetriesServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status":1}`))
	}))
	defer server.Close()

	client := pushover.NewClientWithURL("tok", "usr", server.URL)
	if err := client.Notify(context.Background(), "hello"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}
