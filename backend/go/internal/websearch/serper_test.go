package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"DocRAG/backend/go/internal/config"
)

func newSerper(t *testing.T, handler http.HandlerFunc) (*httptest.Server, config.SearchConfig) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, config.SearchConfig{Endpoint: srv.URL, APIKey: "test-key", NumResults: 2, ScrapeChars: 40, TimeoutSecs: 5}
}

func TestClient_Search(t *testing.T) {
	var got searchRequest
	_, cfg := newSerper(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("missing api key header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{
			"answerBox": {"answer": "An algorithm for computing gradients."},
			"organic": [
				{"title": "Backpropagation - Wikipedia", "link": "https://en.wikipedia.org/wiki/Backpropagation", "snippet": "In machine learning, backpropagation is...", "position": 1},
				{"title": "Backprop explained", "link": "https://example.com/bp", "snippet": "A gentle intro", "position": 2},
				{"title": "Extra", "link": "https://example.com/extra", "snippet": "dropped", "position": 3}
			]
		}`)
	})

	resp, err := NewClient(cfg, nil).Search(context.Background(), "What is backpropagation?")
	if err != nil {
		t.Fatal(err)
	}
	if got.Q != "What is backpropagation?" || got.Num != 2 {
		t.Errorf("unexpected request body %+v", got)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected results capped at 2, got %d", len(resp.Results))
	}
	text := resp.Format()
	for _, want := range []string{"Answer box: An algorithm", "[1] Backpropagation - Wikipedia", "Link: https://example.com/bp"} {
		if !strings.Contains(text, want) {
			t.Errorf("formatted results missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "dropped") {
		t.Errorf("results beyond NumResults must not be rendered")
	}
}

func TestClient_ScrapesTopResults(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>Backprop</h1><p>Gradients flow backwards through the network layers.</p></body></html>`)
	}))
	defer page.Close()

	_, cfg := newSerper(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"organic": [{"title": "ok", "link": %q}, {"title": "gone", "link": %q}]}`, page.URL+"/ok", page.URL+"/missing")
	})
	cfg.ScrapeTopN = 2

	resp, err := NewClient(cfg, nil).Search(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Results[0].Content, "# Backprop") {
		t.Errorf("expected markdown page content, got %q", resp.Results[0].Content)
	}
	if n := len([]rune(resp.Results[0].Content)); n > 44 {
		t.Errorf("content should be truncated, got %d runes", n)
	}
	if resp.Results[1].Content != "" {
		t.Errorf("a failed scrape should leave content empty")
	}
}

func TestClient_ServerError(t *testing.T) {
	_, cfg := newSerper(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Unauthorized."}`, http.StatusForbidden)
	})
	_, err := NewClient(cfg, nil).Search(context.Background(), "q")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected a status error, got %v", err)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	_, err := NewClient(config.SearchConfig{Endpoint: "http://127.0.0.1:0"}, nil).Search(context.Background(), "q")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestResponse_FormatEmpty(t *testing.T) {
	if got := (&Response{}).Format(); got != "No web results were found." {
		t.Errorf("unexpected %q", got)
	}
}
