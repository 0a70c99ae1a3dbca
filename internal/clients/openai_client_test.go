package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/redditpersona/config"
)

func newLLMServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const completionBody = `{
	"id": "cmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "llama-3-70b-8192",
	"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"name\":\"Alex\"}"}}],
	"citations": ["https://reddit.com/u/spez", " "]
}`

func TestCompleteSendsFixedParameters(t *testing.T) {
	var seen map[string]any
	srv := newLLMServer(t, http.StatusOK, completionBody, &seen)
	lc := NewLLMClient(config.LLMConfig{Provider: config.ProviderGroq, APIKey: "test-key", BaseURL: srv.URL, Timeout: 5 * time.Second})

	got, err := lc.Complete(context.Background(), "describe spez")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Content != `{"name":"Alex"}` {
		t.Fatalf("unexpected content %q", got.Content)
	}
	if len(got.Citations) != 1 || got.Citations[0] != "https://reddit.com/u/spez" {
		t.Fatalf("unexpected citations %v", got.Citations)
	}

	if seen["model"] != GROQ_DEFAULT_MODEL {
		t.Fatalf("expected default groq model, got %v", seen["model"])
	}
	if seen["temperature"] != 0.7 || seen["top_p"] != 0.9 || seen["max_tokens"] != float64(1500) {
		t.Fatalf("unexpected sampling params %v", seen)
	}
	msgs, _ := seen["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", seen["messages"])
	}
	system, _ := msgs[0].(map[string]any)
	if system["role"] != "system" || system["content"] != LLM_SYSTEM_PROMPT {
		t.Fatalf("unexpected system message %v", system)
	}
}

func TestCompleteMapsProviderErrors(t *testing.T) {
	srv := newLLMServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, nil)
	lc := NewLLMClient(config.LLMConfig{Provider: config.ProviderPerplexity, APIKey: "test-key", BaseURL: srv.URL})

	_, err := lc.Complete(context.Background(), "hi")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Service != "llm" || upstream.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected upstream error %+v", upstream)
	}
	if !strings.Contains(upstream.Body, "slow down") {
		t.Fatalf("expected provider body, got %q", upstream.Body)
	}
}

func TestCitationsFromRaw(t *testing.T) {
	if got := citationsFromRaw(`{"choices":[]}`); got != nil {
		t.Fatalf("expected nil citations, got %v", got)
	}
	if got := citationsFromRaw(`{"citations":"not-a-list"}`); got != nil {
		t.Fatalf("expected nil for non-array, got %v", got)
	}
}
