package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lead-agent/prospect/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("sk-ant-test", "", srv.Client())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.baseURL = srv.URL
	return c
}

func textPayload(text string) string {
	return `{"content":[{"type":"text","text":"` + text + `"}],"usage":{"input_tokens":10,"output_tokens":2}}`
}

func TestNewClient_RejectsForeignKey(t *testing.T) {
	_, err := NewClient("sk-proj-abc123", "", nil)
	if err == nil {
		t.Fatal("expected an error for a non-Anthropic key")
	}
	var pe *models.ProfileError
	if !errors.As(err, &pe) || pe.Code != models.ErrCodeLLMAuthFailure {
		t.Errorf("error = %v, want %s", err, models.ErrCodeLLMAuthFailure)
	}
}

func TestComplete_SendsMessageAndTrims(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "sk-ant-test" {
			t.Errorf("x-api-key = %q", got)
		}
		if got := r.Header.Get("anthropic-version"); got != apiVersion {
			t.Errorf("anthropic-version = %q", got)
		}
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != DefaultModel {
			t.Errorf("model = %q, want %q", req.Model, DefaultModel)
		}
		if req.MaxTokens != 50 {
			t.Errorf("max_tokens = %d, want 50", req.MaxTokens)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v, want one user message", req.Messages)
		}
		w.Write([]byte(textPayload(" YES ")))
	})

	got, err := c.Complete(context.Background(), "Is this the company's site?", 50)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "YES" {
		t.Errorf("text = %q, want trimmed YES", got)
	}
}

func TestComplete_FallbackLadder(t *testing.T) {
	var mu sync.Mutex
	var seen []string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		seen = append(seen, req.Model)
		n := len(seen)
		mu.Unlock()

		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"type":"api_error","message":"overloaded"}}`))
			return
		}
		w.Write([]byte(textPayload("NO")))
	})

	got, err := c.Complete(context.Background(), "prompt", 50)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "NO" {
		t.Errorf("text = %q", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != DefaultModel || seen[1] != fallbackModels[0] {
		t.Errorf("models tried = %v", seen)
	}
}

func TestComplete_AuthFailureAbortsLadder(t *testing.T) {
	var calls atomic.Int32

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := c.Complete(context.Background(), "prompt", 50)
	if err == nil {
		t.Fatal("expected an error")
	}
	var pe *models.ProfileError
	if !errors.As(err, &pe) || pe.Code != models.ErrCodeLLMAuthFailure {
		t.Errorf("error = %v, want %s", err, models.ErrCodeLLMAuthFailure)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1: auth failures must not walk the ladder", calls.Load())
	}
}

func TestComplete_RateLimitedTriesEveryModel(t *testing.T) {
	var calls atomic.Int32

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	_, err := c.Complete(context.Background(), "prompt", 50)
	if err == nil {
		t.Fatal("expected an error")
	}
	var pe *models.ProfileError
	if !errors.As(err, &pe) || pe.Code != models.ErrCodeLLMRateLimited {
		t.Errorf("error = %v, want %s", err, models.ErrCodeLLMRateLimited)
	}
	if int(calls.Load()) != 1+len(fallbackModels) {
		t.Errorf("calls = %d, want the whole ladder", calls.Load())
	}
}
