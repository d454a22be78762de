package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func textResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected key test-key, got %q", r.URL.Query().Get("key"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", r.Header.Get("Content-Type"))
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Fatalf("unexpected contents: %+v", req.Contents)
		}
		if req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("expected prompt hello, got %q", req.Contents[0].Parts[0].Text)
		}
		if req.GenerationConfig != nil {
			t.Errorf("expected no generation config, got %+v", req.GenerationConfig)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(textResponse("world"))
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", 10*time.Second)
	c.SetTestTransport(server.URL)

	result, err := c.Generate(context.Background(), "hello", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "world" {
		t.Errorf("expected 'world', got %q", result)
	}
}

func TestGenerate_JSONOnlySetsMimeType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.GenerationConfig == nil || req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("expected responseMimeType application/json, got %+v", req.GenerationConfig)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(textResponse(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", 10*time.Second)
	c.SetTestTransport(server.URL)

	if _, err := c.Generate(context.Background(), "give me json", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerate_NoAPIKey(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	c := NewClient("", "test-model", 10*time.Second)
	c.SetTestTransport(server.URL)

	_, err := c.Generate(context.Background(), "hello", false)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no network calls, got %d", calls)
	}
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    429,
				"message": "Resource has been exhausted",
				"status":  "RESOURCE_EXHAUSTED",
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", 10*time.Second)
	c.SetTestTransport(server.URL)

	_, err := c.Generate(context.Background(), "hello", false)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Resource has been exhausted" {
		t.Errorf("unexpected message: %q", apiErr.Message)
	}
}

func TestGenerate_APIErrorUnstructuredBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream proxy error"))
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", 10*time.Second)
	c.SetTestTransport(server.URL)

	_, err := c.Generate(context.Background(), "hello", false)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", apiErr.StatusCode)
	}
}

func TestGenerate_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model", 10*time.Second)
	c.SetTestTransport(server.URL)

	_, err := c.Generate(context.Background(), "hello", false)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
