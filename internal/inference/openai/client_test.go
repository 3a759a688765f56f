package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PablitoTheChicken/ForReal-Server/internal/app/predictions"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
)

var match = predictions.Match{Home: "Arsenal", Away: "Chelsea", League: "Premier League", Season: "2023", Date: "2024-05-01"}

type sentRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type       string `json:"type"`
		JSONSchema struct {
			Name   string         `json:"name"`
			Strict bool           `json:"strict"`
			Schema map[string]any `json:"schema"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestPredictScoreSendsStructuredRequest(t *testing.T) {
	var got sentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion(`{"score":"2-1"}`)))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "sk-test", Model: "test-model"})
	score, err := c.PredictScore(context.Background(), match)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != "2-1" {
		t.Fatalf("expected 2-1, got %q", score)
	}
	if got.Model != "test-model" || got.ResponseFormat.Type != "json_schema" || !got.ResponseFormat.JSONSchema.Strict {
		t.Fatalf("unexpected request %+v", got)
	}
	props, _ := got.ResponseFormat.JSONSchema.Schema["properties"].(map[string]any)
	scoreProp, _ := props["score"].(map[string]any)
	if scoreProp["pattern"] != `^\d{1,2}-\d{1,2}$` {
		t.Fatalf("expected score pattern in schema, got %v", scoreProp)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(got.Messages))
	}
	user := got.Messages[1].Content
	for _, want := range []string{"Arsenal", "Chelsea", "Premier League", "2023", "2024-05-01"} {
		if !strings.Contains(user, want) {
			t.Fatalf("expected %q in prompt %q", want, user)
		}
	}
}

func TestPredictScoreErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, func(err error) bool {
			up, ok := providers.AsUpstreamError(err)
			return ok && up.StatusCode == http.StatusInternalServerError
		}},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`, func(err error) bool {
			return providers.HTTPStatus(err) == http.StatusTooManyRequests
		}},
		{"no choices", http.StatusOK, `{"choices":[]}`, func(err error) bool { return errors.Is(err, ErrEmptyResponse) }},
		{"missing score", http.StatusOK, completion(`{}`), func(err error) bool { return errors.Is(err, ErrEmptyResponse) }},
		{"unstructured", http.StatusOK, completion(`2-1`), func(err error) bool { return err != nil }},
		{"bad json", http.StatusOK, `{`, func(err error) bool { return err != nil }},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
		_, err := c.PredictScore(context.Background(), match)
		srv.Close()
		if !tc.check(err) {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}

func TestPredictScoreRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"","refusal":"no"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	if _, err := c.PredictScore(context.Background(), match); err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("expected refusal error, got %v", err)
	}
}

func TestPredictScoreHonorsContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
	if _, err := c.PredictScore(ctx, match); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	if c.baseURL != defaultBaseURL || c.model != defaultModel {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.httpClient.Timeout != defaultHTTPTimeout {
		t.Fatalf("expected default http client timeout, got %s", c.httpClient.Timeout)
	}
	if c.api == nil {
		t.Fatalf("expected api client")
	}
}
