package apifootball

import (
	"net/http"
	"testing"
	"time"
)

func TestNormalizeBaseURLTrimsTrailingSlashAndDefaults(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"", defaultBaseURL},
		{"https://api.example.com/", "https://api.example.com"},
		{"https://api.example.com", "https://api.example.com"},
	}

	for _, c := range cases {
		if got := normalizeBaseURL(c.input); got != c.expected {
			t.Fatalf("expected %s, got %s", c.expected, got)
		}
	}
}

func TestResolveHTTPClientTimeouts(t *testing.T) {
	client, ok := resolveHTTPClient(nil, 0).(*http.Client)
	if !ok || client.Timeout != defaultHTTPTimeout {
		t.Fatalf("expected default timeout client, got %+v", client)
	}

	client, ok = resolveHTTPClient(nil, 3*time.Second).(*http.Client)
	if !ok || client.Timeout != 3*time.Second {
		t.Fatalf("expected configured timeout, got %+v", client)
	}

	custom := &http.Client{Timeout: 5 * time.Second}
	if got := resolveHTTPClient(custom, time.Second); got != custom {
		t.Fatalf("expected provided client to be used")
	}
}

func TestParseRetryAfter(t *testing.T) {
	h := make(http.Header)
	if got := parseRetryAfter(h); got != 0 {
		t.Fatalf("expected 0 without header, got %s", got)
	}
	h.Set("Retry-After", "3")
	if got := parseRetryAfter(h); got != 3*time.Second {
		t.Fatalf("expected 3s, got %s", got)
	}
	h.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	if got := parseRetryAfter(h); got != 0 {
		t.Fatalf("expected 0 for http-date, got %s", got)
	}
}
