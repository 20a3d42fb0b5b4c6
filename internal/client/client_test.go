package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/score"
)

func testConfig(endpoint string) model.ClientConfig {
	return model.ClientConfig{
		Endpoint:     endpoint,
		Timeout:      5 * time.Second,
		UserAgent:    "test-agent",
		MaxBodyBytes: 1 << 20,
	}
}

func TestVerify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("Unexpected User-Agent: %s", r.Header.Get("User-Agent"))
		}
		var req VerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "BBC reports" {
			t.Errorf("Unexpected text: %q", req.Text)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"score":90,"claims":[{"claim":"BBC reports","verdict":"Verified","reason":"ok"}],"sources":["https://www.ndtv.com"],"summary":"s"}`)
	}))
	defer server.Close()

	result, err := NewHTTPClient(testConfig(server.URL + "/verify")).Verify(context.Background(), "BBC reports")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Score != 90 || result.Claims[0].Verdict != model.VerdictVerified {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestVerify_SingleAttempt(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewHTTPClient(testConfig(server.URL)).Verify(context.Background(), "x")
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("Expected ErrBadResponse, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", attempts.Load())
	}
}

func TestVerify_BadResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusBadRequest, `{"error":"Request body must be JSON: { text: string }"}`},
		{"not json", http.StatusOK, `<html>oops</html>`},
		{"score out of range", http.StatusOK, `{"score":140,"claims":[],"sources":[],"summary":""}`},
		{"unknown verdict", http.StatusOK, `{"score":50,"claims":[{"claim":"c","verdict":"Maybe","reason":"r"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := NewHTTPClient(testConfig(server.URL)).Verify(context.Background(), "x")
			if !errors.Is(err, ErrBadResponse) {
				t.Errorf("Expected ErrBadResponse, got %v", err)
			}
		})
	}
}

func TestVerify_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewHTTPClient(testConfig(url)).Verify(context.Background(), "x")
	if err == nil {
		t.Fatal("Expected error for closed server")
	}
	if errors.Is(err, ErrBadResponse) {
		t.Error("Transport failure should not be reported as a bad response")
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || r.Method != http.MethodGet {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = fmt.Fprint(w, `{"status":"up","mode":"fallback"}`)
	}))
	defer server.Close()

	status, err := NewHTTPClient(testConfig(server.URL + "/verify")).Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if status.Status != "up" || status.Mode != "fallback" {
		t.Errorf("Unexpected status: %+v", status)
	}
}

func TestNewProxyFunc(t *testing.T) {
	fn := NewProxyFunc("http://proxy:8080", "http://secure-proxy:8443")

	req := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	u, err := fn(req)
	if err != nil || u.Host != "secure-proxy:8443" {
		t.Errorf("Expected https proxy, got %v %v", u, err)
	}

	req = httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	u, err = fn(req)
	if err != nil || u.Host != "proxy:8080" {
		t.Errorf("Expected http proxy, got %v %v", u, err)
	}
}

func TestLocalVerifier(t *testing.T) {
	v := NewLocalVerifier(score.NewScorer(score.WithSource(score.FixedSource(0))))

	result, err := v.Verify(context.Background(), "BBC reports: study finds new treatment effective")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Score != 90 {
		t.Errorf("Expected score 90 with zero jitter, got %d", result.Score)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := v.Verify(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
