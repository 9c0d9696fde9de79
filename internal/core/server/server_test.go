package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mateonav/geolayers/internal/core/config"
)

func testHandler() http.Handler {
	cfg := config.Config{
		MaxUploadBytes: 1 << 20,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(cfg, logger, nil, nil)
}

func TestHandler_Probes(t *testing.T) {
	srv := httptest.NewServer(testHandler())
	defer srv.Close()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d", path, resp.StatusCode)
		}
	}
}

func TestHandler_ComposeRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(testHandler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/compose", "text/plain", strings.NewReader("nope"))
	if err != nil {
		t.Fatalf("POST /compose: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_RateLimit(t *testing.T) {
	cfg := config.Config{
		MaxUploadBytes: 1 << 20,
		RateLimitRPS:   1,
		RateLimitBurst: 1,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewHandler(cfg, logger, nil, nil))
	defer srv.Close()

	// First request consumes the burst; the second is shed.
	saw429 := false
	for i := 0; i < 3; i++ {
		resp, err := http.Post(srv.URL+"/compose", "text/plain", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("POST %d: %v", i, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			saw429 = true
		}
	}
	if !saw429 {
		t.Fatal("rate limiter never engaged")
	}
}
