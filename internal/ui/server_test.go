package ui_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Fooracles/SystemApp-sub000/internal/ui"
)

func TestDetermineAccessLoopback(t *testing.T) {
	t.Parallel()

	requireAuth, err := ui.DetermineAccess("127.0.0.1:0", false)
	if err != nil {
		t.Fatalf("DetermineAccess returned error: %v", err)
	}
	if requireAuth {
		t.Fatalf("expected loopback binding to skip auth requirement")
	}
}

func TestDetermineAccessRemoteWithoutAllow(t *testing.T) {
	t.Parallel()

	if _, err := ui.DetermineAccess("0.0.0.0:0", false); err == nil {
		t.Fatalf("expected remote binding to fail without a token")
	}
	if _, err := ui.DetermineAccess("no-port", true); err == nil {
		t.Fatalf("expected malformed address to fail")
	}
}

func newServer(t *testing.T, cfg ui.HandlerConfig) *httptest.Server {
	t.Helper()
	cfg.Register = func(mux *http.ServeMux) {
		mux.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, strings.Repeat("pong ", 400))
		})
	}
	handler, err := ui.NewHandler(cfg)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestRemoteAuthEnforcement(t *testing.T) {
	t.Parallel()
	ts := newServer(t, ui.HandlerConfig{RequireAuth: true, AuthToken: "secret-token"})

	resp, err := http.Get(ts.URL + "/api/ping")
	if err != nil {
		t.Fatalf("GET /api/ping without auth: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without Authorization header, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health check should not require auth, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/ping", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/ping with auth: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with Authorization header, got %d", resp.StatusCode)
	}
}

func TestNewHandlerRequiresToken(t *testing.T) {
	if _, err := ui.NewHandler(ui.HandlerConfig{RequireAuth: true}); err == nil {
		t.Fatalf("expected error when auth is required without a token")
	}
}

func TestCompression(t *testing.T) {
	t.Parallel()
	ts := newServer(t, ui.HandlerConfig{Compress: true})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/ping", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatalf("GET /api/ping: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", got)
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	body, _ := io.ReadAll(zr)
	if !strings.HasPrefix(string(body), "pong pong") {
		t.Fatalf("unexpected body %q", body[:20])
	}
}
