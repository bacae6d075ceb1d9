// Package ui holds the HTTP server shell and terminal rendering helpers.
package ui

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzhttp"
)

// DetermineAccess inspects the requested listen address and returns whether
// authentication is required (i.e., binding to a non-loopback/unspecified host).
// It rejects remote bindings unless allowRemote is explicitly enabled.
func DetermineAccess(listenAddr string, allowRemote bool) (bool, error) {
	host, _, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return false, fmt.Errorf("invalid listen address %q: %w", listenAddr, err)
	}

	normalizedHost := host
	if normalizedHost == "" {
		normalizedHost = "0.0.0.0"
	}

	if isLoopbackHost(normalizedHost) {
		return false, nil
	}

	if !allowRemote {
		return false, fmt.Errorf("refusing remote bind to %q without an auth token", normalizedHost)
	}

	return true, nil
}

// HandlerConfig captures the inputs required to build the API HTTP handler.
type HandlerConfig struct {
	RequireAuth bool
	AuthToken   string
	// Compress enables gzip for responses of clients that accept it.
	Compress bool
	Register func(*http.ServeMux)
}

// NewHandler constructs the HTTP handler for the API server using the provided configuration.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if cfg.RequireAuth && strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("auth token required when authentication is enabled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	if cfg.Register != nil {
		cfg.Register(mux)
	}

	var handler http.Handler = mux
	if cfg.Compress {
		handler = gzhttp.GzipHandler(handler)
	}
	if !cfg.RequireAuth && strings.TrimSpace(cfg.AuthToken) == "" {
		return handler, nil
	}

	expectedHeader := "Bearer " + strings.TrimSpace(cfg.AuthToken)
	next := handler
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		actual := strings.TrimSpace(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare([]byte(actual), []byte(expectedHeader)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="sysapp"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}), nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	resp := map[string]string{"status": "ok"}
	enc := json.NewEncoder(w)
	enc.Encode(resp) // nolint:errchkjson
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() {
			return true
		}
		if ip.IsUnspecified() {
			return false
		}
		return false
	}

	return false
}
