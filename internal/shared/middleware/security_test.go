package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsHostAllowed(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		allowed []string
		want    bool
	}{
		{"empty list allows all", "anything.example", nil, true},
		{"exact match", "api.wealthtrackr.local:8443", []string{"api.wealthtrackr.local:8443"}, true},
		{"port ignored on host", "api.wealthtrackr.local:8443", []string{"api.wealthtrackr.local"}, true},
		{"port ignored on allowed", "api.wealthtrackr.local", []string{"api.wealthtrackr.local:8443"}, true},
		{"case and whitespace", "  API.WealthTrackr.Local:80 ", []string{" api.wealthtrackr.local "}, true},
		{"ipv6 bracketed", "[::1]:8080", []string{"::1"}, true},
		{"ipv6 bare against bracketed", "::1", []string{"[::1]:8080"}, true},
		{"ipv6 zone", "[fe80::1%lo0]:8080", []string{"fe80::1%lo0"}, true},
		{"second entry", "reports.wealthtrackr.local", []string{"wealthtrackr.local", "reports.wealthtrackr.local"}, true},
		{"subdomain is distinct", "app.wealthtrackr.local", []string{"wealthtrackr.local"}, false},
		{"different ipv6", "[::2]:8080", []string{"[::1]:8080"}, false},
		{"empty host rejected", "", []string{"wealthtrackr.local"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHostAllowed(tt.host, tt.allowed); got != tt.want {
				t.Errorf("IsHostAllowed(%q, %v) = %v, want %v", tt.host, tt.allowed, got, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		path      string
		wantCache string
	}{
		{"/api/accounts/acc-001", "no-store"},
		{"/health", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			SecurityHeaders(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q", got)
			}
			if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
				t.Errorf("X-Frame-Options = %q", got)
			}
			if got := rr.Header().Get("Cache-Control"); got != tt.wantCache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.wantCache)
			}
		})
	}
}

func TestRequireHTTPS(t *testing.T) {
	tests := []struct {
		name         string
		tls          bool
		forwarded    string
		wantStatus   int
		wantLocation string
	}{
		{"plain http redirected", false, "", http.StatusMovedPermanently, "https://api.wealthtrackr.local/api/budget?month=May%202025"},
		{"direct tls served", true, "", http.StatusOK, ""},
		{"proxy https served", false, "HTTPS", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/budget?month=May%202025", nil)
			req.Host = "api.wealthtrackr.local"
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			rr := httptest.NewRecorder()
			HSTS(RequireHTTPS(http.HandlerFunc(okHandler))).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			if rr.Header().Get("Strict-Transport-Security") == "" {
				t.Error("HSTS header missing")
			}
		})
	}
}
