package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRedirectToHTTPS(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		tlsPort      string
		wantStatus   int
		wantLocation string
	}{
		{"default https port", "api.wealthtrackr.local", "443", http.StatusMovedPermanently, "https://api.wealthtrackr.local/api/accounts?type=savings"},
		{"custom tls port", "api.wealthtrackr.local:80", "8443", http.StatusMovedPermanently, "https://api.wealthtrackr.local:8443/api/accounts?type=savings"},
		{"unknown host refused", "evil.example", "443", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/accounts?type=savings", nil)
			req.Host = tt.host
			rr := httptest.NewRecorder()
			redirectToHTTPS([]string{"api.wealthtrackr.local"}, tt.tlsPort).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}
