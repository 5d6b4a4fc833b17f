package middleware

import (
	"net"
	"net/http"
	"strings"
)

// HSTS pins clients to HTTPS for a year, subdomains included.
func HSTS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders sets the response headers every JSON and export response
// carries: no MIME sniffing, no framing, no referrer leakage and no caching of
// financial data.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		if strings.HasPrefix(r.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireHTTPS redirects plain HTTP requests to the same URL over HTTPS. A
// request counts as HTTPS when it arrived over TLS or a proxy says so.
func RequireHTTPS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, "https://"+r.Host+r.RequestURI, http.StatusMovedPermanently)
	})
}

// splitHost lowercases h and separates an optional port.
func splitHost(h string) (host, port string) {
	h = strings.ToLower(strings.TrimSpace(h))
	if hostPart, portPart, err := net.SplitHostPort(h); err == nil {
		return strings.Trim(hostPart, "[]"), portPart
	}
	return strings.Trim(h, "[]"), ""
}

// IsHostAllowed reports whether host appears in allowedHosts. Hosts compare
// case-insensitively and the port is ignored. An empty list allows everything.
func IsHostAllowed(host string, allowedHosts []string) bool {
	if len(allowedHosts) == 0 {
		return true
	}

	name, _ := splitHost(host)
	if name == "" {
		return false
	}
	for _, allowed := range allowedHosts {
		if allowedName, _ := splitHost(allowed); allowedName == name {
			return true
		}
	}
	return false
}
