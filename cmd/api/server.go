package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"wealthtrackr/internal/interfaces/scheduler"
	"wealthtrackr/internal/shared/config"
	"wealthtrackr/internal/shared/middleware"
)

// servers owns the API listener and, with TLS redirect on, the :80 redirector.
type servers struct {
	api      *http.Server
	redirect *http.Server
	tls      *config.TLSConfig
	errCh    chan error
}

func newServers(handler http.Handler, cfg *config.Config) *servers {
	s := &servers{
		api: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// exports of large ledgers stream for a while
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		tls:   &cfg.TLS,
		errCh: make(chan error, 2),
	}
	if cfg.TLS.Enabled && cfg.TLS.RedirectHTTP {
		s.redirect = &http.Server{
			Addr:              ":80",
			Handler:           redirectToHTTPS(cfg.Server.AllowedHosts, cfg.Server.Port),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return s
}

// Start launches the listeners. Fatal listener errors arrive on Errors.
func (s *servers) Start() {
	if s.redirect != nil {
		go func() {
			log.Println("HTTP redirect server starting on :80")
			if err := s.redirect.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("HTTP redirect server error: %v", err)
			}
		}()
	}

	go func() {
		var err error
		if s.tls.Enabled {
			log.Printf("WealthTrackr API listening on https://%s", s.api.Addr)
			err = s.api.ListenAndServeTLS(s.tls.CertPath, s.tls.KeyPath)
		} else {
			log.Printf("WealthTrackr API listening on http://%s", s.api.Addr)
			err = s.api.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- fmt.Errorf("api server: %w", err)
		}
	}()
}

// Errors reports listener failures that happen after Start.
func (s *servers) Errors() <-chan error {
	return s.errCh
}

// Shutdown drains in-flight requests first, then stops background syncs so
// no sync starts against a store that is about to close.
func (s *servers) Shutdown(sched *scheduler.Scheduler, timeout time.Duration) {
	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.redirect != nil {
		if err := s.redirect.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down HTTP redirect server: %v", err)
		}
	}
	if err := s.api.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down API server: %v", err)
	}
	if sched != nil {
		sched.Shutdown(timeout)
	}

	log.Println("Server stopped")
}

// redirectToHTTPS answers every plain-HTTP request with a 301 to the API's
// HTTPS port. Unknown Host headers are refused so the redirect cannot be
// pointed at another site.
func redirectToHTTPS(allowedHosts []string, tlsPort string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}
		if !middleware.IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}

		name := host
		if h, _, err := net.SplitHostPort(host); err == nil {
			name = h
		}
		target := name
		if tlsPort != "" && tlsPort != "443" {
			target = net.JoinHostPort(name, tlsPort)
		}
		http.Redirect(w, r, "https://"+target+r.RequestURI, http.StatusMovedPermanently)
	})
}
