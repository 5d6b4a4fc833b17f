package main

import (
	"log"
	"net/http"

	httphandlers "wealthtrackr/internal/interfaces/http"
	"wealthtrackr/internal/shared/config"
	"wealthtrackr/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	httphandlers.RegisterRoutes(mux, httphandlers.Handlers{
		Account:        deps.AccountHandler,
		Transaction:    deps.TransactionHandler,
		Report:         deps.ReportHandler,
		Export:         deps.ExportHandler,
		Budget:         deps.BudgetHandler,
		BankConnection: deps.BankConnectionHandler,
	})

	// Apply global middleware
	handler := middleware.Tracing(middleware.CORS(cfg.Server.AllowedHosts)(mux))
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}
	handler = middleware.RequestID(middleware.Logging(middleware.SecurityHeaders(handler)))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.RequireHTTPS(handler))
		log.Println("TLS security middleware enabled (HSTS + HTTPS redirect)")
	}

	return handler
}
