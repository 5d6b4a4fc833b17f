package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestNewResource(t *testing.T) {
	res, err := newResource(Config{ServiceName: "wealthtrackr-api", Environment: "test"})
	if err != nil {
		t.Fatalf("newResource() error: %v", err)
	}

	var found bool
	for _, kv := range res.Attributes() {
		if kv.Key == semconv.ServiceNameKey && kv.Value.AsString() == "wealthtrackr-api" {
			found = true
		}
	}
	if !found {
		t.Errorf("service.name attribute missing from %v", res.Attributes())
	}
}

func TestMetricsServer_ServesMetrics(t *testing.T) {
	srv := newMetricsServer("0")
	if srv.Addr != ":0" {
		t.Errorf("Addr = %q, want :0", srv.Addr)
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want 200", rr.Code)
	}
}

func TestNoop(t *testing.T) {
	var shutdown ShutdownFunc = Noop
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Noop() error: %v", err)
	}
}
