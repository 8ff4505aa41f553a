package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/possession-tracker/internal/config"
	"github.com/riskibarqy/possession-tracker/internal/platform/metrics"
)

func TestDebugHandler_ServesMetrics(t *testing.T) {
	m := metrics.NewExtraction()
	m.ObserveBatch(time.Second, 1)

	rec := httptest.NewRecorder()
	DebugHandler(m.Registry()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "possession_last_batch_failed_games 1") {
		t.Fatalf("metrics missing from body: %s", rec.Body.String())
	}
}

func TestDebugHandler_WithoutRegistry(t *testing.T) {
	rec := httptest.NewRecorder()
	DebugHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without registry, got %d", rec.Code)
	}
}

func TestStartDebugServer_Disabled(t *testing.T) {
	if srv := StartDebugServer(config.Config{}, nil, nil); srv != nil {
		t.Fatalf("expected nil server when disabled")
	}
	if err := StopDebugServer(nil, time.Second); err != nil {
		t.Fatalf("stop nil server: %v", err)
	}
}
