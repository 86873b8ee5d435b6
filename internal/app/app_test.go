package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jamwil123/pool-tracker/internal/config"
	"github.com/jamwil123/pool-tracker/internal/infrastructure/repository/memory"
	"github.com/jamwil123/pool-tracker/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:               config.EnvDev,
		HTTPAddr:             ":0",
		ReadTimeout:          time.Second,
		WriteTimeout:         time.Second,
		Location:             time.UTC,
		StorageDriver:        config.StorageMemory,
		CacheTTL:             time.Minute,
		CORSAllowedOrigins:   []string{"*"},
		AuthBaseURL:          "http://127.0.0.1:1",
		AuthTimeout:          time.Second,
		StandingsURL:         "http://127.0.0.1:1",
		StandingsTimeout:     time.Second,
		StandingsCacheTTL:    time.Minute,
		StandingsCron:        "*/30 * * * *",
		ReconcileMaxAttempts: 3,
		SeasonResultCap:      13,
		ImportWorkers:        2,
		MetricsEnabled:       true,
	}
}

func TestOpenStorage_MemoryDriverServesSeed(t *testing.T) {
	t.Parallel()

	storage, err := OpenStorage(t.Context(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer storage.Close()

	p, exists, err := storage.Profiles.GetByUID(t.Context(), memory.SeedCaptainUID)
	if err != nil || !exists {
		t.Fatalf("expected seeded captain, exists=%v err=%v", exists, err)
	}
	if p.DisplayName != "Jamie Williams" {
		t.Fatalf("unexpected captain: %+v", p)
	}
}

func TestOpenStorage_RejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.StorageDriver = "sqlite"
	if _, err := OpenStorage(t.Context(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestNew_ServesHealthAndMetrics(t *testing.T) {
	t.Parallel()

	a, err := New(t.Context(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer func() {
		_ = a.Shutdown(t.Context())
	}()

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pool_tracker_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestNew_RequiresHTTPAddr(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	if _, err := New(t.Context(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
