package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/neomorfeo/sendstack/internal/adapter/dns"
	"github.com/neomorfeo/sendstack/internal/adapter/fsm"
	"github.com/neomorfeo/sendstack/internal/adapter/jwttoken"
	"github.com/neomorfeo/sendstack/internal/adapter/metrics"
	"github.com/neomorfeo/sendstack/internal/adapter/sqlite"
	"github.com/neomorfeo/sendstack/internal/app"
	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/config"
	"github.com/neomorfeo/sendstack/internal/credentials"
	"github.com/neomorfeo/sendstack/internal/domain"
	"github.com/neomorfeo/sendstack/internal/intake"

	handler "github.com/neomorfeo/sendstack/internal/adapter/http"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		info  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"nonsense", false, true},
	}
	for _, tt := range tests {
		l := newLogger(tt.level, "json")
		if got := l.Enabled(context.Background(), slog.LevelDebug); got != tt.debug {
			t.Errorf("%s: debug enabled = %v, want %v", tt.level, got, tt.debug)
		}
		if got := l.Enabled(context.Background(), slog.LevelInfo); got != tt.info {
			t.Errorf("%s: info enabled = %v, want %v", tt.level, got, tt.info)
		}
	}
}

func TestNewResolver(t *testing.T) {
	if _, ok := newResolver(config.Config{DNSResolver: "system"}).(*dns.SystemResolver); !ok {
		t.Error("system: want *dns.SystemResolver")
	}
	if _, ok := newResolver(config.Config{DNSResolver: "doh"}).(*dns.DoHResolver); !ok {
		t.Error("doh: want *dns.DoHResolver")
	}
}

type testPublisher struct{}

func (testPublisher) Publish(context.Context, domain.Event, domain.Order) error { return nil }

type testResolver struct{}

func (testResolver) Resolve(context.Context, string) (domain.ResolveStatus, error) {
	return domain.NoSuchName, nil
}

// TestSmoke wires the HTTP stack like run() and verifies it responds.
func TestSmoke(t *testing.T) {
	repo, err := sqlite.New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	clk := clock.NewSystem()
	logger := slog.New(slog.DiscardHandler)
	payloads := sqlite.NewPayloadStore(repo.DB(), clk)
	m := metrics.New()

	router := newRouter(handler.Services{
		Probe:        app.NewAvailabilityProbe(testResolver{}, logger),
		Checkout:     app.NewCheckoutService(nil, payloads, clk, logger, app.CheckoutConfig{}),
		Materializer: app.NewOrderMaterializer(nil, nil, repo, payloads, testPublisher{}, clk, logger),
		Orders:       app.NewOrderService(repo, clk),
		Generator:    credentials.New(),
		Validator:    intake.NewValidator(),
		Navigator:    fsm.New(),
		Tokens:       jwttoken.NewService("secret", clk),
		Metrics:      m,
		Logger:       logger,
	}, m)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	get := func(path string) *http.Response {
		t.Helper()
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+path, nil)
		if err != nil {
			t.Fatalf("creating request: %v", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		return resp
	}

	resp := get("/api/v1/domains/availability?q=sendstack")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("availability status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var results []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("got %d results, want 5", len(results))
	}

	metricsResp := get("/metrics")
	body, _ := io.ReadAll(metricsResp.Body)
	metricsResp.Body.Close()
	if !strings.Contains(string(body), `sendstack_availability_candidates_total{verdict="available"} 5`) {
		t.Errorf("metrics missing availability counter:\n%s", body)
	}

	docs := get("/openapi.json")
	docs.Body.Close()
	if docs.StatusCode != http.StatusOK {
		t.Errorf("openapi status = %d, want %d", docs.StatusCode, http.StatusOK)
	}
}

// TestRun exercises the real run() function end-to-end: OTel, River, HTTP
// server, and graceful shutdown. It uses stdout OTel exporter and a temp
// database to avoid external dependencies.
func TestRun(t *testing.T) {
	t.Setenv("DATABASE_PATH", t.TempDir()+"/test-run.db")
	t.Setenv("PORT", "19876")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("OTEL_ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")

	// Discard OTel stdout exporter output during the test.
	origStdout := os.Stdout
	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("opening /dev/null: %v", err)
	}
	os.Stdout = devNull
	t.Cleanup(func() {
		os.Stdout = origStdout
		devNull.Close()
	})

	errCh := make(chan error, 1)
	go func() { errCh <- run() }()

	// Wait for the HTTP server to become ready.
	lookupURL := "http://localhost:19876/api/v1/orders/lookup?email=nobody@example.com"
	ready := false
	for i := 0; i < 50; i++ {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, lookupURL, nil)
		resp, reqErr := http.DefaultClient.Do(req)
		if reqErr == nil {
			resp.Body.Close()
			ready = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !ready {
		t.Fatal("server did not start within 5 seconds")
	}

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, lookupURL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET lookup failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// Send SIGINT to trigger graceful shutdown.
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("finding process: %v", err)
	}
	if err := proc.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("sending SIGINT: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run() returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not exit within 10 seconds")
	}
}

// TestRun_InvalidDB verifies run() returns an error for an invalid database path.
func TestRun_InvalidDB(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/nonexistent/path/db.sqlite")
	t.Setenv("PORT", "19877")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("OTEL_ENVIRONMENT", "test")

	origStdout := os.Stdout
	devNull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("opening /dev/null: %v", err)
	}
	os.Stdout = devNull
	t.Cleanup(func() {
		os.Stdout = origStdout
		devNull.Close()
	})

	if err := run(); err == nil {
		t.Fatal("expected error for invalid database path, got nil")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DNS_RESOLVER", "carrier-pigeon")

	if err := run(); err == nil {
		t.Fatal("expected error for invalid config, got nil")
	}
}
