package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/KC-99/workmatch/internal/config"
)

// setMemoryEnv はインメモリ構成で起動するための環境変数を設定する。
func setMemoryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("SEED_SAMPLE_DATA", "")
	t.Setenv("CSRF_ENABLED", "")
}

func TestInit_WithValidConfig_Succeeds(t *testing.T) {
	setMemoryEnv(t)

	var buf bytes.Buffer
	cfg, err := Init(&buf)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.StoreBackend != config.BackendMemory {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}

	// slogのグローバルロガーがJSON出力に設定されていること
	slog.Default().Info("init test")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got error: %v\nraw: %s", err, buf.String())
	}
	if entry["msg"] != "init test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "init test")
	}
}

func TestInit_WithInvalidConfig_ReturnsError(t *testing.T) {
	setMemoryEnv(t)
	t.Setenv("STORE_BACKEND", "postgres")

	var buf bytes.Buffer
	cfg, err := Init(&buf)
	if err == nil {
		t.Fatal("expected error for postgres without DATABASE_URL, got nil")
	}
	if cfg != nil {
		t.Error("expected nil config on error")
	}
}

func TestRun_WorkerWithMemorySessions_ReturnsError(t *testing.T) {
	setMemoryEnv(t)

	err := Run(io.Discard, []string{"worker"})
	if err == nil || !strings.Contains(err.Error(), "SESSION_STORE") {
		t.Fatalf("err = %v, want SESSION_STORE error", err)
	}
}

func TestRun_MigrateWithoutDatabaseURL_ReturnsError(t *testing.T) {
	setMemoryEnv(t)

	if err := Run(io.Discard, []string{"migrate"}); err == nil {
		t.Fatal("migrate without DATABASE_URL should return error")
	}
}

func TestMaskDatabaseURL(t *testing.T) {
	got := maskDatabaseURL("postgres://workmatch:secret@db:5432/workmatch?sslmode=disable")
	if strings.Contains(got, "secret") {
		t.Errorf("password should be masked: %s", got)
	}
	if !strings.Contains(got, "db:5432") {
		t.Errorf("host should be kept: %s", got)
	}
	if maskDatabaseURL("not a url") != "***" {
		t.Error("unparsable URL should be fully masked")
	}
}

// インメモリ構成でワイヤリングしたサーバーが全体として動作することを検証
func TestBuildServer_MemoryBackends(t *testing.T) {
	setMemoryEnv(t)
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	b, err := openBackends(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openBackends: %v", err)
	}
	defer b.Close()

	reg, mc := newMetrics()
	srv := buildServer(cfg, b, reg, mc, bcrypt.MinCost)
	defer srv.rateLimiter.Stop()

	ts := httptest.NewServer(srv.handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d, want 200", resp.StatusCode)
	}

	body := `{"username":"acme","password":"password","email":"acme@example.com","name":"Acme","userType":"employer"}`
	resp, err = http.Post(ts.URL+"/api/auth/register", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/auth/register: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("register status = %d, want 201", resp.StatusCode)
	}

	// メトリクスにリクエストと作成エンティティが記録されていること
	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	metricsBody, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`workmatch_entities_created_total{kind="user"} 1`,
		`route="/api/auth/register"`,
	} {
		if !strings.Contains(string(metricsBody), want) {
			t.Errorf("metrics should contain %s", want)
		}
	}
}

func TestBackends_Health(t *testing.T) {
	setMemoryEnv(t)
	cfg, _ := config.Load()

	b, err := openBackends(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openBackends: %v", err)
	}
	defer b.Close()

	if err := b.health.PingContext(context.Background()); err != nil {
		t.Errorf("memory backends should be healthy: %v", err)
	}
}
