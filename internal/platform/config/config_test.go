package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIPort != "4000" {
		t.Errorf("APIPort = %q, want 4000", cfg.APIPort)
	}
	if cfg.BasePath != "/api" {
		t.Errorf("BasePath = %q, want /api", cfg.BasePath)
	}
	if cfg.DBDriver != DriverPostgres {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverPostgres)
	}
	if cfg.JWTExp != 72*time.Hour {
		t.Errorf("JWTExp = %v, want 72h", cfg.JWTExp)
	}
	if cfg.RequireAdminAuth {
		t.Error("RequireAdminAuth should default to false")
	}
	if cfg.DemoUsername != "demo_ogrenci" || cfg.AdminUsername != "admin" {
		t.Errorf("unexpected bootstrap usernames: %q / %q", cfg.AdminUsername, cfg.DemoUsername)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v, want [*]", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_BASE_PATH", "/")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("SQLITE_PATH", "/tmp/harf.db")
	t.Setenv("REQUIRE_ADMIN_AUTH", "true")
	t.Setenv("FALLBACK_USER_ID", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Addr() != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr())
	}
	if cfg.BasePath != "" {
		t.Errorf("BasePath = %q, want empty for root mount", cfg.BasePath)
	}
	if !cfg.RequireAdminAuth {
		t.Error("RequireAdminAuth should be true")
	}
	if cfg.FallbackUserID != 7 {
		t.Errorf("FallbackUserID = %d, want 7", cfg.FallbackUserID)
	}
	if got := cfg.DSN(); got != "/tmp/harf.db?_foreign_keys=on" {
		t.Errorf("DSN = %q", got)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("CORSAllowedOrigins = %v, want 2 entries", cfg.CORSAllowedOrigins)
	}
}

func TestBasePathNormalized(t *testing.T) {
	tests := map[string]string{
		"/api":   "/api",
		"api":    "/api",
		"/api/":  "/api",
		"v1/api": "/v1/api",
		"/":      "",
		"":       "",
	}
	for in, want := range tests {
		cfg := &Config{DBDriver: DriverPostgres, BasePath: in}
		if err := cfg.validate(); err != nil {
			t.Fatalf("validate(%q) failed: %v", in, err)
		}
		if cfg.BasePath != want {
			t.Errorf("BasePath %q normalized to %q, want %q", in, cfg.BasePath, want)
		}
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBDriver:   DriverPostgres,
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "postgres",
		DBPassword: "secret",
		DBName:     "test",
		DBSslMode:  "disable",
	}

	want := "host=db port=5432 user=postgres password=secret dbname=test sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}

	cfg.DatabaseURL = "postgres://u:p@h/db"
	if got := cfg.DSN(); got != cfg.DatabaseURL {
		t.Errorf("DATABASE_URL should win, got %q", got)
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
	cfg.LogLevel = "nonsense"
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel = %v, want info fallback", cfg.SlogLevel())
	}
}
