package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DURABLE_CACHE_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.AppEnv != "development" || cfg.Port != "8080" {
		t.Errorf("unexpected app defaults: env=%q port=%q", cfg.AppEnv, cfg.Port)
	}
	if cfg.DB.Driver != "postgres" {
		t.Errorf("DB.Driver = %q, want postgres", cfg.DB.Driver)
	}
	r := cfg.Resolver
	if r.MemoryCacheSize != 1000 {
		t.Errorf("MemoryCacheSize = %d, want 1000", r.MemoryCacheSize)
	}
	if r.DurableTTL != 7*24*time.Hour {
		t.Errorf("DurableTTL = %v, want 168h", r.DurableTTL)
	}
	if r.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", r.RetentionDays)
	}
	if r.DurableBackend != "sql" {
		t.Errorf("DurableBackend = %q, want sql", r.DurableBackend)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("MEMORY_CACHE_SIZE", "50")
	t.Setenv("DURABLE_CACHE_BACKEND", "redis")
	t.Setenv("DURABLE_CACHE_TIMEOUT", "100ms")
	t.Setenv("REPOSITORY_TIMEOUT", "3") // bare seconds
	t.Setenv("RATE_RPS", "nope")        // falls back to default
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DB.Driver != "sqlite" || cfg.DB.SQLitePath != "/tmp/x.db" {
		t.Errorf("unexpected DB config: %+v", cfg.DB)
	}
	if cfg.Resolver.MemoryCacheSize != 50 {
		t.Errorf("MemoryCacheSize = %d, want 50", cfg.Resolver.MemoryCacheSize)
	}
	if cfg.Resolver.DurableBackend != "redis" {
		t.Errorf("DurableBackend = %q, want redis", cfg.Resolver.DurableBackend)
	}
	if cfg.Resolver.DurableTimeout != 100*time.Millisecond {
		t.Errorf("DurableTimeout = %v, want 100ms", cfg.Resolver.DurableTimeout)
	}
	if cfg.Resolver.RepositoryTimeout != 3*time.Second {
		t.Errorf("RepositoryTimeout = %v, want 3s", cfg.Resolver.RepositoryTimeout)
	}
	if cfg.RateRPS != 5 {
		t.Errorf("RateRPS = %v, want default 5", cfg.RateRPS)
	}
	if want := []string{"https://a.com", "http://b"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.Redis.Addr() != "cache:6380" {
		t.Errorf("Redis.Addr() = %q", cfg.Redis.Addr())
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad driver", map[string]string{"DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"bad backend", map[string]string{"DURABLE_CACHE_BACKEND": "memcached"}, "DURABLE_CACHE_BACKEND"},
		{"zero cache", map[string]string{"MEMORY_CACHE_SIZE": "0"}, "MEMORY_CACHE_SIZE"},
		{"zero retention", map[string]string{"CACHE_RETENTION_DAYS": "0"}, "CACHE_RETENTION_DAYS"},
		{"prod without secret", map[string]string{"APP_ENV": "production", "ADMIN_JWT_SECRET": ""}, "ADMIN_JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", Name: "n"}
	if got, want := d.DSN(), "postgres://u:p@h:5432/n?sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
