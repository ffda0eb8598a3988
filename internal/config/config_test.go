package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	original, existed := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
	t.Cleanup(func() {
		if !existed {
			_ = os.Unsetenv(key)
			return
		}
		_ = os.Setenv(key, original)
	})
}

func TestSectionDefaults(t *testing.T) {
	for _, key := range []string{"SECTION_LOAD_TIMEOUT", "SECTION_CACHE_SIZE", "ENABLE_RUNTIME_REGISTRATION", "RENDER_CACHE_TTL"} {
		unsetEnv(t, key)
	}

	cfg := New()
	if cfg.SectionLoadTimeout != 5*time.Second {
		t.Fatalf("expected 5s load timeout, got %s", cfg.SectionLoadTimeout)
	}
	if cfg.SectionCacheSize != 64 {
		t.Fatalf("expected cache size 64, got %d", cfg.SectionCacheSize)
	}
	if cfg.EnableRuntimeRegistration {
		t.Fatalf("expected runtime registration to be disabled by default")
	}
	if cfg.RenderCacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m render cache TTL, got %s", cfg.RenderCacheTTL)
	}
}

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("SECTION_LOAD_TIMEOUT", "750ms")
	t.Setenv("RENDER_CACHE_TTL", "120")

	cfg := New()
	if cfg.SectionLoadTimeout != 750*time.Millisecond {
		t.Fatalf("expected 750ms, got %s", cfg.SectionLoadTimeout)
	}
	if cfg.RenderCacheTTL != 2*time.Minute {
		t.Fatalf("expected 2m, got %s", cfg.RenderCacheTTL)
	}
}

func TestInvalidDurationFallsBackToDefault(t *testing.T) {
	t.Setenv("SECTION_LOAD_TIMEOUT", "soon")

	cfg := New()
	if cfg.SectionLoadTimeout != 5*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.SectionLoadTimeout)
	}
}

func TestCORSOriginsAreTrimmed(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example.com , ,https://b.example.com")

	cfg := New()
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example.com" || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins: %#v", cfg.CORSOrigins)
	}
}

func TestDatabaseURL(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASSWORD", "p")
	t.Setenv("DB_NAME", "n")
	t.Setenv("DB_SSLMODE", "require")

	cfg := New()
	if cfg.DatabaseURL != "postgres://u:p@db:6543/n?sslmode=require" {
		t.Fatalf("unexpected DSN: %s", cfg.DatabaseURL)
	}
}

func TestValidate(t *testing.T) {
	unsetEnv(t, "JWT_SECRET")
	t.Setenv("ENVIRONMENT", "development")

	cfg := New()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("development defaults should validate: %v", err)
	}

	cfg.Environment = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected default JWT secret to be rejected in production")
	}

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.SectionRenderConcurrency = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SECTION_RENDER_CONCURRENCY") {
		t.Fatalf("expected concurrency error, got %v", err)
	}
}
