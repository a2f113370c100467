package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("TRANSLATION_PROVIDER", "")
	t.Setenv("TRANSLATION_TIMEOUT_SECONDS", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %s", cfg.Env)
	}
	if cfg.TranslationProvider != "none" {
		t.Fatalf("expected translation to be in demo mode by default, got %q", cfg.TranslationProvider)
	}
	if cfg.TranslationTimeout != 8*time.Second {
		t.Fatalf("expected 8s translation timeout, got %s", cfg.TranslationTimeout)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10MB upload limit, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://localhost/doc")
	t.Setenv("TRANSLATION_PROVIDER", "Google")
	t.Setenv("TRANSLATION_TIMEOUT_SECONDS", "3")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %s", cfg.Env)
	}
	if cfg.TranslationProvider != "gemini" {
		t.Fatalf("expected gemini provider, got %q", cfg.TranslationProvider)
	}
	if cfg.TranslationTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", cfg.TranslationTimeout)
	}
	if cfg.CacheTTL != 90*time.Minute {
		t.Fatalf("expected 90m cache ttl, got %s", cfg.CacheTTL)
	}
	if len(cfg.CORSAllowOrigin) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowOrigin)
	}
}

func TestInvalidNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("OCR_TIMEOUT_SECONDS", "-4")

	cfg := Load()
	if cfg.RedisDB != 0 {
		t.Fatalf("expected redis db 0, got %d", cfg.RedisDB)
	}
	if cfg.OCRTimeout != 60*time.Second {
		t.Fatalf("expected 60s ocr timeout, got %s", cfg.OCRTimeout)
	}
}
