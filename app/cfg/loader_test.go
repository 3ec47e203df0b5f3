package cfg

import (
	"os"
	"strings"
	"testing"
	"time"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IMS_TIMEZONE", "")
	os.Unsetenv("IMS_TIMEZONE")
	t.Setenv("TZ", "UTC")
	t.Setenv("CACHE_BACKEND", "file")
	t.Setenv("S3_BUCKET", "")
}

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	setTestEnv(t)

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.CacheTTLDuration() != 600*time.Second {
		t.Errorf("Expected cache TTL 600s, got %v", cfg.CacheTTLDuration())
	}
	if cfg.FetchTimeoutDuration() != 10*time.Second {
		t.Errorf("Expected fetch timeout 10s, got %v", cfg.FetchTimeoutDuration())
	}
	if cfg.MaxSessions != 24 {
		t.Errorf("Expected max sessions 24, got %d", cfg.MaxSessions)
	}
	if cfg.ResponseMaxAge != 300 {
		t.Errorf("Expected response max age 300, got %d", cfg.ResponseMaxAge)
	}
	if cfg.Location == nil || cfg.Location.String() != "Europe/Lisbon" {
		t.Errorf("Expected location Europe/Lisbon, got %v", cfg.Location)
	}
	if cfg.WarmIntervalDuration() != 0 {
		t.Errorf("Expected warmer disabled by default, got %v", cfg.WarmIntervalDuration())
	}
}

func TestLoadArgsFlags(t *testing.T) {
	setTestEnv(t)

	cfg, err := LoadArgs([]string{
		"--port", "9090",
		"--cache-backend", "sqlite",
		"--db-path", "/tmp/ims.db",
		"--cache-ttl", "60",
		"--timezone", "UTC",
		"--debug",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.CacheBackend != "sqlite" {
		t.Errorf("Expected backend 'sqlite', got '%s'", cfg.CacheBackend)
	}
	if cfg.DBPath != "/tmp/ims.db" {
		t.Errorf("Expected db path '/tmp/ims.db', got '%s'", cfg.DBPath)
	}
	if cfg.CacheTTL != 60 {
		t.Errorf("Expected cache TTL 60, got %d", cfg.CacheTTL)
	}
	if cfg.Location != time.UTC && cfg.Location.String() != "UTC" {
		t.Errorf("Expected UTC location, got %v", cfg.Location)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
}

func TestLoadArgsValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown backend", []string{"--cache-backend", "redis"}, "unknown cache backend"},
		{"s3 without bucket", []string{"--cache-backend", "s3"}, "s3 bucket is required"},
		{"zero ttl", []string{"--cache-ttl", "0"}, "cache TTL must be positive"},
		{"negative max age", []string{"--response-max-age=-1"}, "response max age must be non-negative"},
		{"bad timezone", []string{"--timezone", "Mars/Olympus"}, "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setTestEnv(t)

			_, err := LoadArgs(tt.args)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing '%s', got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadArgsTimezoneIgnoresProcessTZ(t *testing.T) {
	setTestEnv(t)

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Location.String() != "Europe/Lisbon" {
		t.Errorf("Expected TZ=UTC not to change the feed zone, got %s", cfg.Location)
	}

	t.Setenv("IMS_TIMEZONE", "Atlantic/Azores")

	cfg, err = LoadArgs([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Location.String() != "Atlantic/Azores" {
		t.Errorf("Expected IMS_TIMEZONE to set the feed zone, got %s", cfg.Location)
	}
}
