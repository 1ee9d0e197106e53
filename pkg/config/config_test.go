package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, existed := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if existed {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8089" {
		t.Errorf("Expected default port 8089, got %s", cfg.Port)
	}

	if cfg.Monitor.CheckInterval != 5*time.Minute {
		t.Errorf("Expected default check interval 5m, got %v", cfg.Monitor.CheckInterval)
	}

	if cfg.Monitor.CacheTTL != 2*time.Minute {
		t.Errorf("Expected default cache TTL 2m, got %v", cfg.Monitor.CacheTTL)
	}

	if cfg.Monitor.MaxConcurrent != 4 {
		t.Errorf("Expected default max concurrent 4, got %d", cfg.Monitor.MaxConcurrent)
	}

	if !cfg.Monitor.SuppressDegraded {
		t.Error("Expected degraded alert suppression on by default")
	}

	if len(cfg.Yahoo.ProxyRoutes) != 2 {
		t.Errorf("Expected 2 default proxy routes, got %d", len(cfg.Yahoo.ProxyRoutes))
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	setEnv(t, "ENV", "sandbox")

	if _, err := Load(); err == nil {
		t.Error("Expected validation error for unknown ENV")
	}
}

func TestLoadInvalidTimezone(t *testing.T) {
	setEnv(t, "ENV", "development")
	setEnv(t, "ALERT_TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Error("Expected validation error for invalid timezone")
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, "ENV", "production")
	setEnv(t, "CHECK_INTERVAL", "1m")
	setEnv(t, "MAX_CONCURRENT_CHECKS", "8")
	setEnv(t, "YAHOO_PROXY_ROUTES", "https://proxy-a.example/?url=, https://proxy-b.example/raw?url=")
	setEnv(t, "ALERT_WEBHOOK_URL", "https://discord.example/api/webhooks/x")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Monitor.CheckInterval != time.Minute {
		t.Errorf("Expected check interval 1m, got %v", cfg.Monitor.CheckInterval)
	}

	if cfg.Monitor.MaxConcurrent != 8 {
		t.Errorf("Expected max concurrent 8, got %d", cfg.Monitor.MaxConcurrent)
	}

	if len(cfg.Yahoo.ProxyRoutes) != 2 || cfg.Yahoo.ProxyRoutes[1] != "https://proxy-b.example/raw?url=" {
		t.Errorf("Unexpected proxy routes: %v", cfg.Yahoo.ProxyRoutes)
	}

	if cfg.Webhook.URL != "https://discord.example/api/webhooks/x" {
		t.Errorf("Unexpected webhook URL: %s", cfg.Webhook.URL)
	}
}

func TestGetEnvAsList(t *testing.T) {
	setEnv(t, "TEST_LIST_KEY", "a, b ,,c")

	got := getEnvAsList("TEST_LIST_KEY", "")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("getEnvAsList returned %v", got)
	}
}

func TestGetEnvAsDurationFallback(t *testing.T) {
	setEnv(t, "TEST_DUR_KEY", "not-a-duration")

	got := getEnvAsDuration("TEST_DUR_KEY", "90s")
	if got != 90*time.Second {
		t.Errorf("Expected fallback 90s, got %v", got)
	}
}
