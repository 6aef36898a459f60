package config

import (
	"os"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpfile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
polymarket:
  page_limit: 200
  timeout: 15s

monitor:
  poll_interval: 45s
  alert_threshold_cents: 2.0

scan:
  max_risk: 30
  top_n: 10

telegram:
  enabled: true
  bot_token: "test_token"
  chat_id: "12345"

storage:
  db_path: "./data/test.db"
  max_alert_rows: 500

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Polymarket.PageLimit != 200 {
		t.Errorf("page limit = %d, want 200", cfg.Polymarket.PageLimit)
	}
	if cfg.Polymarket.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.Polymarket.Timeout)
	}
	if cfg.Monitor.PollInterval != 45*time.Second {
		t.Errorf("poll interval = %v, want 45s", cfg.Monitor.PollInterval)
	}
	if cfg.Monitor.AlertThresholdCents != 2.0 {
		t.Errorf("alert threshold = %.1f, want 2.0", cfg.Monitor.AlertThresholdCents)
	}
	if cfg.Scan.TopN != 10 {
		t.Errorf("top_n = %d, want 10", cfg.Scan.TopN)
	}

	// Unset fields fall back to defaults.
	if cfg.Polymarket.GammaAPIURL != "https://gamma-api.polymarket.com" {
		t.Errorf("gamma url default = %s", cfg.Polymarket.GammaAPIURL)
	}
	if cfg.Monitor.UpDownCheckEvery != 10 {
		t.Errorf("updown_check_every default = %d, want 10", cfg.Monitor.UpDownCheckEvery)
	}
	if cfg.Scan.MinVolume != 25000 {
		t.Errorf("min_volume default = %.0f, want 25000", cfg.Scan.MinVolume)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		path := writeConfig(t, "logging:\n  level: info\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.Monitor.PollInterval = time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("sub-5s poll interval accepted")
	}

	cfg = base()
	cfg.Monitor.AlertThresholdCents = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero alert threshold accepted")
	}

	cfg = base()
	cfg.Telegram.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("enabled telegram without token accepted")
	}

	cfg = base()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log level accepted")
	}

	cfg = base()
	cfg.Polymarket.PageLimit = 1000
	if err := cfg.Validate(); err == nil {
		t.Error("oversized page limit accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
