package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load with missing file: %v", err)
	}
	if cfg.Exchange.BaseAsset != "BTC" || cfg.Exchange.QuoteAsset != "USDT" {
		t.Errorf("default pair = %s/%s, want BTC/USDT", cfg.Exchange.BaseAsset, cfg.Exchange.QuoteAsset)
	}
	if cfg.Exchange.IntervalMinutes != 60 || cfg.Exchange.CandleCount != 300 {
		t.Errorf("default candles = %d x %dm, want 300 x 60m", cfg.Exchange.CandleCount, cfg.Exchange.IntervalMinutes)
	}
	if cfg.Advisory.Timeout != 30*time.Second {
		t.Errorf("default advisory timeout = %v, want 30s", cfg.Advisory.Timeout)
	}
	if cfg.Schedule.CycleCron == "" {
		t.Error("default cycle cron must be set")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte(`
exchange:
  base_asset: ETH
  quote_asset: USDT
  interval_minutes: 240
schedule:
  cycle_cron: "0 10 */4 * * *"
`)
	if err := os.WriteFile(path, yaml, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CYCLE_CRON", "0 0 * * * *")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Exchange.BaseAsset != "ETH" || cfg.Exchange.IntervalMinutes != 240 {
		t.Errorf("yaml values not applied: %s, %d", cfg.Exchange.BaseAsset, cfg.Exchange.IntervalMinutes)
	}
	if cfg.Schedule.CycleCron != "0 0 * * * *" {
		t.Errorf("env override lost: %s", cfg.Schedule.CycleCron)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %s, want debug", cfg.LogLevel)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cfg.Exchange.CandleCount = 30
	if err := cfg.Validate(); err == nil {
		t.Error("candle_count below 50 should fail validation")
	}
	cfg.Exchange.CandleCount = 300

	cfg.Exchange.APIKey = "key-without-secret"
	cfg.Exchange.SecretKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("api key without secret should fail validation")
	}
}

func TestPaperMode(t *testing.T) {
	cfg := &Config{}
	if !cfg.PaperMode() {
		t.Error("no credentials should mean paper mode")
	}
	cfg.Exchange.APIKey = "k"
	cfg.Exchange.SecretKey = "s"
	if cfg.PaperMode() {
		t.Error("credentials present should mean live mode")
	}
}
