package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load with defaults failed: %v", err)
	}

	if cfg.App.Name != "athena-genesis" {
		t.Errorf("unexpected app name: %s", cfg.App.Name)
	}
	if cfg.Engine.TokenDecimals != 18 {
		t.Errorf("unexpected token decimals: %d", cfg.Engine.TokenDecimals)
	}
	if cfg.Engine.TruthPowerAlpha != 2.0 {
		t.Errorf("unexpected alpha: %v", cfg.Engine.TruthPowerAlpha)
	}
	if cfg.Oracle.TargetSymbol != "BTC-USD" {
		t.Errorf("unexpected target symbol: %s", cfg.Oracle.TargetSymbol)
	}
	if cfg.Watch.Interval != time.Hour {
		t.Errorf("unexpected watch interval: %v", cfg.Watch.Interval)
	}
	if cfg.Database.DSN != "" {
		t.Errorf("database should be disabled by default, got DSN %q", cfg.Database.DSN)
	}
}

func TestLoadFromFile(t *testing.T) {
	raw := `
app:
  token_symbol: ATH
engine:
  token_decimals: 8
  emit_proofs: true
oracle:
  target_symbol: ETH-USD
  request_timeout: 10s
watch:
  interval: 30m
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.App.TokenSymbol != "ATH" {
		t.Errorf("unexpected token symbol: %s", cfg.App.TokenSymbol)
	}
	if cfg.Engine.TokenDecimals != 8 {
		t.Errorf("unexpected token decimals: %d", cfg.Engine.TokenDecimals)
	}
	if !cfg.Engine.EmitProofs {
		t.Error("emit_proofs not picked up")
	}
	if cfg.Oracle.RequestTimeout != 10*time.Second {
		t.Errorf("duration hook failed: %v", cfg.Oracle.RequestTimeout)
	}
	if cfg.Watch.Interval != 30*time.Minute {
		t.Errorf("unexpected watch interval: %v", cfg.Watch.Interval)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("load defaults: %v", err)
		}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"decimals too high", func(c *Config) { c.Engine.TokenDecimals = 31 }},
		{"negative decimals", func(c *Config) { c.Engine.TokenDecimals = -1 }},
		{"zero alpha", func(c *Config) { c.Engine.TruthPowerAlpha = 0 }},
		{"empty symbol", func(c *Config) { c.Oracle.TargetSymbol = "" }},
		{"zero interval", func(c *Config) { c.Watch.Interval = 0 }},
		{"telegram without token", func(c *Config) { c.Notify.Telegram.Enabled = true; c.Notify.Telegram.ChatID = "1" }},
		{"telegram without chat", func(c *Config) { c.Notify.Telegram.Enabled = true; c.Notify.Telegram.BotToken = "t" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
