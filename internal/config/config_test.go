package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestValidateCatchesProblems(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	cfg.Postgres.Port = 70000
	cfg.Arbitrage.ReferenceBankroll = 0
	cfg.Scheduler.CooldownMultiplier = 0.5
	for name, src := range cfg.Sources {
		src.Enabled = false
		cfg.Sources[name] = src
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid config passed validation")
	}
	for _, want := range []string{
		"log_level",
		"port must be 1-65535",
		"reference_bankroll",
		"cooldown_multiplier",
		"at least one source must be enabled",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error missing %q:\n%v", want, err)
		}
	}
}

func TestValidateOddsAPIKeyRequired(t *testing.T) {
	cfg := Defaults()
	src := cfg.Sources["odds_api"]
	src.Enabled = true
	cfg.Sources["odds_api"] = src

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "api_key is required") {
		t.Errorf("enabled odds_api without key passed validation: %v", err)
	}

	src.APIKey = "k"
	cfg.Sources["odds_api"] = src
	if err := cfg.Validate(); err != nil {
		t.Errorf("odds_api with key failed validation: %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
log_level = "debug"

[archive]
enabled = true
interval = "2h"

[sources.kalshi]
enabled = true
category = "open_market"
base_url = "https://example.test"
poll_interval_seconds = 30
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", cfg.LogLevel)
	}
	if !cfg.Archive.Enabled || cfg.Archive.Interval.Duration != 2*time.Hour {
		t.Errorf("archive = %+v, want enabled with 2h interval", cfg.Archive)
	}
	kalshi := cfg.Sources["kalshi"]
	if !kalshi.Enabled || kalshi.PollInterval() != 30*time.Second {
		t.Errorf("kalshi source = %+v", kalshi)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.Host != "localhost" || cfg.Postgres.Port != 5432 {
		t.Errorf("postgres defaults lost: %+v", cfg.Postgres)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LINESCOUT_POSTGRES_PASSWORD", "sekrit")
	t.Setenv("LINESCOUT_SCHEDULER_QUOTA_BUFFER", "25")
	t.Setenv("LINESCOUT_SOURCES_ODDS_API_KEY", "abc123")
	t.Setenv("LINESCOUT_NOTIFY_EVENTS", "opportunity, poll_failure")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	if cfg.Postgres.Password != "sekrit" {
		t.Errorf("postgres password = %q", cfg.Postgres.Password)
	}
	if cfg.Scheduler.QuotaBuffer != 25 {
		t.Errorf("quota buffer = %d, want 25", cfg.Scheduler.QuotaBuffer)
	}
	if cfg.Sources["odds_api"].APIKey != "abc123" {
		t.Errorf("odds_api key = %q", cfg.Sources["odds_api"].APIKey)
	}
	want := []string{"opportunity", "poll_failure"}
	if len(cfg.Notify.Events) != 2 || cfg.Notify.Events[0] != want[0] || cfg.Notify.Events[1] != want[1] {
		t.Errorf("notify events = %v, want %v", cfg.Notify.Events, want)
	}
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Password = "pgpass"
	cfg.Redis.Password = "redispass"
	cfg.S3.SecretKey = "s3secret"
	cfg.Notify.TelegramToken = "tgtoken"
	src := cfg.Sources["odds_api"]
	src.APIKey = "oddskey"
	cfg.Sources["odds_api"] = src

	red := RedactedConfig(&cfg)

	if red.Postgres.Password != "***" || red.Redis.Password != "***" ||
		red.S3.SecretKey != "***" || red.Notify.TelegramToken != "***" {
		t.Errorf("secrets not redacted: %+v", red)
	}
	if red.Sources["odds_api"].APIKey != "***" {
		t.Errorf("source api key not redacted: %q", red.Sources["odds_api"].APIKey)
	}
	// The original must be untouched.
	if cfg.Postgres.Password != "pgpass" || cfg.Sources["odds_api"].APIKey != "oddskey" {
		t.Error("RedactedConfig mutated the original config")
	}
}
