package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeDefaultsToLongpoll(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: " 123:abc ", RunMode: "polling"}}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
	if cfg.Telegram.Token != "123:abc" {
		t.Fatalf("token not trimmed: %q", cfg.Telegram.Token)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	if err := Normalize(&Config{}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestNormalizeWebhookNeedsURL(t *testing.T) {
	cfg := &Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook without url")
	}
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := &Config{
		Telegram:  TelegramConfig{Token: "t"},
		RateLimit: RateLimitConfig{ExcludeUpdates: []string{" Photo ", "", "command"}},
	}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	got := cfg.RateLimit.ExcludeUpdates
	if len(got) != 2 || got[0] != UpdatePhoto || got[1] != UpdateCommand {
		t.Fatalf("unexpected exclusions: %v", got)
	}

	cfg.RateLimit.ExcludeUpdates = []string{"callback"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unsupported exclusion")
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "telegram:\n  token: from-file\n  longpoll_timeout_seconds: 25\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.Telegram.LongPollTimeoutSeconds != 25 {
		t.Fatalf("timeout = %d, want 25", cfg.Telegram.LongPollTimeoutSeconds)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-only")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "env-only" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
}
