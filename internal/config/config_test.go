package config

import (
	"os"
	"path/filepath"
	"testing"
)

func baseConfig() *Config {
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Generation.APIKey = "key"
	return cfg
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := baseConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Conversation.PriceUSD != 100 || cfg.Conversation.HistoryChars != 2048 {
		t.Fatalf("conversation defaults: %+v", cfg.Conversation)
	}
	if cfg.Conversation.StepPolicy != StepPolicyGuarded {
		t.Fatalf("step policy = %q", cfg.Conversation.StepPolicy)
	}
	if cfg.Extraction.Provider != ExtractionVision || cfg.Extraction.TimeoutSeconds != 30 {
		t.Fatalf("extraction defaults: %+v", cfg.Extraction)
	}
	if cfg.Generation.Provider != GenerationGemini || cfg.Generation.Model != "gemini-2.0-flash" {
		t.Fatalf("generation defaults: %+v", cfg.Generation)
	}
	if cfg.KeepAlive.IntervalMinutes != 14 || cfg.Events.SubjectPrefix != "insurance" {
		t.Fatalf("background defaults: %+v %+v", cfg.KeepAlive, cfg.Events)
	}
	if cfg.HTTP.Listen != "" {
		t.Fatalf("health server should be off without PORT, got %q", cfg.HTTP.Listen)
	}
}

func TestNormalizeRejectsInvalidValues(t *testing.T) {
	cases := map[string]func(*Config){
		"step policy":     func(c *Config) { c.Conversation.StepPolicy = "yolo" },
		"price":           func(c *Config) { c.Conversation.PriceUSD = -5 },
		"extraction":      func(c *Config) { c.Extraction.Provider = "mindee" },
		"documentai":      func(c *Config) { c.Extraction.Provider = "documentai" },
		"generation":      func(c *Config) { c.Generation.Provider = "hf" },
		"openai no model": func(c *Config) { c.Generation.Provider = "openai" },
		"api key":         func(c *Config) { c.Generation.APIKey = "" },
	}
	for name, mutate := range cases {
		cfg := baseConfig()
		mutate(cfg)
		if err := Normalize(cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "legacy-token")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "gemini-key")
	t.Setenv("INSURANCE_PRICE_USD", "250")
	t.Setenv("PORT", "10000")
	t.Setenv("RENDER_EXTERNAL_URL", "https://insurance.onrender.com")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/bot?sslmode=disable")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "legacy-token" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Generation.APIKey != "gemini-key" {
		t.Fatalf("api key = %q", cfg.Generation.APIKey)
	}
	if cfg.Conversation.PriceUSD != 250 {
		t.Fatalf("price = %d", cfg.Conversation.PriceUSD)
	}
	if cfg.HTTP.Listen != ":10000" {
		t.Fatalf("listen = %q", cfg.HTTP.Listen)
	}
	if cfg.KeepAlive.URL != "https://insurance.onrender.com" {
		t.Fatalf("keep alive = %q", cfg.KeepAlive.URL)
	}
	if !cfg.Database.Enabled() {
		t.Fatal("database should be enabled from DATABASE_URL")
	}
	if cfg.CoreConfig().Telegram.Token != "legacy-token" {
		t.Fatal("core config must share the embedded values")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
telegram:
  token: file-token
conversation:
  step_policy: trust
  history_chars: 1024
generation:
  provider: openai
  model: gpt-4o-mini
  api_key: sk-test
  base_url: https://api.openai.com/v1/
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "file-token" || cfg.Conversation.StepPolicy != StepPolicyTrust {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Conversation.HistoryChars != 1024 {
		t.Fatalf("history chars = %d", cfg.Conversation.HistoryChars)
	}
	if cfg.Generation.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("base url = %q", cfg.Generation.BaseURL)
	}
}
