// Package config loads the insurance bot configuration: the shared bot core settings
// plus storage, recognition, generation and background service sections.
package config

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/insurancebot/core/config"
	coredatabase "github.com/m3rciful/insurancebot/core/database"
)

// Step policies for model-reported progress.
const (
	StepPolicyGuarded = "guarded"
	StepPolicyTrust   = "trust"
)

// Extraction providers.
const (
	ExtractionVision     = "vision"
	ExtractionDocumentAI = "documentai"
)

// Generation providers.
const (
	GenerationGemini = "gemini"
	GenerationOpenAI = "openai"
)

const (
	defaultPriceUSD          = 100
	defaultHistoryChars      = 2048
	defaultExtractionTimeout = 30
	defaultGenerationTimeout = 60
	defaultGeminiModel       = "gemini-2.0-flash"
	defaultGeminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	defaultKeepAliveMinutes  = 14
	defaultEventsPrefix      = "insurance"
)

// ConversationConfig tunes the conversation engine.
type ConversationConfig struct {
	PriceUSD int `yaml:"price_usd" envconfig:"INSURANCE_PRICE_USD"`
	// HistoryChars is the character budget for the transcript replayed to the model.
	HistoryChars int `yaml:"history_chars" envconfig:"HISTORY_MAX_CHARS"`
	// StepPolicy is "guarded" (default) or "trust".
	StepPolicy string `yaml:"step_policy" envconfig:"STEP_POLICY"`
	// InstructionsFile replaces the built-in scenario instructions when set.
	InstructionsFile string `yaml:"instructions_file" envconfig:"INSTRUCTIONS_FILE"`
}

// DocumentAIConfig points at the Document AI processor used for templated recognition.
type DocumentAIConfig struct {
	ProjectID   string `yaml:"project_id" envconfig:"DOCUMENTAI_PROJECT_ID"`
	Location    string `yaml:"location" envconfig:"DOCUMENTAI_LOCATION"`
	ProcessorID string `yaml:"processor_id" envconfig:"DOCUMENTAI_PROCESSOR_ID"`
}

// ExtractionConfig selects and configures the recognition provider.
type ExtractionConfig struct {
	Provider        string           `yaml:"provider" envconfig:"EXTRACTION_PROVIDER"`
	TimeoutSeconds  int              `yaml:"timeout_seconds" envconfig:"EXTRACTION_TIMEOUT_SECONDS"`
	TempDir         string           `yaml:"temp_dir" envconfig:"EXTRACTION_TEMP_DIR"`
	CredentialsFile string           `yaml:"credentials_file" envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	CredentialsJSON string           `yaml:"credentials_json" envconfig:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
	DocumentAI      DocumentAIConfig `yaml:"documentai"`
}

// GenerationConfig selects and configures the language model backend.
type GenerationConfig struct {
	Provider string `yaml:"provider" envconfig:"GENERATION_PROVIDER"`
	Model    string `yaml:"model" envconfig:"GENERATION_MODEL"`
	BaseURL  string `yaml:"base_url" envconfig:"GENERATION_BASE_URL"`
	APIKey   string `yaml:"api_key" envconfig:"GENERATION_API_KEY"`
	// GeminiAPIKey is the legacy variable name; it fills APIKey when that is empty.
	GeminiAPIKey   string `yaml:"-" envconfig:"GOOGLE_GEMINI_API_KEY"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"GENERATION_TIMEOUT_SECONDS"`
}

// EventsConfig enables the NATS domain event publisher when URL is set.
type EventsConfig struct {
	URL           string `yaml:"url" envconfig:"NATS_URL"`
	Token         string `yaml:"token" envconfig:"NATS_TOKEN"`
	SubjectPrefix string `yaml:"subject_prefix" envconfig:"EVENTS_SUBJECT_PREFIX"`
}

// HTTPConfig controls the health endpoint. An empty Listen disables it.
type HTTPConfig struct {
	Listen string `yaml:"listen" envconfig:"HTTP_LISTEN"`
	// Port mirrors the PORT variable set by hosting platforms; it yields Listen ":<port>".
	Port string `yaml:"-" envconfig:"PORT"`
}

// KeepAliveConfig makes the bot ping its own public URL so free hosting tiers do not idle it.
type KeepAliveConfig struct {
	URL             string `yaml:"url" envconfig:"RENDER_EXTERNAL_URL"`
	IntervalMinutes int    `yaml:"interval_minutes" envconfig:"KEEP_ALIVE_INTERVAL_MINUTES"`
}

// Config is the complete application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database     coredatabase.Config `yaml:"database"`
	Conversation ConversationConfig  `yaml:"conversation"`
	Extraction   ExtractionConfig    `yaml:"extraction"`
	Generation   GenerationConfig    `yaml:"generation"`
	Events       EventsConfig        `yaml:"events"`
	HTTP         HTTPConfig          `yaml:"http"`
	KeepAlive    KeepAliveConfig     `yaml:"keep_alive"`
}

// CoreConfig exposes the embedded bot core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads the YAML file at path (optional) and the environment, then validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the application sections and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	conv := &cfg.Conversation
	if conv.PriceUSD == 0 {
		conv.PriceUSD = defaultPriceUSD
	}
	if conv.PriceUSD < 0 {
		return fmt.Errorf("conversation.price_usd must be > 0")
	}
	if conv.HistoryChars <= 0 {
		conv.HistoryChars = defaultHistoryChars
	}
	switch p := strings.ToLower(strings.TrimSpace(conv.StepPolicy)); p {
	case "":
		conv.StepPolicy = StepPolicyGuarded
	case StepPolicyGuarded, StepPolicyTrust:
		conv.StepPolicy = p
	default:
		return fmt.Errorf("invalid conversation.step_policy %q; allowed: guarded, trust", conv.StepPolicy)
	}

	ext := &cfg.Extraction
	switch p := strings.ToLower(strings.TrimSpace(ext.Provider)); p {
	case "":
		ext.Provider = ExtractionVision
	case ExtractionVision:
		ext.Provider = p
	case ExtractionDocumentAI:
		ext.Provider = p
		d := ext.DocumentAI
		if d.ProjectID == "" || d.Location == "" || d.ProcessorID == "" {
			return fmt.Errorf("extraction.documentai project_id, location and processor_id are required for the documentai provider")
		}
	default:
		return fmt.Errorf("invalid extraction.provider %q; allowed: vision, documentai", ext.Provider)
	}
	if ext.TimeoutSeconds <= 0 {
		ext.TimeoutSeconds = defaultExtractionTimeout
	}

	gen := &cfg.Generation
	if gen.APIKey == "" {
		gen.APIKey = strings.TrimSpace(gen.GeminiAPIKey)
	}
	switch p := strings.ToLower(strings.TrimSpace(gen.Provider)); p {
	case "", GenerationGemini:
		gen.Provider = GenerationGemini
		if gen.Model == "" {
			gen.Model = defaultGeminiModel
		}
		if gen.BaseURL == "" {
			gen.BaseURL = defaultGeminiBaseURL
		}
	case GenerationOpenAI:
		gen.Provider = p
		if gen.Model == "" {
			return fmt.Errorf("generation.model is required for the openai provider")
		}
	default:
		return fmt.Errorf("invalid generation.provider %q; allowed: gemini, openai", gen.Provider)
	}
	if gen.APIKey == "" {
		return fmt.Errorf("generation api key is required (GENERATION_API_KEY or GOOGLE_GEMINI_API_KEY)")
	}
	gen.BaseURL = strings.TrimRight(gen.BaseURL, "/")
	if gen.TimeoutSeconds <= 0 {
		gen.TimeoutSeconds = defaultGenerationTimeout
	}

	if cfg.Events.SubjectPrefix == "" {
		cfg.Events.SubjectPrefix = defaultEventsPrefix
	}
	if cfg.HTTP.Listen == "" && cfg.HTTP.Port != "" {
		cfg.HTTP.Listen = ":" + cfg.HTTP.Port
	}
	if cfg.KeepAlive.IntervalMinutes <= 0 {
		cfg.KeepAlive.IntervalMinutes = defaultKeepAliveMinutes
	}
	return nil
}
