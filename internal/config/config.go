package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// OpenAI generation
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	Model         string `yaml:"model"`

	// Token budgeting
	MaxModelTokens       int `yaml:"max_model_tokens"`
	ReservedOutputTokens int `yaml:"reserved_output_tokens"`
	ChunkOverlap         int `yaml:"chunk_overlap"`

	// Concurrency
	MaxWorkers int `yaml:"max_workers"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Keyword extraction
	MaxKeywords int `yaml:"max_keywords"`

	// Saved-summary persistence
	StorePath string `yaml:"store_path"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

// Load reads an optional YAML file (PAPERSUM_CONFIG or the given path) and
// then applies environment overrides on top.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("PAPERSUM_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	clamp(&cfg)
	return cfg, nil
}

func defaults() Config {
	return Config{
		Port:                 "8090",
		Model:                "gpt-4o",
		MaxModelTokens:       8192,
		ReservedOutputTokens: 1500,
		ChunkOverlap:         200,
		MaxWorkers:           5,
		MaxUploadBytes:       52428800, // 50MB
		MaxKeywords:          8,
		StorePath:            "papersum.db",
		PDFFallbackPdftotext: true,
	}
}

func applyEnv(cfg *Config) {
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("PAPERSUM_API_KEY", cfg.APIKey)
	cfg.OpenAIAPIKey = envOr("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = envOr("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.Model = envOr("OPENAI_MODEL", cfg.Model)

	cfg.MaxModelTokens = envInt("MAX_MODEL_TOKENS", cfg.MaxModelTokens)
	cfg.ReservedOutputTokens = envInt("RESERVED_OUTPUT_TOKENS", cfg.ReservedOutputTokens)
	cfg.ChunkOverlap = envInt("CHUNK_OVERLAP", cfg.ChunkOverlap)
	cfg.MaxWorkers = envInt("MAX_WORKERS", cfg.MaxWorkers)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.MaxKeywords = envInt("MAX_KEYWORDS", cfg.MaxKeywords)
	cfg.StorePath = envOr("STORE_PATH", cfg.StorePath)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
}

func clamp(cfg *Config) {
	if cfg.MaxModelTokens <= 0 {
		cfg.MaxModelTokens = 8192
	}
	if cfg.ReservedOutputTokens <= 0 || cfg.ReservedOutputTokens >= cfg.MaxModelTokens {
		cfg.ReservedOutputTokens = 1500
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = 8
	}
}

// ChunkBudget is the per-chunk token allowance handed to the chunker.
func (c Config) ChunkBudget() int {
	return c.MaxModelTokens - c.ReservedOutputTokens
}

func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("PAPERSUM_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
