package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8090" || cfg.Model != "gpt-4o" {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.ChunkBudget() != 8192-1500 {
		t.Errorf("chunk budget = %d", cfg.ChunkBudget())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("MAX_WORKERS", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9999" || cfg.Model != "gpt-4o-mini" || cfg.MaxWorkers != 2 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_YAMLFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papersum.yaml")
	yaml := "port: \"7000\"\nmodel: from-file\nmax_workers: 9\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_MODEL", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "7000" || cfg.MaxWorkers != 9 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Model != "from-env" {
		t.Errorf("env should override file, got %q", cfg.Model)
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error with no keys")
	}
	cfg.OpenAIAPIKey = "sk-test"
	cfg.APIKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClamp_BadValues(t *testing.T) {
	t.Setenv("MAX_WORKERS", "-3")
	t.Setenv("RESERVED_OUTPUT_TOKENS", "99999")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxWorkers != 5 {
		t.Errorf("negative worker count not clamped: %d", cfg.MaxWorkers)
	}
	if cfg.ReservedOutputTokens != 1500 {
		t.Errorf("oversized reservation not clamped: %d", cfg.ReservedOutputTokens)
	}
}
