package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse([]byte{})
	if err != nil {
		t.Fatalf("parsing empty config: %v", err)
	}
	if cfg.LLM.Provider != "xai" {
		t.Errorf("expected default provider xai, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "grok-3-mini-fast" {
		t.Errorf("unexpected default model: %q", cfg.LLM.Model)
	}
	if cfg.Analysis.MinSample != 5 {
		t.Errorf("expected default min sample 5, got %d", cfg.Analysis.MinSample)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseOverrides(t *testing.T) {
	yaml := `
llm:
  provider: ollama
  ollama_model: llama3:8b
analysis:
  min_sample: 10
server:
  port: 9001
`
	cfg, err := parse([]byte(yaml))
	if err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.OllamaModel != "llama3:8b" {
		t.Errorf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.Analysis.MinSample != 10 {
		t.Errorf("expected min sample 10, got %d", cfg.Analysis.MinSample)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("expected port 9001, got %d", cfg.Server.Port)
	}
	// Unset fields keep their defaults.
	if cfg.LLM.APIKeyEnv != "XAI_API_KEY" {
		t.Errorf("expected default api_key_env preserved, got %q", cfg.LLM.APIKeyEnv)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := parse([]byte("llm: [not a map")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestEmbeddedDefaultParses(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("embedded default config must parse: %v", err)
	}
	if cfg.LLM.Provider == "" {
		t.Error("embedded default config missing provider")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7777\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected port 7777, got %d", cfg.Server.Port)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveConfigPathExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte(""), 0o644)

	got, err := ResolveConfigPath(path)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != path {
		t.Errorf("expected %s, got %s", path, got)
	}

	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for absent explicit path")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDataDir() == "" {
		t.Error("expected XDG fallback data dir")
	}

	cfg.Output.DataDir = "/custom/data"
	if cfg.GetDataDir() != "/custom/data" {
		t.Errorf("expected configured dir, got %s", cfg.GetDataDir())
	}
}
