package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "supportd.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  api_key: sk-test
voice:
  webhook_secret: s3cret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected default provider openai, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gpt-5.2" {
		t.Errorf("expected default model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.EmbedModel != "text-embedding-3-small" {
		t.Errorf("expected default embed model, got %q", cfg.LLM.EmbedModel)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("expected default temperature 0.3, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxRetries != 0 {
		t.Errorf("retries must be off by default, got %d", cfg.LLM.MaxRetries)
	}
	if cfg.Vector.TopK != 5 {
		t.Errorf("expected default top_k 5, got %d", cfg.Vector.TopK)
	}
	if cfg.Vector.Index != "aven-support" {
		t.Errorf("expected default index, got %q", cfg.Vector.Index)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: openai
  api_key: sk-test
  base_url: http://localhost:11434/v1
  model: qwen3:8b
  temperature: 0.7
  max_retries: 3
vector:
  provider: qdrant
  host: qdrant.internal
  port: 7443
  index: support-docs
  top_k: 8
server:
  addr: :9090
voice:
  public_key: pk_abc
  assistant_id: asst_1
  webhook_secret: s3cret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.BaseURL != "http://localhost:11434/v1" || cfg.LLM.Model != "qwen3:8b" {
		t.Errorf("llm overrides not applied: %+v", cfg.LLM)
	}
	if cfg.LLM.MaxRetries != 3 {
		t.Errorf("expected max_retries 3, got %d", cfg.LLM.MaxRetries)
	}
	if cfg.Vector.Provider != "qdrant" || cfg.Vector.Host != "qdrant.internal" || cfg.Vector.Port != 7443 {
		t.Errorf("vector overrides not applied: %+v", cfg.Vector)
	}
	if cfg.Vector.TopK != 8 {
		t.Errorf("expected top_k 8, got %d", cfg.Vector.TopK)
	}
	if cfg.Voice.PublicKey != "pk_abc" || cfg.Voice.AssistantID != "asst_1" {
		t.Errorf("voice overrides not applied: %+v", cfg.Voice)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.Temperature = 3.5
	cfg.Vector.Provider = "pinecone"
	cfg.Vector.TopK = -1

	warnings := strings.Join(cfg.Validate(), "\n")
	for _, want := range []string{
		"llm.api_key is empty",
		"llm.temperature",
		"vector.api_key is empty",
		"top_k -1 is negative",
		"voice.webhook_secret is empty",
	} {
		if !strings.Contains(warnings, want) {
			t.Errorf("expected warning about %q, got:\n%s", want, warnings)
		}
	}

	ok := &Config{}
	ok.LLM.APIKey = "sk"
	ok.LLM.Temperature = 0.3
	ok.Vector.Provider = "qdrant"
	ok.Vector.TopK = 5
	ok.Voice.WebhookSecret = "s"
	if warnings := ok.Validate(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
