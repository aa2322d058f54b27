package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Storage.UploadDir != "uploads" {
		t.Errorf("expected upload dir 'uploads', got %q", cfg.Storage.UploadDir)
	}
	if len(cfg.LLM.Models) != 3 {
		t.Fatalf("expected 3 default model choices, got %d", len(cfg.LLM.Models))
	}
	if cfg.LLM.Models[1].Name != "model-B" || cfg.LLM.Models[1].Model != "gpt-4o-2024-08-06" {
		t.Errorf("unexpected second model choice: %+v", cfg.LLM.Models[1])
	}
	if cfg.LLM.DefaultModel != "model-A" {
		t.Errorf("expected default model 'model-A', got %q", cfg.LLM.DefaultModel)
	}
	if !cfg.Memory.Enabled || cfg.Memory.Backend != "inmemory" || cfg.Memory.Capacity != 10 {
		t.Errorf("memory should default to a bounded in-process store, got %+v", cfg.Memory)
	}
}

func TestLoadConfig_MemoryCanBeDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("memory:\n  enabled: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Memory.Enabled {
		t.Error("explicit enabled: false must win over the default")
	}

	path = filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("memory:\n  capacity: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg, err = LoadConfig(path); err != nil {
		t.Fatal(err)
	}
	if !cfg.Memory.Enabled || cfg.Memory.Capacity != 4 {
		t.Errorf("unexpected memory config: %+v", cfg.Memory)
	}
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":9090"
rag:
  chunkSize: 100
  chunkOverlap: 500
memory:
  enabled: true
  capacity: 3
llm:
  models:
    - name: local
      provider: ollama
      model: llama3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SERPER_API_KEY", "serper-test")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("expected address :9090, got %s", cfg.Server.Address)
	}
	if cfg.RAG.ChunkOverlap >= cfg.RAG.ChunkSize {
		t.Errorf("overlap %d must be reset below chunk size %d", cfg.RAG.ChunkOverlap, cfg.RAG.ChunkSize)
	}
	if !cfg.Memory.Enabled || cfg.Memory.Capacity != 3 {
		t.Errorf("unexpected memory config: %+v", cfg.Memory)
	}
	if cfg.LLM.DefaultModel != "local" {
		t.Errorf("expected default model to follow the first choice, got %q", cfg.LLM.DefaultModel)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-test" || cfg.Search.APIKey != "serper-test" {
		t.Errorf("environment credentials were not applied")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DOCRAG_TEST_VAR=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv("DOCRAG_TEST_VAR")
	t.Cleanup(func() { os.Unsetenv("DOCRAG_TEST_VAR") })

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("DOCRAG_TEST_VAR"); got != "from-dotenv" {
		t.Errorf("expected variable from .env, got %q", got)
	}
}

func TestShippedConfig_ThreeModelChoices(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, m := range cfg.LLM.Models {
		names = append(names, m.Name)
	}
	if len(names) != 3 || names[0] != "model-A" || names[1] != "model-B" || names[2] != "model-C" {
		t.Errorf("model selector = %v, want [model-A model-B model-C]", names)
	}
	if cfg.LLM.DefaultModel != "model-B" {
		t.Errorf("default model = %s", cfg.LLM.DefaultModel)
	}
}
