package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		Embedding: EmbeddingConfig{BaseURL: "http://localhost:11434/v1"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_IndexName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"medical_pages", false},
		{"pages-v2", false},
		{"", true},
		{"bad name", true},
		{"colon:name", true},
	}
	for _, tc := range tests {
		t.Run("name="+tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Index.Name = tc.name

			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %q", tc.name)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.name, err)
			}
		})
	}
}

func TestValidate_MissingEmbeddingURL(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.BaseURL = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing embedding base url")
	}
	expected := "embedding.base_url is required"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_GenerationURLScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Generation.BaseURL = "localhost:11434"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for generation url without scheme")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Database.Readiness.Attempts != 30 || cfg.Database.Readiness.DelaySec != 2 {
		t.Errorf("expected database readiness 30x2s, got %+v", cfg.Database.Readiness)
	}
	if cfg.Generation.Readiness.Attempts != 15 || cfg.Generation.Readiness.DelaySec != 2 {
		t.Errorf("expected generation readiness 15x2s, got %+v", cfg.Generation.Readiness)
	}
	if cfg.Index.Name != "medical_pages" {
		t.Errorf("expected index name medical_pages, got %q", cfg.Index.Name)
	}
	if cfg.Index.Dimensions != 768 {
		t.Errorf("expected Dimensions=768, got %d", cfg.Index.Dimensions)
	}
	if cfg.Embedding.DocumentPrefix != "passage: " || cfg.Embedding.QueryPrefix != "query: " {
		t.Errorf("unexpected prefixes: %q / %q", cfg.Embedding.DocumentPrefix, cfg.Embedding.QueryPrefix)
	}
	if cfg.Generation.Timeout() != 300*time.Second {
		t.Errorf("expected 300s timeout, got %s", cfg.Generation.Timeout())
	}
	if cfg.Generation.AnswerTemperature != 0.1 {
		t.Errorf("expected AnswerTemperature=0.1, got %g", cfg.Generation.AnswerTemperature)
	}
	if cfg.Generation.AnswerMaxTokens != 128 {
		t.Errorf("expected AnswerMaxTokens=128, got %d", cfg.Generation.AnswerMaxTokens)
	}
	if cfg.Retrieval.TopK != 1 {
		t.Errorf("expected TopK=1, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Index.RefreshDelay() != 100*time.Millisecond {
		t.Errorf("expected 100ms refresh delay, got %s", cfg.Index.RefreshDelay())
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 9000, ReadTimeoutSec: 30},
		Index:      IndexConfig{Name: "notes", Dimensions: 384},
		Generation: GenerationConfig{Model: "llama3:8b", TimeoutSec: 60},
		Retrieval:  RetrievalConfig{TopK: 3},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.Index.Name != "notes" || cfg.Index.Dimensions != 384 {
		t.Errorf("index overridden: %+v", cfg.Index)
	}
	if cfg.Generation.Model != "llama3:8b" || cfg.Generation.TimeoutSec != 60 {
		t.Errorf("generation overridden: %+v", cfg.Generation)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Retrieval.TopK)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PAGERAG_TEST_URL", "http://ollama:11434")

	got := string(expandEnvVars([]byte("a: ${PAGERAG_TEST_URL}\nb: ${PAGERAG_UNSET_VAR:-fallback}\nc: ${PAGERAG_UNSET_VAR}")))
	want := "a: http://ollama:11434\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PAGERAG_TEST_MODEL", "llama3.1:8b")

	path := filepath.Join(t.TempDir(), "test.yaml")
	data := []byte(`
database:
  addrs: ["redis:6379"]
index:
  name: clinical
embedding:
  base_url: http://tei:8080/v1
generation:
  model: ${PAGERAG_TEST_MODEL}
retrieval:
  top_k: 2
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Database.Addrs[0] != "redis:6379" {
		t.Errorf("unexpected addrs: %v", cfg.Database.Addrs)
	}
	if cfg.Index.Name != "clinical" {
		t.Errorf("unexpected index name: %q", cfg.Index.Name)
	}
	if cfg.Generation.Model != "llama3.1:8b" {
		t.Errorf("expected expanded model, got %q", cfg.Generation.Model)
	}
	if cfg.Retrieval.TopK != 2 {
		t.Errorf("expected TopK=2, got %d", cfg.Retrieval.TopK)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("index:\n  name: \"bad name\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected validation error")
	}
}
