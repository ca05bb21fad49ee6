package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the pagerag configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Index      IndexConfig      `yaml:"index"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings for `pagerag serve`.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// ReadinessConfig is a bounded polling policy: Attempts probes spaced DelaySec apart.
type ReadinessConfig struct {
	Attempts int `yaml:"attempts"`
	DelaySec int `yaml:"delay_sec"`
}

// Delay returns the inter-attempt delay as a duration.
func (r ReadinessConfig) Delay() time.Duration {
	return time.Duration(r.DelaySec) * time.Second
}

// DatabaseConfig holds search store connection settings.
type DatabaseConfig struct {
	Addrs      []string        `yaml:"addrs"`
	Username   string          `yaml:"username"`
	Password   string          `yaml:"password"`
	DB         int             `yaml:"db"`
	Readiness  ReadinessConfig `yaml:"readiness"`
	KeyPrefix  string          `yaml:"key_prefix"`
	TimeoutSec int             `yaml:"timeout_sec"`
}

// IndexConfig holds the page index schema.
type IndexConfig struct {
	Name            string `yaml:"name"`
	Dimensions      int    `yaml:"dimensions"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
	RefreshAttempts int    `yaml:"refresh_attempts"`
	RefreshDelayMS  int    `yaml:"refresh_delay_ms"`
}

// RefreshDelay returns the pause between FT.INFO polls after a bulk load.
func (i IndexConfig) RefreshDelay() time.Duration {
	return time.Duration(i.RefreshDelayMS) * time.Millisecond
}

// EmbeddingConfig holds the OpenAI-compatible embedding endpoint settings.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	DocumentPrefix string `yaml:"document_prefix"`
	QueryPrefix    string `yaml:"query_prefix"`
}

// GenerationConfig holds the language-model server settings.
type GenerationConfig struct {
	BaseURL           string          `yaml:"base_url"`
	Model             string          `yaml:"model"`
	TimeoutSec        int             `yaml:"timeout_sec"`
	AnswerTemperature float64         `yaml:"answer_temperature"`
	AnswerMaxTokens   int             `yaml:"answer_max_tokens"`
	Readiness         ReadinessConfig `yaml:"readiness"`
}

// Timeout returns the per-request timeout.
func (g GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSec) * time.Second
}

// RetrievalConfig holds k-NN defaults.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// ExtractionConfig holds PDF/OCR settings.
type ExtractionConfig struct {
	OCRLanguages []string `yaml:"ocr_languages"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 330
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.Database.Addrs) == 0 {
		c.Database.Addrs = []string{"localhost:6379"}
	}
	if c.Database.Readiness.Attempts <= 0 {
		c.Database.Readiness.Attempts = 30
	}
	if c.Database.Readiness.DelaySec <= 0 {
		c.Database.Readiness.DelaySec = 2
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "pagerag:"
	}
	if c.Database.TimeoutSec <= 0 {
		c.Database.TimeoutSec = 30
	}
	if c.Index.Name == "" {
		c.Index.Name = "medical_pages"
	}
	if c.Index.Dimensions <= 0 {
		c.Index.Dimensions = 768
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.RefreshAttempts <= 0 {
		c.Index.RefreshAttempts = 50
	}
	if c.Index.RefreshDelayMS <= 0 {
		c.Index.RefreshDelayMS = 100
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "local"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "intfloat/e5-base-v2"
	}
	if c.Embedding.DocumentPrefix == "" {
		c.Embedding.DocumentPrefix = "passage: "
	}
	if c.Embedding.QueryPrefix == "" {
		c.Embedding.QueryPrefix = "query: "
	}
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = "http://localhost:11434"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "deepseek-r1:8b"
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 300
	}
	if c.Generation.AnswerTemperature <= 0 {
		c.Generation.AnswerTemperature = 0.1
	}
	if c.Generation.AnswerMaxTokens <= 0 {
		c.Generation.AnswerMaxTokens = 128
	}
	if c.Generation.Readiness.Attempts <= 0 {
		c.Generation.Readiness.Attempts = 15
	}
	if c.Generation.Readiness.DelaySec <= 0 {
		c.Generation.Readiness.DelaySec = 2
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 1
	}
	if len(c.Extraction.OCRLanguages) == 0 {
		c.Extraction.OCRLanguages = []string{"eng"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if !isIdentifier(c.Index.Name) {
		return fmt.Errorf("index.name must match [a-zA-Z0-9_-]+, got %q", c.Index.Name)
	}
	if c.Index.Dimensions <= 0 {
		return fmt.Errorf("index.dimensions must be positive, got %d", c.Index.Dimensions)
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if !strings.HasPrefix(c.Generation.BaseURL, "http://") && !strings.HasPrefix(c.Generation.BaseURL, "https://") {
		return fmt.Errorf("generation.base_url must be an http(s) URL, got %q", c.Generation.BaseURL)
	}
	if c.Generation.AnswerTemperature > 2 {
		return fmt.Errorf("generation.answer_temperature must be in (0, 2], got %g", c.Generation.AnswerTemperature)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
