package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the askdex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Generator GeneratorConfig `yaml:"generator"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// VectorizerConfig holds one embedding space's provider settings.
type VectorizerConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	Provider   string `yaml:"provider"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Backend  string `yaml:"backend"`  // memory (default) or redis
	Capacity int    `yaml:"capacity"` // memory backend: entries, 0 = unbounded
	TTLHours int    `yaml:"ttl_hours"`
}

// EmbeddingConfig holds settings for both embedding spaces.
type EmbeddingConfig struct {
	Text  VectorizerConfig `yaml:"text"`
	Image VectorizerConfig `yaml:"image"` // cross-modal space
	Cache CacheConfig      `yaml:"cache"`
}

// GeneratorConfig holds the generator provider settings.
type GeneratorConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Provider string `yaml:"provider"`
}

// RetrievalConfig holds orchestrator tuning knobs. The thresholds are
// production-tuned constants without a documented derivation; override
// here rather than in code.
type RetrievalConfig struct {
	CorrectiveThreshold float64 `yaml:"corrective_threshold"`
	ImageMinScore       float64 `yaml:"image_min_score"`
	DualMatchBoost      float64 `yaml:"dual_match_boost"`
	MaxImages           int     `yaml:"max_images"`
	RRFK                int     `yaml:"rrf_k"`
	SearchConcurrency   int     `yaml:"search_concurrency"`
	RequestTimeoutSec   int     `yaml:"request_timeout_sec"`
	FallbackMaxK        int     `yaml:"fallback_max_k"`
	HNSWM               int     `yaml:"hnsw_m"`
	HNSWEFConstruct     int     `yaml:"hnsw_ef_construction"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Ask requests block on large-model calls; keep this generous.
		c.HTTP.WriteTimeoutSec = 330
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Embedding.Text.Dimensions <= 0 {
		c.Embedding.Text.Dimensions = 384
	}
	if c.Embedding.Image.Dimensions <= 0 {
		c.Embedding.Image.Dimensions = 512
	}
	if c.Embedding.Cache.Backend == "" {
		c.Embedding.Cache.Backend = "memory"
	}
	if c.Embedding.Cache.Capacity <= 0 {
		c.Embedding.Cache.Capacity = 4096
	}
	if c.Embedding.Cache.TTLHours <= 0 {
		c.Embedding.Cache.TTLHours = 24 * 7
	}
	if c.Retrieval.CorrectiveThreshold <= 0 {
		c.Retrieval.CorrectiveThreshold = 0.7
	}
	if c.Retrieval.ImageMinScore <= 0 {
		c.Retrieval.ImageMinScore = 0.22
	}
	if c.Retrieval.DualMatchBoost <= 0 {
		c.Retrieval.DualMatchBoost = 1.15
	}
	if c.Retrieval.MaxImages <= 0 {
		c.Retrieval.MaxImages = 12
	}
	if c.Retrieval.RRFK <= 0 {
		c.Retrieval.RRFK = 60
	}
	if c.Retrieval.SearchConcurrency <= 0 {
		c.Retrieval.SearchConcurrency = 4
	}
	if c.Retrieval.RequestTimeoutSec <= 0 {
		c.Retrieval.RequestTimeoutSec = 300
	}
	if c.Retrieval.FallbackMaxK <= 0 {
		c.Retrieval.FallbackMaxK = 250
	}
	if c.Retrieval.HNSWM <= 0 {
		c.Retrieval.HNSWM = 32
	}
	if c.Retrieval.HNSWEFConstruct <= 0 {
		c.Retrieval.HNSWEFConstruct = 400
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
	if c.Generator.Model == "" {
		return fmt.Errorf("generator.model is required")
	}
	if c.Embedding.Text.Model == "" {
		return fmt.Errorf("embedding.text.model is required")
	}
	if c.Embedding.Image.Model == "" {
		return fmt.Errorf("embedding.image.model is required")
	}
	switch c.Embedding.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("embedding.cache.backend must be \"memory\" or \"redis\", got %q",
			c.Embedding.Cache.Backend)
	}
	if c.Retrieval.CorrectiveThreshold > 1 {
		return fmt.Errorf("retrieval.corrective_threshold must be in (0, 1], got %g",
			c.Retrieval.CorrectiveThreshold)
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
