package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("ASKDEX_TEST_VAR", "secret-value")
	defer os.Unsetenv("ASKDEX_TEST_VAR")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "key: ${ASKDEX_TEST_VAR}", "key: secret-value"},
		{"unset variable", "key: ${ASKDEX_TEST_UNSET}", "key: "},
		{"default used", "key: ${ASKDEX_TEST_UNSET:-fallback}", "key: fallback"},
		{"default ignored when set", "key: ${ASKDEX_TEST_VAR:-fallback}", "key: secret-value"},
		{"no variables", "key: plain", "key: plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(expandEnvVars([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Retrieval.CorrectiveThreshold != 0.7 {
		t.Errorf("CorrectiveThreshold = %g, want 0.7", cfg.Retrieval.CorrectiveThreshold)
	}
	if cfg.Retrieval.ImageMinScore != 0.22 {
		t.Errorf("ImageMinScore = %g, want 0.22", cfg.Retrieval.ImageMinScore)
	}
	if cfg.Retrieval.DualMatchBoost != 1.15 {
		t.Errorf("DualMatchBoost = %g, want 1.15", cfg.Retrieval.DualMatchBoost)
	}
	if cfg.Retrieval.RRFK != 60 {
		t.Errorf("RRFK = %d, want 60", cfg.Retrieval.RRFK)
	}
	if cfg.Retrieval.RequestTimeoutSec != 300 {
		t.Errorf("RequestTimeoutSec = %d, want 300", cfg.Retrieval.RequestTimeoutSec)
	}
	if cfg.Embedding.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Embedding.Cache.Backend)
	}
	if cfg.Embedding.Cache.Capacity != 4096 {
		t.Errorf("Cache.Capacity = %d, want 4096", cfg.Embedding.Cache.Capacity)
	}
	if cfg.Embedding.Text.Dimensions != 384 {
		t.Errorf("Text.Dimensions = %d, want 384", cfg.Embedding.Text.Dimensions)
	}
	if cfg.Embedding.Image.Dimensions != 512 {
		t.Errorf("Image.Dimensions = %d, want 512", cfg.Embedding.Image.Dimensions)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Retrieval.RRFK = 20
	cfg.Embedding.Cache.Backend = "redis"
	cfg.ApplyDefaults()

	if cfg.Retrieval.RRFK != 20 {
		t.Errorf("RRFK = %d, want 20", cfg.Retrieval.RRFK)
	}
	if cfg.Embedding.Cache.Backend != "redis" {
		t.Errorf("Cache.Backend = %q, want redis", cfg.Embedding.Cache.Backend)
	}
}

func validConfig() Config {
	cfg := Config{}
	cfg.HTTP.Port = 8080
	cfg.Database.Addrs = []string{"localhost:6379"}
	cfg.Generator.Model = "gpt-4o-mini"
	cfg.Embedding.Text.Model = "text-embedding-3-small"
	cfg.Embedding.Image.Model = "clip-vit-b-32"
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"no generator model", func(c *Config) { c.Generator.Model = "" }, "generator.model"},
		{"no text model", func(c *Config) { c.Embedding.Text.Model = "" }, "embedding.text.model"},
		{"no image model", func(c *Config) { c.Embedding.Image.Model = "" }, "embedding.image.model"},
		{"bad cache backend", func(c *Config) { c.Embedding.Cache.Backend = "disk" }, "embedding.cache.backend"},
		{"threshold above one", func(c *Config) { c.Retrieval.CorrectiveThreshold = 1.5 }, "corrective_threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}

	yaml := `
http:
  port: 9090
database:
  addrs:
    - "localhost:6379"
  password: ${ASKDEX_TEST_DB_PASS:-changeme}
embedding:
  text:
    model: text-embedding-3-small
  image:
    model: clip-vit-b-32
generator:
  model: gpt-4o-mini
retrieval:
  rrf_k: 30
`
	if err := os.WriteFile(filepath.Join(configDir, "test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("HTTP.Port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Database.Password != "changeme" {
		t.Errorf("Database.Password = %q, want changeme", cfg.Database.Password)
	}
	if cfg.Retrieval.RRFK != 30 {
		t.Errorf("Retrieval.RRFK = %d, want 30", cfg.Retrieval.RRFK)
	}
	// Untouched fields come from defaults.
	if cfg.Retrieval.ImageMinScore != 0.22 {
		t.Errorf("Retrieval.ImageMinScore = %g, want 0.22", cfg.Retrieval.ImageMinScore)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist"); err == nil {
		t.Fatal("Load() with missing file should return an error")
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("ENV")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	os.Setenv("ENV", "prod")
	defer os.Unsetenv("ENV")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
