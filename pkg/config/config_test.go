package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Table.Size != 113 || cfg.Table.Snapshots != 10 || cfg.Table.Policy != "linear" {
		t.Fatalf("unexpected table defaults: %+v", cfg.Table)
	}
	if cfg.Source.Kind != SourceStdin {
		t.Fatalf("default source = %q", cfg.Source.Kind)
	}
	if cfg.Export.Any() {
		t.Fatalf("no sink should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordfreq.yaml")
	data := []byte(`
table:
  size: 1000
  policy: double
tokenizer:
  maxWordLength: 40
export:
  redis: true
  timeout: 5s
redis:
  key: test:freq
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WF_TABLE_SNAPSHOTS", "4")
	t.Setenv("WF_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Table.Size != 1000 || cfg.Table.Policy != "double" {
		t.Errorf("table config not read from yaml: %+v", cfg.Table)
	}
	if cfg.Table.Snapshots != 4 {
		t.Errorf("env override ignored: snapshots=%d", cfg.Table.Snapshots)
	}
	if cfg.Tokenizer.MaxWordLength != 40 {
		t.Errorf("maxWordLength = %d", cfg.Tokenizer.MaxWordLength)
	}
	if !cfg.Export.Redis || cfg.Export.Timeout != 5*time.Second || cfg.Redis.Key != "test:freq" {
		t.Errorf("export config not read: %+v %+v", cfg.Export, cfg.Redis)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("defaults lost for unset fields: redis addr %q", cfg.Redis.Addr)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"size", func(c *Config) { c.Table.Size = 0 }, apperrors.ErrInvalidCapacity},
		{"snapshots", func(c *Config) { c.Table.Snapshots = -1 }, apperrors.ErrInvalidInput},
		{"word length", func(c *Config) { c.Tokenizer.MaxWordLength = 0 }, apperrors.ErrInvalidInput},
		{"source", func(c *Config) { c.Source.Kind = "ftp" }, apperrors.ErrInvalidInput},
		{"kafka topic", func(c *Config) {
			c.Source.Kind = SourceKafka
			c.Kafka.Topics.Words = ""
		}, apperrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if apperrors.ExitCode(err) != apperrors.ExitUsage {
				t.Fatalf("expected usage exit code, got %d", apperrors.ExitCode(err))
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	p := Default().Postgres
	want := "host=localhost port=5432 user=wordfreq password=localdev dbname=wordfreq sslmode=disable"
	if got := p.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}
