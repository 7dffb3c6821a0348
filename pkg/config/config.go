// Package config loads and validates wordfreq configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// table, the tokenizer, word sources, export targets, logging and metrics.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceStdin = "stdin"
	SourceKafka = "kafka"
)

// Config is the top-level configuration. It is built once at startup and
// passed by value afterwards.
type Config struct {
	Table     TableConfig     `yaml:"table"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Source    SourceConfig    `yaml:"source"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// TableConfig sizes the hash table. Size is a lower bound; the capacity is
// the first prime at or above it.
type TableConfig struct {
	Size      int    `yaml:"size"`
	Policy    string `yaml:"policy"`
	Snapshots int    `yaml:"snapshots"`
}

// TokenizerConfig bounds word length.
type TokenizerConfig struct {
	MaxWordLength int `yaml:"maxWordLength"`
}

// SourceConfig selects where dictionary words come from.
type SourceConfig struct {
	Kind string `yaml:"kind"`
}

// KafkaConfig holds broker, partition and topic settings.
type KafkaConfig struct {
	Brokers     []string      `yaml:"brokers"`
	Partition   int           `yaml:"partition"`
	MaxWait     time.Duration `yaml:"maxWait"`
	IdleTimeout time.Duration `yaml:"idleTimeout"`
	Topics      KafkaTopics   `yaml:"topics"`
}

// KafkaTopics maps logical topic names to Kafka topic strings.
type KafkaTopics struct {
	Words       string `yaml:"words"`
	Frequencies string `yaml:"frequencies"`
}

// RedisConfig holds Redis connection parameters and the report key.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	Key      string        `yaml:"key"`
	TTL      time.Duration `yaml:"ttl"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ExportConfig enables report sinks. All sinks are off by default.
type ExportConfig struct {
	Redis       bool          `yaml:"redis"`
	Postgres    bool          `yaml:"postgres"`
	Kafka       bool          `yaml:"kafka"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"maxAttempts"`
}

// Any reports whether at least one sink is enabled.
func (e ExportConfig) Any() bool {
	return e.Redis || e.Postgres || e.Kafka
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls Prometheus exposition. Port starts a scrape server
// for the lifetime of the run; Textfile writes the final values to a file for
// the node exporter textfile collector.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Port     int    `yaml:"port"`
	Textfile string `yaml:"textfile"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		Table: TableConfig{
			Size:      113,
			Policy:    "linear",
			Snapshots: 10,
		},
		Tokenizer: TokenizerConfig{
			MaxWordLength: 256,
		},
		Source: SourceConfig{
			Kind: SourceStdin,
		},
		Kafka: KafkaConfig{
			Brokers:     []string{"localhost:9092"},
			MaxWait:     500 * time.Millisecond,
			IdleTimeout: 5 * time.Second,
			Topics: KafkaTopics{
				Words:       "wordfreq.words",
				Frequencies: "wordfreq.frequencies",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 4,
			Key:      "wordfreq:frequencies",
			TTL:      24 * time.Hour,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "wordfreq",
			User:            "wordfreq",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Export: ExportConfig{
			Timeout:     30 * time.Second,
			MaxAttempts: 3,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Port: 9090,
		},
	}
}

// Validate rejects values no run could work with.
func (c *Config) Validate() error {
	if c.Table.Size < 1 {
		return apperrors.Newf(apperrors.ErrInvalidCapacity, apperrors.ExitUsage,
			"table size must be positive, got %d", c.Table.Size)
	}
	if c.Table.Snapshots < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"snapshots must be positive, got %d", c.Table.Snapshots)
	}
	if c.Tokenizer.MaxWordLength < 1 {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"maxWordLength must be positive, got %d", c.Tokenizer.MaxWordLength)
	}
	switch c.Source.Kind {
	case SourceStdin:
	case SourceKafka:
		if len(c.Kafka.Brokers) == 0 || c.Kafka.Topics.Words == "" {
			return apperrors.New(apperrors.ErrInvalidInput, apperrors.ExitUsage,
				"kafka source needs brokers and a words topic")
		}
	default:
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"unknown source kind %q", c.Source.Kind)
	}
	if c.Export.Kafka && c.Kafka.Topics.Frequencies == "" {
		return apperrors.New(apperrors.ErrInvalidInput, apperrors.ExitUsage,
			"kafka export needs a frequencies topic")
	}
	return nil
}

// applyEnvOverrides reads WF_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WF_TABLE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Table.Size = n
		}
	}
	if v := os.Getenv("WF_TABLE_POLICY"); v != "" {
		cfg.Table.Policy = v
	}
	if v := os.Getenv("WF_TABLE_SNAPSHOTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Table.Snapshots = n
		}
	}
	if v := os.Getenv("WF_MAX_WORD_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tokenizer.MaxWordLength = n
		}
	}
	if v := os.Getenv("WF_SOURCE_KIND"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("WF_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("WF_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("WF_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("WF_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("WF_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("WF_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("WF_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("WF_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("WF_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WF_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("WF_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("WF_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
}
