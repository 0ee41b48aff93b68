package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	RAG         RAGConfig        `toml:"rag"`
	Embeddings  EmbeddingsConfig `toml:"embeddings"`
	Processing  ProcessingConfig `toml:"processing"`
	Logging     LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=1,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// RAGConfig controls chunking and retrieval behavior
type RAGConfig struct {
	ChunkSize         int     `toml:"chunk_size" validate:"gte=1"`
	ChunkOverlap      int     `toml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	TopK              int     `toml:"top_k" validate:"gte=1"`
	MinSimilarity     float64 `toml:"min_similarity" validate:"gte=0,lte=1"`
	HistoryLimit      int     `toml:"history_limit" validate:"gte=1"`
	KnowledgeBasePath string  `toml:"knowledge_base_path" validate:"required"` // Base path for .index/.chunks artifacts
}

// EmbeddingsConfig configures the embedding provider
type EmbeddingsConfig struct {
	Provider  string  `toml:"provider" validate:"required"` // "hashing" or an external provider name
	Dimension int     `toml:"dimension" validate:"gte=8"`
	RateLimit float64 `toml:"rate_limit" validate:"gt=0"` // Provider calls per second
	Burst     int     `toml:"burst" validate:"gte=1"`
}

type ProcessingConfig struct {
	SnapshotEnabled  bool   `toml:"snapshot_enabled"`
	SnapshotSchedule string `toml:"snapshot_schedule"` // Cron schedule format
	IngestWorkers    int    `toml:"ingest_workers" validate:"gte=1"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// NewDefaultConfig returns a config populated with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8218,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/fiscus.db",
				ResetOnStartup: false,
			},
		},
		RAG: RAGConfig{
			ChunkSize:         500,
			ChunkOverlap:      50,
			TopK:              5,
			MinSimilarity:     0.3,
			HistoryLimit:      10,
			KnowledgeBasePath: "./data/vector_store/financial_kb",
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "hashing",
			Dimension: 384,
			RateLimit: 50,
			Burst:     10,
		},
		Processing: ProcessingConfig{
			SnapshotEnabled:  true,
			SnapshotSchedule: "@every 5m",
			IngestWorkers:    4,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct-level constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FISCUS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("FISCUS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("FISCUS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if path := os.Getenv("FISCUS_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if kbPath := os.Getenv("FISCUS_KNOWLEDGE_BASE_PATH"); kbPath != "" {
		config.RAG.KnowledgeBasePath = kbPath
	}

	if provider := os.Getenv("FISCUS_EMBEDDING_PROVIDER"); provider != "" {
		config.Embeddings.Provider = provider
	}
	if dim := os.Getenv("FISCUS_EMBEDDING_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil {
			config.Embeddings.Dimension = d
		}
	}

	if level := os.Getenv("FISCUS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
