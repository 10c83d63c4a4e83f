// Package config provides unified configuration for the lookalike service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (LOOKALIKE_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the lookalike service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Engine        EngineConfig        `yaml:"engine"`
	Embedder      EmbedderConfig      `yaml:"embedder"`
	Storage       StorageConfig       `yaml:"storage"`
	Blob          BlobConfig          `yaml:"blob"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 60s
	MaxBodySize  int64         `yaml:"max_body_size"` // default: 10 MB
}

// EngineConfig holds similarity engine settings.
type EngineConfig struct {
	// StoreTimeout bounds each blob or vector store call.
	StoreTimeout time.Duration `yaml:"store_timeout"` // default: 10s
	// DefaultLimit is the result count when a query names none.
	DefaultLimit int `yaml:"default_limit"` // default: 5
}

// EmbedderConfig holds feature-extraction backend settings.
type EmbedderConfig struct {
	URL     string        `yaml:"url"`     // required
	Model   string        `yaml:"model"`   // optional
	Timeout time.Duration `yaml:"timeout"` // default: 30s
}

// StorageConfig holds vector index settings.
type StorageConfig struct {
	Type string `yaml:"type"` // "memory" or "postgres", default: "memory"

	// Dimension is the embedding length fixed at index creation.
	Dimension int `yaml:"dimension"` // default: 1280

	// Metric is the ranking distance. Only "cosine" is supported; it is
	// persisted with the index and re-checked on startup.
	Metric string `yaml:"metric"` // default: "cosine"

	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	Lists          int    `yaml:"lists"`            // ivfflat partitions, default: 100
	Probes         int    `yaml:"probes"`           // ivfflat probes per query, 0 = server default
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: true
}

// BlobConfig holds object storage settings.
type BlobConfig struct {
	Type          string `yaml:"type"` // "memory" or "minio", default: "memory"
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	AccessKeyFile string `yaml:"access_key_file"` // _file variant for access_key
	SecretKey     string `yaml:"secret_key"`
	SecretKeyFile string `yaml:"secret_key_file"` // _file variant for secret_key
	Bucket        string `yaml:"bucket"`
	UseSSL        bool   `yaml:"use_ssl"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxBodySize:  10 << 20,
		},
		Engine: EngineConfig{
			StoreTimeout: 10 * time.Second,
			DefaultLimit: 5,
		},
		Embedder: EmbedderConfig{
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Type:      "memory",
			Dimension: 1280,
			Metric:    "cosine",
			Postgres: PostgresConfig{
				MaxConns:       25,
				Lists:          100,
				MigrateOnStart: true,
			},
		},
		Blob: BlobConfig{
			Type: "memory",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
