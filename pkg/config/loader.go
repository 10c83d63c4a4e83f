package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, LOOKALIKE_CONFIG env, ./config.yaml,
//     /etc/lookalike/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. LOOKALIKE_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/lookalike/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("LOOKALIKE_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/lookalike/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The names
// mirror the deployment environment: DATABASE_URL and S3_* follow the
// conventions object stores and Postgres images already use.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOOKALIKE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LOOKALIKE_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("LOOKALIKE_DATABASE_URL"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("LOOKALIKE_DIMENSION"); v != "" {
		if dim, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Dimension = dim
		}
	}
	if v := os.Getenv("LOOKALIKE_METRIC"); v != "" {
		cfg.Storage.Metric = v
	}
	if v := os.Getenv("LOOKALIKE_INDEX_LISTS"); v != "" {
		if lists, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.Lists = lists
		}
	}
	if v := os.Getenv("LOOKALIKE_BLOB"); v != "" {
		cfg.Blob.Type = v
	}
	if v := os.Getenv("LOOKALIKE_S3_ENDPOINT"); v != "" {
		cfg.Blob.Endpoint = v
	}
	if v := os.Getenv("LOOKALIKE_S3_ACCESS_KEY"); v != "" {
		cfg.Blob.AccessKey = v
	}
	if v := os.Getenv("LOOKALIKE_S3_SECRET_KEY"); v != "" {
		cfg.Blob.SecretKey = v
	}
	if v := os.Getenv("LOOKALIKE_S3_BUCKET"); v != "" {
		cfg.Blob.Bucket = v
	}
	if v := os.Getenv("LOOKALIKE_EMBEDDER_URL"); v != "" {
		cfg.Embedder.URL = v
	}
	if v := os.Getenv("LOOKALIKE_EMBEDDER_MODEL"); v != "" {
		cfg.Embedder.Model = v
	}
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. For each field ending in _file, if the value field is empty
// and the file field is set, the file is read, whitespace is trimmed, and
// the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	// blob.access_key_file -> blob.access_key
	if cfg.Blob.AccessKeyFile != "" && cfg.Blob.AccessKey == "" {
		val, err := readSecretFile(cfg.Blob.AccessKeyFile)
		if err != nil {
			return fmt.Errorf("blob.access_key_file: %w", err)
		}
		cfg.Blob.AccessKey = val
	}

	// blob.secret_key_file -> blob.secret_key
	if cfg.Blob.SecretKeyFile != "" && cfg.Blob.SecretKey == "" {
		val, err := readSecretFile(cfg.Blob.SecretKeyFile)
		if err != nil {
			return fmt.Errorf("blob.secret_key_file: %w", err)
		}
		cfg.Blob.SecretKey = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding
// whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
