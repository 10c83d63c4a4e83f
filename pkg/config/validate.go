package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// embedder.url is required.
	if c.Embedder.URL == "" {
		errs = append(errs, fmt.Errorf("embedder.url is required"))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// storage.dimension must be positive.
	if c.Storage.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("storage.dimension must be > 0, got %d", c.Storage.Dimension))
	}

	// storage.metric must be a supported distance metric.
	if c.Storage.Metric != "cosine" {
		errs = append(errs, fmt.Errorf("storage.metric must be \"cosine\", got %q", c.Storage.Metric))
	}

	// blob.type must be a known value.
	switch c.Blob.Type {
	case "memory", "minio":
		// valid
	default:
		errs = append(errs, fmt.Errorf("blob.type must be \"memory\" or \"minio\", got %q", c.Blob.Type))
	}

	// If blob.type is "minio", endpoint and bucket are required.
	if c.Blob.Type == "minio" {
		if c.Blob.Endpoint == "" {
			errs = append(errs, fmt.Errorf("blob.endpoint is required when blob.type is \"minio\""))
		}
		if c.Blob.Bucket == "" {
			errs = append(errs, fmt.Errorf("blob.bucket is required when blob.type is \"minio\""))
		}
	}

	return errors.Join(errs...)
}
