// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and GVERA_ env vars on top.
// - External errors are wrapped with ErrLoadConfig or ErrInvalidConfig.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxBodyBytes bounds raw bodies read for PUT, PATCH and DELETE.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// MaxMultipartMemory bounds in-memory multipart parsing; larger parts spill to disk.
	MaxMultipartMemory int64 `koanf:"max_multipart_memory"`

	// UploadDir is the root that uploaded files are moved under.
	UploadDir string `koanf:"upload_dir"`

	// AllowedFileTypes lists sniffed MIME types accepted for uploads.
	AllowedFileTypes []string `koanf:"allowed_file_types"`

	// BasicUsers maps basic-auth usernames to bcrypt hashes.
	BasicUsers map[string]string `koanf:"basic_users"`

	// BearerTokens lists accepted bearer tokens.
	BearerTokens []string `koanf:"bearer_tokens"`

	// Validation holds rules as controller -> method -> field -> rules.
	// Field names starting with "@" are checked against request headers.
	Validation map[string]map[string]map[string][]string `koanf:"validation"`

	// Metrics tunes the Prometheus collectors served on /healthz.
	Metrics Metrics `koanf:"metrics"`
}

// Metrics configures the metrics manager. Empty values keep its defaults.
type Metrics struct {
	Enabled         bool              `koanf:"enabled"`
	Namespace       string            `koanf:"namespace"`
	Subsystem       string            `koanf:"subsystem"`
	Prefix          string            `koanf:"prefix"`
	RefreshInterval time.Duration     `koanf:"refresh_interval"`
	Buckets         []float64         `koanf:"buckets"`
	Labels          map[string]string `koanf:"labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		MaxBodyBytes:       1 << 20,
		MaxMultipartMemory: 32 << 20,
		UploadDir:          "uploads",
		AllowedFileTypes: []string{
			"image/png",
			"image/jpeg",
			"image/gif",
			"application/pdf",
			"text/plain; charset=utf-8",
		},
		BasicUsers:   map[string]string{},
		BearerTokens: []string{},
		Validation:   map[string]map[string]map[string][]string{},
		Metrics: Metrics{
			Enabled:         true,
			RefreshInterval: 10 * time.Second,
			Labels:          map[string]string{},
		},
	}
}
