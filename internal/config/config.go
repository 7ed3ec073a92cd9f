// Package config loads and validates the assetpipe configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	// Mode gates the whole pipeline: publishing only happens in
	// "production" mode.
	Mode string `yaml:"mode,omitempty"`

	// Output is the build output directory the pipeline operates on.
	Output string `yaml:"output"`

	// Entries are the output names of the build's declared entry points.
	Entries []string `yaml:"entries,omitempty"`

	// BasePath mirrors the build's shared asset base path. It must be empty:
	// remote locations replace that mechanism entirely, and a non-empty
	// value fails validation.
	BasePath string `yaml:"base_path,omitempty"`

	// KeepLocalFiles keeps local copies after a successful upload.
	KeepLocalFiles bool `yaml:"keep_local_files"`

	// Manifest controls manifest emission: false, true (default name) or a
	// custom file name.
	Manifest ManifestSetting `yaml:"manifest,omitempty"`

	Upload  UploadConfig  `yaml:"upload"`
	History HistoryConfig `yaml:"history,omitempty"`
	Events  EventsConfig  `yaml:"events,omitempty"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// UploadConfig selects and configures the upload collaborator.
type UploadConfig struct {
	S3  *S3UploadConfig  `yaml:"s3,omitempty"`
	Dir *DirUploadConfig `yaml:"dir,omitempty"`

	// Retries is the number of retry attempts after a failed upload.
	// Zero uses the default policy.
	Retries int `yaml:"retries,omitempty"`
}

// S3UploadConfig configures the S3/MinIO adapter.
type S3UploadConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region,omitempty"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	UseSSL        bool   `yaml:"use_ssl"`
	Prefix        string `yaml:"prefix,omitempty"`
	PublicBaseURL string `yaml:"public_base_url,omitempty"`
}

// DirUploadConfig configures the local-directory adapter.
type DirUploadConfig struct {
	Path    string `yaml:"path"`
	BaseURL string `yaml:"base_url"`
}

// HistoryConfig configures the local publish-history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// EventsConfig configures publish-complete notifications over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	// Debounce coalesces rapid output-directory changes into one republish.
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// RepublishInterval forces a periodic full republish as a safety net
	// alongside filesystem notifications. Zero disables it.
	RepublishInterval time.Duration `yaml:"republish_interval,omitempty"`
}

// MetricsConfig configures the Prometheus metrics endpoint (watch mode).
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// IsProduction reports whether the production mode signal is set, either in
// the configuration or via ASSETPIPE_MODE.
func (c *Config) IsProduction() bool {
	if c.Mode != "" {
		return c.Mode == "production"
	}
	return os.Getenv("ASSETPIPE_MODE") == "production"
}

// Load reads, expands, and applies defaults to the configuration at path.
func Load(path string) (*Config, error) {
	// Best effort: a missing .env is the common case, not a failure.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := defaultConfig()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Output:         "./dist",
		KeepLocalFiles: true,
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
	}
}

func (c *Config) applyDefaults() {
	if c.History.Enabled && c.History.Path == "" {
		c.History.Path = ".publish-history.db"
	}
	if c.Events.Enabled && c.Events.Subject == "" {
		c.Events.Subject = "assetpipe.publish"
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 2 * time.Second
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		c.Metrics.Listen = ":9090"
	}
}
