package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Mode:           "production",
		Output:         "./dist",
		Entries:        []string{"main.js"},
		KeepLocalFiles: true,
		Manifest:       ManifestSetting{Enabled: true},
		Upload: UploadConfig{
			S3: &S3UploadConfig{
				Endpoint:  "s3.example.com",
				Region:    "us-east-1",
				AccessKey: "${S3_ACCESS_KEY}",
				SecretKey: "${S3_SECRET_KEY}",
				Bucket:    "static-assets",
				UseSSL:    true,
			},
		},
		History: HistoryConfig{Enabled: true},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil { //nolint:gosec // example config holds no secrets
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
