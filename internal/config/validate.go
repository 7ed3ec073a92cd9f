package config

import "fmt"

// ValidationError is a fatal configuration error, surfaced before any asset
// processing starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration for conditions that must abort the
// build. The base-path veto is the important one: published assets resolve
// chunks through the manifest, so a shared base path would produce broken
// runtime URLs.
func (c *Config) Validate() error {
	if c.BasePath != "" {
		return &ValidationError{
			Field:  "base_path",
			Reason: "must be empty when publishing to remote locations; chunk resolution uses the manifest instead",
		}
	}
	if c.Output == "" {
		return &ValidationError{Field: "output", Reason: "output directory is required"}
	}
	if c.Upload.S3 == nil && c.Upload.Dir == nil {
		return &ValidationError{Field: "upload", Reason: "an upload target (s3 or dir) is required"}
	}
	if c.Upload.S3 != nil && c.Upload.Dir != nil {
		return &ValidationError{Field: "upload", Reason: "configure exactly one upload target"}
	}
	return nil
}
