package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir is an upload adapter that copies assets into a local directory and
// reports them as served under a base URL. It exists for local development
// and for tests; the published tree can then be rsynced or served directly.
type Dir struct {
	dir     string
	baseURL string
}

// NewDir creates the directory upload adapter.
func NewDir(dir, baseURL string) (*Dir, error) {
	if dir == "" {
		return nil, fmt.Errorf("target directory is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
	}
	return &Dir{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload implements Func.
func (d *Dir) Upload(_ context.Context, name string, content []byte, _ string) (string, error) {
	dest := filepath.Join(d.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(dest, content, 0644); err != nil { //nolint:gosec // published assets are public
		return "", fmt.Errorf("copy %s: %w", name, err)
	}
	return d.baseURL + "/" + name, nil
}
