// Package manifest serializes the per-build asset-name→remote-location map
// into a byte-stable form. The manifest is what runtime code and documents
// use to resolve chunks once assets no longer share a common base path.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultFileName is the manifest output name used when the configuration
// enables manifest emission without naming a file.
const DefaultFileName = "manifest.json"

// Build serializes urls with keys sorted lexicographically. Two calls with
// equal map contents produce byte-identical output regardless of insertion
// order; pretty only switches on 2-space indentation and never affects
// content or ordering.
func Build(urls map[string]string, pretty bool) ([]byte, error) {
	if urls == nil {
		urls = map[string]string{}
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(urls, "", "  ")
	} else {
		data, err = json.Marshal(urls)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// Write emits the pretty-printed manifest to path.
func Write(path string, urls map[string]string) error {
	data, err := Build(urls, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // manifest is a public artifact
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
