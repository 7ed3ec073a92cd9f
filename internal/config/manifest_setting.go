package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/assetpipe/internal/manifest"
)

// ManifestSetting is a bool-or-string YAML field: `manifest: true` emits the
// manifest under its default name, `manifest: assets.json` under a custom
// name, and `manifest: false` (or absence) emits nothing.
type ManifestSetting struct {
	Enabled bool
	Name    string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *ManifestSetting) UnmarshalYAML(value *yaml.Node) error {
	var b bool
	if err := value.Decode(&b); err == nil {
		m.Enabled = b
		m.Name = ""
		return nil
	}

	var s string
	if err := value.Decode(&s); err == nil {
		m.Enabled = s != ""
		m.Name = s
		return nil
	}

	return fmt.Errorf("manifest must be a boolean or a file name, got %q", value.Value)
}

// MarshalYAML emits the compact form the unmarshaler accepts.
func (m ManifestSetting) MarshalYAML() (interface{}, error) {
	if m.Name != "" {
		return m.Name, nil
	}
	return m.Enabled, nil
}

// FileName returns the manifest output name, falling back to the default
// when only enabled.
func (m ManifestSetting) FileName() string {
	if m.Name != "" {
		return m.Name
	}
	return manifest.DefaultFileName
}
