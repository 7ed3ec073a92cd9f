package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assetpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
mode: production
output: ./build
upload:
  dir:
    path: /tmp/cdn
    base_url: https://cdn.example.com
`))
	require.NoError(t, err)

	assert.True(t, cfg.KeepLocalFiles, "keep_local_files defaults to true")
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.False(t, cfg.Manifest.Enabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoadKeepLocalFilesOverride(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
output: ./build
keep_local_files: false
upload:
  dir: {path: /tmp/cdn, base_url: https://cdn.example.com}
`))
	require.NoError(t, err)
	assert.False(t, cfg.KeepLocalFiles)
}

func TestManifestSettingVariants(t *testing.T) {
	cases := []struct {
		yaml     string
		enabled  bool
		fileName string
	}{
		{"manifest: true", true, "manifest.json"},
		{"manifest: false", false, "manifest.json"},
		{"manifest: assets.json", true, "assets.json"},
	}

	for _, tc := range cases {
		cfg, err := Load(writeConfig(t, "output: ./build\nupload:\n  dir: {path: /tmp/c, base_url: https://c}\n"+tc.yaml))
		require.NoError(t, err, tc.yaml)
		assert.Equal(t, tc.enabled, cfg.Manifest.Enabled, tc.yaml)
		assert.Equal(t, tc.fileName, cfg.Manifest.FileName(), tc.yaml)
	}
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_BUCKET", "release-assets")
	cfg, err := Load(writeConfig(t, `
output: ./build
upload:
  s3:
    endpoint: minio.internal:9000
    access_key: ak
    secret_key: sk
    bucket: ${TEST_BUCKET}
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Upload.S3)
	assert.Equal(t, "release-assets", cfg.Upload.S3.Bucket)
}

func TestValidateVetoesBasePath(t *testing.T) {
	cfg := &Config{
		Output:   "./build",
		BasePath: "/static/",
		Upload:   UploadConfig{Dir: &DirUploadConfig{Path: "/tmp/c", BaseURL: "https://c"}},
	}

	err := cfg.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "base_path", verr.Field)
}

func TestValidateRequiresUploadTarget(t *testing.T) {
	cfg := &Config{Output: "./build"}
	require.Error(t, cfg.Validate())

	cfg.Upload.Dir = &DirUploadConfig{Path: "/tmp/c", BaseURL: "https://c"}
	require.NoError(t, cfg.Validate())

	cfg.Upload.S3 = &S3UploadConfig{}
	require.Error(t, cfg.Validate(), "two upload targets must be rejected")
}

func TestIsProductionFromEnv(t *testing.T) {
	cfg := &Config{}
	t.Setenv("ASSETPIPE_MODE", "production")
	assert.True(t, cfg.IsProduction())

	cfg.Mode = "development"
	assert.False(t, cfg.IsProduction(), "explicit mode wins over environment")
}
