package asset

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scan walks a build output directory and returns its files as assets with
// output-relative, slash-separated names. Hidden files (dotfiles, including
// the persisted upload cache) are skipped. Results are sorted by name so
// repeated scans of the same tree are deterministic.
func Scan(outputDir string) ([]Asset, error) {
	var assets []Asset
	err := filepath.WalkDir(outputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != outputDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(outputDir, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}

		data, err := os.ReadFile(path) //nolint:gosec // path comes from the walk itself
		if err != nil {
			return fmt.Errorf("read asset %s: %w", rel, err)
		}

		assets = append(assets, Asset{
			Name: filepath.ToSlash(rel),
			Data: data,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan output directory %s: %w", outputDir, err)
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}
