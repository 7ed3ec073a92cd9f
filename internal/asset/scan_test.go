package asset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanReturnsSortedRelativeNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.js", "console.log(1)")
	writeFile(t, dir, "static/logo.png", "png-bytes")
	writeFile(t, dir, "app.css", "body{}")

	assets, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []string{"app.css", "main.js", "static/logo.png"}
	if len(assets) != len(want) {
		t.Fatalf("got %d assets, want %d", len(assets), len(want))
	}
	for i, name := range want {
		if assets[i].Name != name {
			t.Errorf("assets[%d].Name = %q, want %q", i, assets[i].Name, name)
		}
	}
	if string(assets[1].Data) != "console.log(1)" {
		t.Errorf("asset content not read: %q", assets[1].Data)
	}
}

func TestScanSkipsHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".upload-cache.json", "{}")
	writeFile(t, dir, ".git/config", "x")
	writeFile(t, dir, "index.html", "<html></html>")

	assets, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(assets) != 1 || assets[0].Name != "index.html" {
		t.Errorf("got %v, want only index.html", assets)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
