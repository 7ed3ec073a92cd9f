package uploadcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsEmptyCache(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), DefaultFileName))
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if _, ok := c.Lookup("deadbeef"); ok {
		t.Error("Lookup on empty cache returned a hit")
	}
}

func TestLoadCorruptFileYieldsEmptyCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte("not json at all {"), 0600); err != nil {
		t.Fatal(err)
	}

	c := Load(path)
	if c.Len() != 0 {
		t.Errorf("corrupt cache loaded %d entries, want 0", c.Len())
	}
}

func TestRecordLookupPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	c := Load(path)
	c.Record("fp-1", "https://cdn.example.com/logo.png")
	c.Record("fp-2", "https://cdn.example.com/app.css")

	if url, ok := c.Lookup("fp-1"); !ok || url != "https://cdn.example.com/logo.png" {
		t.Errorf("Lookup(fp-1) = %q, %v", url, ok)
	}

	if err := c.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	reloaded := Load(path)
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded %d entries, want 2", reloaded.Len())
	}
	if url, _ := reloaded.Lookup("fp-2"); url != "https://cdn.example.com/app.css" {
		t.Errorf("reloaded fp-2 = %q", url)
	}
}

func TestPersistOverwritesManualEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	c := Load(path)
	c.Record("fresh-fp", "https://cdn.example.com/y")

	// An edit made to the file after the cycle loaded it must not survive
	// the end-of-cycle persist.
	if err := os.WriteFile(path, []byte(`{"stale-fp":"https://old.example.com/x"}`), 0600); err != nil {
		t.Fatal(err)
	}

	if err := c.Persist(); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("persisted cache unparseable: %v", err)
	}
	if _, ok := entries["stale-fp"]; ok {
		t.Error("stale entry survived a full persist")
	}
	if entries["fresh-fp"] != "https://cdn.example.com/y" {
		t.Errorf("fresh entry missing: %v", entries)
	}
}

func TestRecordOverwritesExisting(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), DefaultFileName))
	c.Record("fp", "https://a")
	c.Record("fp", "https://b")
	if url, _ := c.Lookup("fp"); url != "https://b" {
		t.Errorf("Lookup after overwrite = %q, want https://b", url)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
