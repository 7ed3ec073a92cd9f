package history

import (
	"context"
	"path/filepath"
	"testing"
)

func TestAppendAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for i, cycle := range []string{"cycle-1", "cycle-2", "cycle-3"} {
		err := store.Append(ctx, Record{
			CycleID:  cycle,
			Commit:   "abc123",
			Uploaded: i + 1,
			URLs:     map[string]string{"logo.png": "https://cdn/logo.png"},
		})
		if err != nil {
			t.Fatalf("Append %s: %v", cycle, err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d records, want 2", len(recent))
	}
	if recent[0].CycleID != "cycle-3" || recent[1].CycleID != "cycle-2" {
		t.Errorf("records not newest first: %s, %s", recent[0].CycleID, recent[1].CycleID)
	}
	if recent[0].Uploaded != 3 {
		t.Errorf("Uploaded = %d, want 3", recent[0].Uploaded)
	}
	if recent[0].URLs["logo.png"] != "https://cdn/logo.png" {
		t.Errorf("URLs not round-tripped: %v", recent[0].URLs)
	}
}

func TestByCycleID(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Append(ctx, Record{CycleID: "wanted"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(ctx, Record{CycleID: "other"}); err != nil {
		t.Fatal(err)
	}

	got, err := store.ByCycleID(ctx, "wanted")
	if err != nil {
		t.Fatalf("ByCycleID: %v", err)
	}
	if len(got) != 1 || got[0].CycleID != "wanted" {
		t.Errorf("ByCycleID returned %+v", got)
	}
}

func TestOpenCreatesFileAndSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Append(context.Background(), Record{CycleID: "persisted"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	recent, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].CycleID != "persisted" {
		t.Errorf("records lost across reopen: %+v", recent)
	}
}
