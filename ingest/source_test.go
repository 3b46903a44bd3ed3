package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLocalSourceGetAndList(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	src := &LocalSource{Root: dir}

	data, err := src.Get(context.Background(), "a.json")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("Get() = %q, want {\"a\":1}", data)
	}

	keys, err := src.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(keys) != 1 || keys[0] != "a.json" {
		t.Fatalf("List() = %v, want [a.json]", keys)
	}
}

func TestLocalSourcePruneStaleRemovesOldFilesOnly(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.json")
	freshPath := filepath.Join(dir, "fresh.json")
	if err := os.WriteFile(oldPath, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write old fixture: %v", err)
	}
	if err := os.WriteFile(freshPath, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write fresh fixture: %v", err)
	}
	oldTime := time.Unix(1000, 0)
	if err := os.Chtimes(oldPath, oldTime, oldTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	src := &LocalSource{Root: dir}
	cutoff := time.Unix(500000, 0)
	removed, err := src.PruneStale(context.Background(), "", cutoff)
	if err != nil {
		t.Fatalf("PruneStale error: %v", err)
	}
	if len(removed) != 1 || removed[0] != "old.json" {
		t.Fatalf("PruneStale() removed = %v, want [old.json]", removed)
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Fatalf("fresh.json should still exist: %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("old.json should have been removed")
	}
}
