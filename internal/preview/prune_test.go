package preview_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"highlighter/internal/logging"
	"highlighter/internal/preview"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if age > 0 {
		when := time.Now().Add(-age)
		if err := os.Chtimes(path, when, when); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
}

func TestPruneRemovesUnreferencedStrips(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "aaaa.png")
	orphan := filepath.Join(dir, "bbbb.png")
	staleLock := filepath.Join(dir, "bbbb.png.lock")
	freshLock := filepath.Join(dir, "aaaa.png.lock")
	other := filepath.Join(dir, "notes.txt")
	touch(t, kept, 0)
	touch(t, orphan, 0)
	touch(t, staleLock, 2*time.Hour)
	touch(t, freshLock, 0)
	touch(t, other, 0)

	result := preview.Prune(context.Background(), dir, map[string]struct{}{kept: {}}, time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	slices.Sort(result.Removed)
	want := []string{orphan, staleLock}
	if !slices.Equal(result.Removed, want) {
		t.Fatalf("removed %v, want %v", result.Removed, want)
	}
	if result.Bytes != 2 {
		t.Fatalf("expected 2 bytes reclaimed, got %d", result.Bytes)
	}
	for _, path := range []string{kept, freshLock, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s should survive: %v", path, err)
		}
	}
}

func TestPruneMissingDirectory(t *testing.T) {
	for _, dir := range []string{"", "  ", filepath.Join(t.TempDir(), "absent")} {
		result := preview.Prune(context.Background(), dir, nil, time.Hour, nil)
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Fatalf("expected empty result for %q, got %+v", dir, result)
		}
	}
}
