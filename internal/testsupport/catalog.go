package testsupport

import (
	"context"
	"testing"

	"highlighter/internal/catalog"
	"highlighter/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddClip catalogues sourcePath using the provided store.
func AddClip(t testing.TB, store *catalog.Store, sourcePath string) *catalog.Record {
	t.Helper()

	rec, err := store.Add(context.Background(), sourcePath)
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return rec
}
