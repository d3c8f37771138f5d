package catalog_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"highlighter/internal/catalog"
	"highlighter/internal/services"
	"highlighter/internal/testsupport"
)

func TestAddAndFetch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	source := filepath.Join(testsupport.BaseDir(cfg), "footage", "goal_of-the.season.mp4")
	rec := testsupport.AddClip(t, store, source)
	if rec.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if rec.Title != "Goal Of The Season" {
		t.Fatalf("unexpected title %q", rec.Title)
	}
	if rec.DurationKnown || rec.Deleted || rec.Status() != "pending" {
		t.Fatalf("unexpected fresh record %#v", rec)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}

	byPath, err := store.GetByPath(ctx, source)
	if err != nil || byPath == nil || byPath.ID != rec.ID {
		t.Fatalf("GetByPath: rec=%#v err=%v", byPath, err)
	}

	_, err = store.Add(ctx, source)
	if !errors.Is(err, catalog.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	rec, err := store.Get(context.Background(), 42)
	if err != nil || rec != nil {
		t.Fatalf("expected nil, nil; got %#v %v", rec, err)
	}
	if _, err := store.MustGet(context.Background(), 42); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateRoundTripsNullableFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()
	rec := testsupport.AddClip(t, store, "/footage/match.mp4")

	verified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec.Duration = 30.5
	rec.DurationKnown = true
	rec.StartTrim = 1.25
	rec.EndTrim = 2
	rec.StripPath = "/strips/abc.png"
	rec.VerifiedAt = &verified
	if err := store.Update(ctx, rec); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.DurationKnown || got.Duration != 30.5 {
		t.Fatalf("duration not persisted: %#v", got)
	}
	if got.StartTrim != 1.25 || got.EndTrim != 2 {
		t.Fatalf("trims not persisted: %#v", got)
	}
	if got.VerifiedAt == nil || !got.VerifiedAt.Equal(verified) {
		t.Fatalf("verified_at not persisted: %v", got.VerifiedAt)
	}
	if got.Playable() != 27.25 {
		t.Fatalf("unexpected playable length %v", got.Playable())
	}
	if got.Status() != "ready" {
		t.Fatalf("unexpected status %q", got.Status())
	}

	got.DurationKnown = false
	got.ErrorKind = "probe_failed"
	got.ErrorMessage = "probe failed: ffprobe: duration: empty output"
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.DurationKnown {
		t.Fatal("expected duration to be cleared")
	}
	if again.Status() != "failed" {
		t.Fatalf("unexpected status %q", again.Status())
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	err := store.Update(context.Background(), &catalog.Record{ID: 99, Title: "ghost"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRemoveAndStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	a := testsupport.AddClip(t, store, "/footage/a.mp4")
	b := testsupport.AddClip(t, store, "/footage/b.mp4")
	c := testsupport.AddClip(t, store, "/footage/c.mp4")

	b.Deleted = true
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update: %v", err)
	}
	c.StripPath = "/strips/c.png"
	if err := store.Update(ctx, c); err != nil {
		t.Fatalf("Update: %v", err)
	}

	counts, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if counts != (catalog.Counts{Total: 3, Ready: 1, Pending: 1, Deleted: 1}) {
		t.Fatalf("unexpected counts %+v", counts)
	}

	removed, err := store.Remove(ctx, a.ID)
	if err != nil || !removed {
		t.Fatalf("Remove: removed=%v err=%v", removed, err)
	}
	removed, err = store.Remove(ctx, a.ID)
	if err != nil || removed {
		t.Fatalf("second Remove: removed=%v err=%v", removed, err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 || records[0].ID != b.ID || records[1].ID != c.ID {
		t.Fatalf("unexpected listing %#v", records)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	testsupport.AddClip(t, store, "/footage/a.mp4")
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenCatalog(t, cfg)
	records, err := reopened.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after reopen, got %d", len(records))
	}
}

func TestTitleFromPath(t *testing.T) {
	cases := map[string]string{
		"/x/GX010042.MP4":        "Gx010042",
		"/x/final_whistle.mov":   "Final Whistle",
		"/x/  .mp4":              "Untitled Clip",
		"/x/half-time  show.mkv": "Half Time Show",
	}
	for path, want := range cases {
		if got := catalog.TitleFromPath(path); got != want {
			t.Fatalf("%q: got %q want %q", path, got, want)
		}
	}
}
