package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"highlighter/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	bin := filepath.Join(base, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ffprobe", "ffmpeg"} {
		if err := os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\necho \""+name+" version test\"\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", bin)

	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.StripDir = filepath.Join(base, "strips")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}

	report := RunAll(context.Background(), &cfg)
	if len(report.Directories) != 3 || len(report.Tools) != 2 {
		t.Fatalf("unexpected report shape: %+v", report)
	}
	if !report.Ready() {
		t.Fatalf("expected ready report, got %+v", report)
	}
	if report.Tools[0].Version != "ffprobe version test" {
		t.Fatalf("unexpected version %q", report.Tools[0].Version)
	}

	if err := os.Remove(filepath.Join(bin, "ffmpeg")); err != nil {
		t.Fatal(err)
	}
	if RunAll(context.Background(), &cfg).Ready() {
		t.Fatal("expected missing ffmpeg to fail readiness")
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if report := RunAll(context.Background(), nil); len(report.Directories) != 0 || len(report.Tools) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
