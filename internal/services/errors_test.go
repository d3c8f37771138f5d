package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"highlighter/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", "exit status 1", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrProbeFailed) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"probe failed", "ffprobe", "duration", "exit status 1", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "", "", "", nil)
	if err.Error() != "validation error: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if err := services.Wrap(nil, "clip", "init", "", nil); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", "", nil), "probe_failed"},
		{fmt.Errorf("outer: %w", services.Wrap(services.ErrResourceConstruction, "frames", "open", "", nil)), "resource_construction_failed"},
		{services.Wrap(services.ErrStripGeneration, "frames", "strip", "", nil), "strip_generation_failed"},
		{services.Wrap(services.ErrValidation, "clip", "trim", "", nil), "validation"},
		{services.Wrap(services.ErrAccessCheck, "clip", "verify", "", nil), "access_check"},
		{services.Wrap(services.ErrProbeFailed, "ffprobe", "duration", "timed out", services.ErrTimeout), "probe_failed"},
		{context.Canceled, "unknown"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
