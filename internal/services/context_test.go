package services_test

import (
	"context"
	"testing"

	"highlighter/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithClipPath(ctx, "/footage/goal.mp4")
	ctx = services.WithRequestID(ctx, "req-123")

	if path, ok := services.ClipPathFromContext(ctx); !ok || path != "/footage/goal.mp4" {
		t.Fatalf("unexpected clip path: %v %v", path, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	if services.WithClipPath(ctx, "") != ctx {
		t.Fatal("expected blank clip path to return the original context")
	}
	if services.WithRequestID(ctx, "") != ctx {
		t.Fatal("expected blank request id to return the original context")
	}
	if _, ok := services.ClipPathFromContext(ctx); ok {
		t.Fatal("expected no clip path")
	}
}
