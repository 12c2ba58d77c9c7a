package services_test

import (
	"context"
	"testing"

	"shadowkit/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithProject(ctx, "/projects/vlog")
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if project, ok := services.ProjectFromContext(ctx); !ok || project != "/projects/vlog" {
		t.Fatalf("unexpected project: %v %v", project, ok)
	}
	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithProject(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.ProjectFromContext(ctx); ok {
		t.Fatal("expected no project value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
