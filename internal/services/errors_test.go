package services_test

import (
	"errors"
	"strings"
	"testing"

	"sheetwatch/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("boom")
	err := services.Wrap(services.ErrRemoteService, "vendor", "complete", "request failed", inner)
	if !errors.Is(err, services.ErrRemoteService) {
		t.Fatalf("expected ErrRemoteService marker, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
	if !strings.Contains(err.Error(), "vendor: complete: request failed") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrStore) {
		t.Fatalf("expected ErrStore fallback, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := services.WithFilename(t.Context(), "lm317.pdf")
	ctx = services.WithStage(ctx, "tags")
	ctx = services.WithRunID(ctx, "run-1")

	if name, ok := services.FilenameFromContext(ctx); !ok || name != "lm317.pdf" {
		t.Fatalf("filename = %q, ok=%v", name, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "tags" {
		t.Fatalf("stage = %q, ok=%v", stage, ok)
	}
	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("run id = %q, ok=%v", id, ok)
	}
}
