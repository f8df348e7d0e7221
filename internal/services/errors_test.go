package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"audex/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "export", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"export", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.Category
	}{
		{"validation", services.Wrap(services.ErrValidation, "validate", "extension", "unknown", nil), services.CategoryUser},
		{"not found", services.Wrap(services.ErrNotFound, "validate", "stat", "", nil), services.CategoryUser},
		{"tool", services.Wrap(services.ErrExternalTool, "export", "ffmpeg", "exit 1", nil), services.CategoryTool},
		{"cancelled", fmt.Errorf("export: %w", context.Canceled), services.CategoryCancelled},
		{"plain", errors.New("boom"), services.CategoryInternal},
		{"nil", nil, services.CategoryInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Classify(tt.err); got != tt.want {
				t.Fatalf("Classify = %q, want %q", got, tt.want)
			}
		})
	}
}
