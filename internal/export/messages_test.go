package export

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
	"golang.org/x/text/language"
)

func TestMessageSpanish(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no audio", ErrNoAudioTrack, "El video no contiene pista de audio"},
		{"unsupported", fmt.Errorf("validate: %w", ErrUnsupportedFormat), "Formato de video no soportado"},
		{"export failed", failed("encoder crashed", nil), "Error al exportar: encoder crashed"},
		{"cancelled", failed(ReasonCancelled, nil), "Error al exportar: cancelled"},
		{"space", classifyFS(unix.ENOSPC), "Espacio insuficiente en disco"},
		{"permission", classifyFS(fmt.Errorf("open: %w", unix.EACCES)), "Permisos insuficientes para acceder al archivo"},
		{"other", errors.New("boom"), "Error inesperado: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err, language.Spanish); got != tt.want {
				t.Fatalf("Message = %q, want %q", got, tt.want)
			}
		})
	}
	if Message(nil, language.Spanish) != "" {
		t.Fatal("expected empty message for nil error")
	}
}

func TestExportFailedErrorMatching(t *testing.T) {
	cause := errors.New("exit status 1")
	err := fmt.Errorf("wrapped: %w", failed("exit status 1", cause))
	if !errors.Is(err, ErrExportFailed) {
		t.Fatal("expected ErrExportFailed match")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to unwrap")
	}
	var failure *ExportFailedError
	if !errors.As(err, &failure) || failure.Reason != "exit status 1" {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if IsCancelled(err) {
		t.Fatal("failure must not read as cancelled")
	}
	if !IsCancelled(failed(ReasonCancelled, nil)) {
		t.Fatal("expected cancelled")
	}
}

func TestClassifyFS(t *testing.T) {
	if err := classifyFS(unix.EPERM); !errors.Is(err, ErrPermissionDenied) || !errors.Is(err, unix.EPERM) {
		t.Fatalf("expected permission sentinel with cause, got %v", err)
	}
	if err := classifyFS(unix.EDQUOT); !errors.Is(err, ErrInsufficientSpace) {
		t.Fatalf("expected quota to read as insufficient space, got %v", err)
	}
	plain := errors.New("plain")
	if classifyFS(plain) != plain {
		t.Fatal("unrelated errors must pass through unchanged")
	}
	if classifyFS(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}
