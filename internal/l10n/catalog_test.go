package l10n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestTextSpanishDefaults(t *testing.T) {
	tests := []struct {
		key  Key
		args []any
		want string
	}{
		{NoAudioTrack, nil, "El video no contiene pista de audio"},
		{UnsupportedFormat, nil, "Formato de video no soportado"},
		{ExportFailed, []any{"cancelled"}, "Error al exportar: cancelled"},
		{InsufficientSpace, nil, "Espacio insuficiente en disco"},
		{PermissionDenied, nil, "Permisos insuficientes para acceder al archivo"},
		{NoFileDropped, nil, "No se encontró ningún archivo"},
		{DroppedNotVideo, nil, "El archivo seleccionado no es un video soportado"},
		{SaveFailed, []any{"disk full"}, "Error al guardar archivo: disk full"},
		{StateProcessing, []any{42}, "Procesando 42%"},
	}
	for _, tt := range tests {
		if got := Text(language.Spanish, tt.key, tt.args...); got != tt.want {
			t.Fatalf("Text(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestTextEnglish(t *testing.T) {
	if got := Text(language.AmericanEnglish, NoAudioTrack); got != "The video has no audio track" {
		t.Fatalf("unexpected english text %q", got)
	}
}

func TestResolveFallsBackToSpanish(t *testing.T) {
	if got := Resolve(language.Japanese); got != language.Spanish {
		t.Fatalf("expected spanish fallback, got %s", got)
	}
	if got := Parse("not a tag!"); got != language.Spanish {
		t.Fatalf("expected spanish for malformed tag, got %s", got)
	}
	if got := Parse("en-GB"); got != language.English {
		t.Fatalf("expected english, got %s", got)
	}
}

func TestEveryKeyTranslated(t *testing.T) {
	spanish := entries[language.Spanish]
	for tag, messages := range entries {
		if len(messages) != len(spanish) {
			t.Fatalf("%s has %d entries, spanish has %d", tag, len(messages), len(spanish))
		}
		for key := range spanish {
			if _, ok := messages[key]; !ok {
				t.Fatalf("%s is missing %s", tag, key)
			}
		}
	}
}
