package l10n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key identifies a catalog entry.
type Key string

const (
	NoAudioTrack      Key = "no_audio_track"
	UnsupportedFormat Key = "unsupported_format"
	ExportFailed      Key = "export_failed"
	InsufficientSpace Key = "insufficient_space"
	PermissionDenied  Key = "permission_denied"
	JobAlreadyActive  Key = "job_already_active"
	Unexpected        Key = "unexpected"
	NoFileDropped     Key = "no_file_dropped"
	DroppedNotVideo   Key = "dropped_not_video"
	SaveFailed        Key = "save_failed"

	FormatM4A Key = "format_m4a"
	FormatWAV Key = "format_wav"
	FormatMP3 Key = "format_mp3"

	StateIdle       Key = "state_idle"
	StateValidating Key = "state_validating"
	StateProcessing Key = "state_processing"
	StateDone       Key = "state_done"
	StateError      Key = "state_error"

	NotifyReadyTitle  Key = "notify_ready_title"
	NotifyFailedTitle Key = "notify_failed_title"
	NotifyTest        Key = "notify_test"
)

var entries = map[language.Tag]map[Key]string{
	language.Spanish: {
		NoAudioTrack:      "El video no contiene pista de audio",
		UnsupportedFormat: "Formato de video no soportado",
		ExportFailed:      "Error al exportar: %s",
		InsufficientSpace: "Espacio insuficiente en disco",
		PermissionDenied:  "Permisos insuficientes para acceder al archivo",
		JobAlreadyActive:  "Ya hay una exportación en curso",
		Unexpected:        "Error inesperado: %s",
		NoFileDropped:     "No se encontró ningún archivo",
		DroppedNotVideo:   "El archivo seleccionado no es un video soportado",
		SaveFailed:        "Error al guardar archivo: %s",

		FormatM4A: "AAC comprimido (recomendado)",
		FormatWAV: "Sin pérdida, sin recodificar",
		FormatMP3: "MP3 comprimido",

		StateIdle:       "En espera",
		StateValidating: "Validando",
		StateProcessing: "Procesando %d%%",
		StateDone:       "Listo: %s",
		StateError:      "Error: %s",

		NotifyReadyTitle:  "audex - Audio listo",
		NotifyFailedTitle: "audex - Exportación fallida",
		NotifyTest:        "Prueba del sistema de notificaciones",
	},
	language.English: {
		NoAudioTrack:      "The video has no audio track",
		UnsupportedFormat: "Unsupported video format",
		ExportFailed:      "Export failed: %s",
		InsufficientSpace: "Not enough disk space",
		PermissionDenied:  "Insufficient permissions to access the file",
		JobAlreadyActive:  "An export is already running",
		Unexpected:        "Unexpected error: %s",
		NoFileDropped:     "No file was found",
		DroppedNotVideo:   "The selected file is not a supported video",
		SaveFailed:        "Failed to save file: %s",

		FormatM4A: "Compressed AAC (recommended)",
		FormatWAV: "Lossless, no re-encoding",
		FormatMP3: "Compressed MP3",

		StateIdle:       "Idle",
		StateValidating: "Validating",
		StateProcessing: "Processing %d%%",
		StateDone:       "Done: %s",
		StateError:      "Error: %s",

		NotifyReadyTitle:  "audex - Audio ready",
		NotifyFailedTitle: "audex - Export failed",
		NotifyTest:        "Notification system test",
	},
}

// Supported lists the catalog languages, default first.
var Supported = []language.Tag{language.Spanish, language.English}

var (
	builder = newBuilder()
	matcher = language.NewMatcher(Supported)
)

func newBuilder() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for tag, messages := range entries {
		for key, text := range messages {
			if err := b.SetString(tag, string(key), text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Resolve maps an arbitrary tag to the closest supported language, falling
// back to Spanish when nothing matches.
func Resolve(tag language.Tag) language.Tag {
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Supported[0]
	}
	return Supported[index]
}

// Parse resolves a BCP 47 string; malformed input yields Spanish.
func Parse(value string) language.Tag {
	tag, err := language.Parse(value)
	if err != nil {
		return Supported[0]
	}
	return Resolve(tag)
}

// Printer returns a message printer bound to the catalog.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(Resolve(tag), message.Catalog(builder))
}

// Text formats the entry for key in the given language.
func Text(tag language.Tag, key Key, args ...any) string {
	return Printer(tag).Sprintf(string(key), args...)
}
