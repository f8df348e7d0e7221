package export

import (
	"os"
	"path/filepath"
	"strings"

	"audex/internal/mediatype"
	"audex/internal/textutil"
)

// Validate reports whether path names a supported video. The declared type
// comes from the extension; when the file exists its content is sniffed too,
// and content that is clearly audio, image, or text is rejected.
func Validate(path string) bool {
	return validateSource(path) == nil
}

func validateSource(path string) error {
	typ, ok := mediatype.FromPath(path)
	if !ok || !typ.ConformsToAny(mediatype.SupportedVideo...) {
		return ErrUnsupportedFormat
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if _, kind, err := mediatype.Sniff(path); err == nil && kind.Contradicts() {
		return ErrUnsupportedFormat
	}
	return nil
}

// OutputName returns "<source stem>_audio.<ext>".
func OutputName(source string, format Format) string {
	base := filepath.Base(source)
	stem := textutil.SanitizeFileName(strings.TrimSuffix(base, filepath.Ext(base)))
	if stem == "" {
		stem = "output"
	}
	return stem + "_audio." + format.Extension()
}
