package textutil

import (
	"strings"
	"unicode"
)

// fileNameReplacer replaces characters that FAT, exFAT, and NTFS volumes reject.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters and control characters are removed. Leading dots are trimmed so
// the result is never hidden. The result may be empty.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = fileNameReplacer.Replace(name)
	return strings.TrimSpace(strings.TrimLeft(name, "."))
}
