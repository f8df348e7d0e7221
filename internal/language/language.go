package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
)

// wordForms covers the English and Spanish language names some muxers write
// into the language tag instead of a code.
var wordForms = map[string]string{
	"english":    "en",
	"inglés":     "en",
	"ingles":     "en",
	"spanish":    "es",
	"español":    "es",
	"espanol":    "es",
	"castilian":  "es",
	"french":     "fr",
	"francés":    "fr",
	"german":     "de",
	"alemán":     "de",
	"italian":    "it",
	"italiano":   "it",
	"portuguese": "pt",
	"portugués":  "pt",
	"japanese":   "ja",
	"japonés":    "ja",
}

// bibliographic maps ISO 639-2/B codes, which BCP 47 does not accept, to
// their ISO 639-1 equivalents.
var bibliographic = map[string]string{
	"fre": "fr",
	"ger": "de",
	"dut": "nl",
	"chi": "zh",
	"cze": "cs",
	"gre": "el",
	"rum": "ro",
	"slo": "sk",
	"per": "fa",
	"alb": "sq",
	"arm": "hy",
	"baq": "eu",
	"ice": "is",
	"mac": "mk",
	"may": "ms",
	"wel": "cy",
}

// Base returns the ISO 639-1 base of tag ("spa" and "es-MX" both become
// "es"). Unknown, empty, and undetermined ("und") tags return "".
func Base(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(tag, "\u0000", "")))
	if tag == "" {
		return ""
	}
	if code, ok := wordForms[tag]; ok {
		return code
	}
	tag = strings.ReplaceAll(tag, "_", "-")
	primary, rest, _ := strings.Cut(tag, "-")
	if code, ok := bibliographic[primary]; ok {
		if rest == "" {
			return code
		}
		tag = code + "-" + rest
	}
	parsed, err := xlanguage.Parse(tag)
	if err != nil {
		return ""
	}
	if parsed == xlanguage.Und {
		return ""
	}
	// Base guesses a likely language for tags without one ("und" reports
	// "en" at Low confidence); only an explicit base counts.
	base, confidence := parsed.Base()
	if confidence < xlanguage.High {
		return ""
	}
	code := base.String()
	if _, ok := nonLanguages[code]; ok {
		return ""
	}
	return code
}

// nonLanguages are ISO 639-2 special codes that never name a spoken language.
var nonLanguages = map[string]struct{}{
	"und": {},
	"mul": {},
	"mis": {},
	"zxx": {},
}

// Match reports whether two tags name the same base language. Empty or
// unknown tags never match.
func Match(a, b string) bool {
	left := Base(a)
	return left != "" && left == Base(b)
}

// FromTags extracts the language tag from stream metadata, checking the
// keys muxers commonly use. The returned value is trimmed and lowercased
// but not normalized.
func FromTags(tags map[string]string) string {
	if len(tags) == 0 {
		return ""
	}
	for _, key := range []string{"language", "LANGUAGE", "Language", "language_ietf", "lang", "LANG"} {
		if value, ok := tags[key]; ok {
			value = strings.TrimSpace(strings.ReplaceAll(value, "\u0000", ""))
			if value != "" {
				return strings.ToLower(value)
			}
		}
	}
	return ""
}
