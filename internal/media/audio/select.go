package audio

import (
	"strings"

	"audex/internal/language"
	"audex/internal/media/ffprobe"
)

// Selection describes the chosen primary audio stream.
type Selection struct {
	Primary      ffprobe.Stream
	PrimaryIndex int
	Total        int
}

// Found reports whether any audio stream was available.
func (s Selection) Found() bool {
	return s.PrimaryIndex >= 0
}

// PrimaryLabel returns a human-readable summary of the selected primary stream.
func (s Selection) PrimaryLabel() string {
	if !s.Found() {
		return ""
	}
	return s.Primary.String()
}

// Select returns the primary audio stream. preferredLanguage is a BCP 47
// base ("es", "en") or ISO 639-2 code ("spa"); an empty value disables the
// language preference.
func Select(streams []ffprobe.Stream, preferredLanguage string) Selection {
	selection := Selection{PrimaryIndex: -1}
	bestScore := 0
	order := 0
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		selection.Total++
		score := scoreStream(stream, preferredLanguage, order)
		if selection.PrimaryIndex < 0 || score > bestScore {
			selection.Primary = stream
			selection.PrimaryIndex = stream.Index
			bestScore = score
		}
		order++
	}
	return selection
}

func scoreStream(stream ffprobe.Stream, preferredLanguage string, order int) int {
	score := 0
	if stream.IsDefault() {
		score += 100
	}
	if language.Match(stream.Language(), preferredLanguage) {
		score += 50
	}
	if isSecondary(stream) {
		score -= 200
	}
	// earlier tracks win ties
	return score*1000 - order
}

func isSecondary(stream ffprobe.Stream) bool {
	if stream.Disposition["comment"] == 1 || stream.Disposition["visual_impaired"] == 1 {
		return true
	}
	title := strings.ToLower(stream.Tags["title"])
	for _, keyword := range []string{"commentary", "comentario", "audio description", "audiodescripción"} {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

// IsPCM reports whether the stream already holds little-endian PCM that a
// WAV container can carry without re-encoding.
func IsPCM(stream ffprobe.Stream) bool {
	switch strings.ToLower(stream.CodecName) {
	case "pcm_s16le", "pcm_s24le", "pcm_s32le", "pcm_f32le", "pcm_f64le", "pcm_u8":
		return true
	}
	return false
}
