package mediatype

import (
	"fmt"
	"strings"

	"github.com/wailsapp/mimetype"
)

// Kind is the coarse category of sniffed file content.
type Kind string

const (
	KindUnknown Kind = "unknown"
	KindVideo   Kind = "video"
	KindAudio   Kind = "audio"
	KindImage   Kind = "image"
	KindText    Kind = "text"
)

// Sniff inspects the file header and returns the detected MIME string along
// with its coarse kind. Content the detector cannot place is KindUnknown.
func Sniff(path string) (string, Kind, error) {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return "", KindUnknown, fmt.Errorf("sniff %s: %w", path, err)
	}
	return detected.String(), kindOf(detected), nil
}

func kindOf(detected *mimetype.MIME) Kind {
	for m := detected; m != nil; m = m.Parent() {
		value := m.String()
		switch {
		case strings.HasPrefix(value, "video/"):
			return KindVideo
		case strings.HasPrefix(value, "audio/"):
			return KindAudio
		case strings.HasPrefix(value, "image/"):
			return KindImage
		case strings.HasPrefix(value, "text/"):
			return KindText
		}
	}
	return KindUnknown
}

// Contradicts reports whether sniffed content confidently belongs to a
// different media kind than a movie. Unknown and video content never
// contradict the declared type.
func (k Kind) Contradicts() bool {
	switch k {
	case KindAudio, KindImage, KindText:
		return true
	default:
		return false
	}
}
