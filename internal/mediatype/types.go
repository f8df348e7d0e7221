package mediatype

import (
	"path/filepath"
	"strings"
)

// ID identifies a type in the conformance hierarchy.
type ID string

const (
	Data           ID = "data"
	Movie          ID = "movie"
	QuickTimeMovie ID = "quicktime-movie"
	MPEG4Movie     ID = "mpeg4-movie"
	AVI            ID = "avi"
	Matroska       ID = "matroska"
	WebM           ID = "webm"
	MPEG           ID = "mpeg"
	MPEG2TS        ID = "mpeg2-transport-stream"
	ThreeGPP       ID = "3gpp"
	WindowsMedia   ID = "windows-media-video"
	FlashVideo     ID = "flash-video"
	M4V            ID = "m4v"

	Audio      ID = "audio"
	MPEG4Audio ID = "mpeg4-audio"
	MP3        ID = "mp3"
	WAVE       ID = "wav"
	AIFF       ID = "aiff"
	FLAC       ID = "flac"

	Image ID = "image"
	Text  ID = "text"
)

// Type describes one entry in the hierarchy.
type Type struct {
	ID         ID
	Parent     ID
	MIME       string
	Extensions []string
}

var registry = map[ID]Type{
	Data:  {ID: Data},
	Movie: {ID: Movie, Parent: Data, MIME: "video/*"},

	QuickTimeMovie: {ID: QuickTimeMovie, Parent: Movie, MIME: "video/quicktime", Extensions: []string{"mov", "qt"}},
	MPEG4Movie:     {ID: MPEG4Movie, Parent: Movie, MIME: "video/mp4", Extensions: []string{"mp4"}},
	M4V:            {ID: M4V, Parent: MPEG4Movie, MIME: "video/x-m4v", Extensions: []string{"m4v"}},
	AVI:            {ID: AVI, Parent: Movie, MIME: "video/x-msvideo", Extensions: []string{"avi"}},
	Matroska:       {ID: Matroska, Parent: Movie, MIME: "video/x-matroska", Extensions: []string{"mkv"}},
	WebM:           {ID: WebM, Parent: Movie, MIME: "video/webm", Extensions: []string{"webm"}},
	MPEG:           {ID: MPEG, Parent: Movie, MIME: "video/mpeg", Extensions: []string{"mpg", "mpeg"}},
	MPEG2TS:        {ID: MPEG2TS, Parent: Movie, MIME: "video/mp2t", Extensions: []string{"ts", "m2ts", "mts"}},
	ThreeGPP:       {ID: ThreeGPP, Parent: Movie, MIME: "video/3gpp", Extensions: []string{"3gp", "3g2"}},
	WindowsMedia:   {ID: WindowsMedia, Parent: Movie, MIME: "video/x-ms-wmv", Extensions: []string{"wmv"}},
	FlashVideo:     {ID: FlashVideo, Parent: Movie, MIME: "video/x-flv", Extensions: []string{"flv"}},

	Audio:      {ID: Audio, Parent: Data, MIME: "audio/*"},
	MPEG4Audio: {ID: MPEG4Audio, Parent: Audio, MIME: "audio/mp4", Extensions: []string{"m4a", "aac"}},
	MP3:        {ID: MP3, Parent: Audio, MIME: "audio/mpeg", Extensions: []string{"mp3"}},
	WAVE:       {ID: WAVE, Parent: Audio, MIME: "audio/wav", Extensions: []string{"wav"}},
	AIFF:       {ID: AIFF, Parent: Audio, MIME: "audio/aiff", Extensions: []string{"aif", "aiff"}},
	FLAC:       {ID: FLAC, Parent: Audio, MIME: "audio/flac", Extensions: []string{"flac"}},

	Image: {ID: Image, Parent: Data, MIME: "image/*", Extensions: []string{"png", "jpg", "jpeg", "gif", "heic"}},
	Text:  {ID: Text, Parent: Data, MIME: "text/plain", Extensions: []string{"txt", "md", "srt"}},
}

var byExtension = func() map[string]ID {
	index := make(map[string]ID)
	for id, typ := range registry {
		for _, ext := range typ.Extensions {
			index[ext] = id
		}
	}
	return index
}()

// Lookup returns the descriptor registered under id.
func Lookup(id ID) (Type, bool) {
	typ, ok := registry[id]
	return typ, ok
}

// FromExtension resolves a file extension (with or without the leading dot,
// any case) to its type descriptor.
func FromExtension(ext string) (Type, bool) {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" {
		return Type{}, false
	}
	id, ok := byExtension[ext]
	if !ok {
		return Type{}, false
	}
	return registry[id], true
}

// FromPath resolves the declared type of a path from its extension.
func FromPath(path string) (Type, bool) {
	return FromExtension(filepath.Ext(path))
}

// ConformsTo reports whether t is target or descends from it.
func (t Type) ConformsTo(target ID) bool {
	seen := 0
	for id := t.ID; id != ""; {
		if id == target {
			return true
		}
		next, ok := registry[id]
		if !ok || seen > len(registry) {
			return false
		}
		id = next.Parent
		seen++
	}
	return false
}

// SupportedVideo lists the types an export source must conform to.
var SupportedVideo = []ID{QuickTimeMovie, MPEG4Movie, AVI, Movie}

// ConformsToAny reports whether t conforms to at least one of targets.
func (t Type) ConformsToAny(targets ...ID) bool {
	for _, target := range targets {
		if t.ConformsTo(target) {
			return true
		}
	}
	return false
}
