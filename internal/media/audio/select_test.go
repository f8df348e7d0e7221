package audio

import (
	"testing"

	"audex/internal/media/ffprobe"
)

func TestSelectPrefersDefaultDisposition(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "video"},
		{Index: 1, CodecType: "audio", CodecName: "ac3"},
		{Index: 2, CodecType: "audio", CodecName: "aac", Disposition: map[string]int{"default": 1}},
	}

	sel := Select(streams, "")
	if sel.PrimaryIndex != 2 {
		t.Fatalf("expected default track (index 2), got %d", sel.PrimaryIndex)
	}
	if sel.Total != 2 {
		t.Fatalf("expected 2 audio tracks counted, got %d", sel.Total)
	}
}

func TestSelectPrefersLanguageWhenNoDefault(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 1, CodecType: "audio", Tags: map[string]string{"language": "eng"}},
		{Index: 2, CodecType: "audio", Tags: map[string]string{"language": "spa"}},
	}

	if sel := Select(streams, "es"); sel.PrimaryIndex != 2 {
		t.Fatalf("expected spanish track, got %d", sel.PrimaryIndex)
	}
	if sel := Select(streams, "en-US"); sel.PrimaryIndex != 1 {
		t.Fatalf("expected english track, got %d", sel.PrimaryIndex)
	}
}

func TestSelectMatchesMixedLanguageTagStyles(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 1, CodecType: "audio", Tags: map[string]string{"language": "fre"}},
		{Index: 2, CodecType: "audio", Tags: map[string]string{"language_ietf": "es-MX"}},
	}

	if sel := Select(streams, "spa"); sel.PrimaryIndex != 2 {
		t.Fatalf("expected es-MX track for spa, got %d", sel.PrimaryIndex)
	}
	if sel := Select(streams, "fr"); sel.PrimaryIndex != 1 {
		t.Fatalf("expected fre track for fr, got %d", sel.PrimaryIndex)
	}
}

func TestSelectDoesNotTreatUndeterminedAsPreferred(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 1, CodecType: "audio", Tags: map[string]string{"language": "und"}},
		{Index: 2, CodecType: "audio", Tags: map[string]string{"language": "eng"}},
	}

	if sel := Select(streams, "en"); sel.PrimaryIndex != 2 {
		t.Fatalf("expected tagged english track, got %d", sel.PrimaryIndex)
	}
}

func TestSelectAvoidsCommentary(t *testing.T) {
	streams := []ffprobe.Stream{
		{
			Index:       1,
			CodecType:   "audio",
			Disposition: map[string]int{"default": 1, "comment": 1},
		},
		{Index: 2, CodecType: "audio", Tags: map[string]string{"title": "Main"}},
		{Index: 3, CodecType: "audio", Tags: map[string]string{"title": "Director Commentary"}},
	}

	if sel := Select(streams, ""); sel.PrimaryIndex != 2 {
		t.Fatalf("expected main track, got %d", sel.PrimaryIndex)
	}
}

func TestSelectFallsBackToFirstTrack(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "video"},
		{Index: 3, CodecType: "audio", CodecName: "mp3"},
		{Index: 4, CodecType: "audio", CodecName: "aac"},
	}
	sel := Select(streams, "fr")
	if sel.PrimaryIndex != 3 {
		t.Fatalf("expected first audio track, got %d", sel.PrimaryIndex)
	}
	if sel.PrimaryLabel() != "mp3" {
		t.Fatalf("unexpected label %q", sel.PrimaryLabel())
	}
}

func TestSelectNoAudio(t *testing.T) {
	sel := Select([]ffprobe.Stream{{Index: 0, CodecType: "video"}}, "es")
	if sel.Found() {
		t.Fatalf("expected no selection, got %+v", sel)
	}
	if sel.PrimaryLabel() != "" {
		t.Fatalf("expected empty label, got %q", sel.PrimaryLabel())
	}
}

func TestIsPCM(t *testing.T) {
	tests := []struct {
		codec string
		want  bool
	}{
		{"pcm_s16le", true},
		{"PCM_S24LE", true},
		{"pcm_s16be", false},
		{"aac", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPCM(ffprobe.Stream{CodecName: tt.codec}); got != tt.want {
			t.Fatalf("IsPCM(%q) = %v, want %v", tt.codec, got, tt.want)
		}
	}
}
