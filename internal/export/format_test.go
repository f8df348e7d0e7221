package export_test

import (
	"testing"
	"time"

	"golang.org/x/text/language"

	"audex/internal/export"
)

func TestFormatPresetMapping(t *testing.T) {
	tests := []struct {
		format    export.Format
		preset    string
		container string
	}{
		{export.FormatM4A, export.PresetAAC256, "ipod"},
		{export.FormatWAV, export.PresetPassthrough, "wav"},
		{export.FormatMP3, export.PresetMP3192, "mp3"},
	}
	if len(tests) != len(export.Formats()) {
		t.Fatalf("every format needs a mapping test")
	}
	for _, tt := range tests {
		if got := tt.format.Preset().ID; got != tt.preset {
			t.Fatalf("%s preset = %q, want %q", tt.format, got, tt.preset)
		}
		if got := tt.format.ContainerType(); got != tt.container {
			t.Fatalf("%s container = %q, want %q", tt.format, got, tt.container)
		}
		if tt.format.Extension() != string(tt.format) {
			t.Fatalf("%s extension = %q", tt.format, tt.format.Extension())
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"", export.FormatM4A, false},
		{"m4a", export.FormatM4A, false},
		{".WAV", export.FormatWAV, false},
		{" mp3 ", export.FormatMP3, false},
		{"flac", "", true},
	}
	for _, tt := range tests {
		got, err := export.ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if export.Format("ogg").Valid() {
		t.Fatal("ogg must not be valid")
	}
}

func TestFormatLabels(t *testing.T) {
	if got := export.FormatM4A.Name(language.Spanish); got != "M4A" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := export.FormatWAV.Description(language.English); got != "Lossless, no re-encoding" {
		t.Fatalf("unexpected description %q", got)
	}
	if got := export.Format("ogg").Description(language.English); got != "" {
		t.Fatalf("expected empty description for unknown format, got %q", got)
	}
}

func TestEstimateBytes(t *testing.T) {
	if got := export.FormatM4A.Preset().EstimateBytes(10*time.Second, 0, 0); got != 320_000 {
		t.Fatalf("m4a estimate = %d", got)
	}
	if got := export.FormatWAV.Preset().EstimateBytes(time.Second, 44_100, 1); got != 88_200 {
		t.Fatalf("wav estimate = %d", got)
	}
	if got := export.FormatWAV.Preset().EstimateBytes(time.Second, 0, 0); got != 192_000 {
		t.Fatalf("wav default estimate = %d", got)
	}
	if got := export.FormatMP3.Preset().EstimateBytes(0, 0, 0); got != 0 {
		t.Fatalf("zero duration estimate = %d", got)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		source string
		format export.Format
		want   string
	}{
		{"/videos/clip.mov", export.FormatM4A, "clip_audio.m4a"},
		{"/videos/my.holiday.mp4", export.FormatWAV, "my.holiday_audio.wav"},
		{"video.MOV", export.FormatMP3, "video_audio.mp3"},
		{"/videos/Take 2: final?.mp4", export.FormatM4A, "Take 2- final_audio.m4a"},
		{"/videos/.mov", export.FormatM4A, "output_audio.m4a"},
	}
	for _, tt := range tests {
		if got := export.OutputName(tt.source, tt.format); got != tt.want {
			t.Fatalf("OutputName(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}
