package mediatype_test

import (
	"os"
	"path/filepath"
	"testing"

	"audex/internal/mediatype"
)

func TestFromExtensionConformance(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantFound bool
		wantVideo bool
	}{
		{"quicktime", "clip.mov", true, true},
		{"uppercase mp4", "CLIP.MP4", true, true},
		{"m4v descends from mpeg4", "trailer.m4v", true, true},
		{"avi", "old.avi", true, true},
		{"matroska is a generic movie", "show.mkv", true, true},
		{"audio is known but not video", "song.mp3", true, false},
		{"image", "cover.png", true, false},
		{"unknown extension", "notes.xyz", false, false},
		{"no extension", "README", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, ok := mediatype.FromPath(tt.path)
			if ok != tt.wantFound {
				t.Fatalf("FromPath(%q) found=%v, want %v", tt.path, ok, tt.wantFound)
			}
			if got := typ.ConformsToAny(mediatype.SupportedVideo...); got != tt.wantVideo {
				t.Fatalf("ConformsToAny(%q) = %v, want %v", tt.path, got, tt.wantVideo)
			}
		})
	}
}

func TestConformsToWalksHierarchy(t *testing.T) {
	typ, ok := mediatype.FromExtension(".m4v")
	if !ok {
		t.Fatal("expected m4v to resolve")
	}
	for _, id := range []mediatype.ID{mediatype.M4V, mediatype.MPEG4Movie, mediatype.Movie, mediatype.Data} {
		if !typ.ConformsTo(id) {
			t.Fatalf("expected m4v to conform to %s", id)
		}
	}
	if typ.ConformsTo(mediatype.QuickTimeMovie) {
		t.Fatal("m4v must not conform to quicktime-movie")
	}
	if typ.ConformsTo(mediatype.Audio) {
		t.Fatal("m4v must not conform to audio")
	}
}

func TestLookup(t *testing.T) {
	typ, ok := mediatype.Lookup(mediatype.AVI)
	if !ok || typ.MIME != "video/x-msvideo" {
		t.Fatalf("unexpected avi descriptor: %+v %v", typ, ok)
	}
	if _, ok := mediatype.Lookup("nonsense"); ok {
		t.Fatal("expected unknown id to miss")
	}
}

func TestSniffKinds(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	binary := write("clip.mov", []byte{0x00, 0x01, 0x02, 0x03, 0x00, 0x00, 0xff, 0xfe})
	text := write("fake.mov", []byte("this is just a plain text file\n"))
	png := write("fake.mp4", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))

	tests := []struct {
		path        string
		wantKind    mediatype.Kind
		contradicts bool
	}{
		{binary, mediatype.KindUnknown, false},
		{text, mediatype.KindText, true},
		{png, mediatype.KindImage, true},
	}
	for _, tt := range tests {
		_, kind, err := mediatype.Sniff(tt.path)
		if err != nil {
			t.Fatalf("Sniff(%s): %v", tt.path, err)
		}
		if kind != tt.wantKind {
			t.Fatalf("Sniff(%s) kind = %s, want %s", filepath.Base(tt.path), kind, tt.wantKind)
		}
		if kind.Contradicts() != tt.contradicts {
			t.Fatalf("Contradicts(%s) = %v, want %v", kind, kind.Contradicts(), tt.contradicts)
		}
	}
}

func TestSniffMissingFile(t *testing.T) {
	if _, _, err := mediatype.Sniff(filepath.Join(t.TempDir(), "missing.mov")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
