package publisher

import (
	"errors"
	"testing"
)

func TestMimeType(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPG", "image/jpeg"},
		{"photo.jpeg", "image/jpeg"},
		{"shot.png", "image/png"},
		{"loop.gif", "image/gif"},
		{"clip.mp4", "video/mp4"},
		{"clip.m4v", "video/mp4"},
		{"clip.MOV", "video/quicktime"},
		{"/some/dir/pic.Png", "image/png"},
	}
	for _, tc := range cases {
		got, err := MimeType(tc.path)
		if err != nil {
			t.Errorf("MimeType(%q): %v", tc.path, err)
			continue
		}
		if got != tc.want {
			t.Errorf("MimeType(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestMimeTypeUnsupported(t *testing.T) {
	for _, path := range []string{"doc.pdf", "notes.txt", "archive", "track.mp3"} {
		if _, err := MimeType(path); !errors.Is(err, ErrUnsupportedMedia) {
			t.Errorf("MimeType(%q): expected ErrUnsupportedMedia, got %v", path, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := make([]rune, 300)
	for i := range long {
		long[i] = 'a'
	}

	got, truncated := Truncate(string(long))
	if !truncated {
		t.Fatal("expected truncation")
	}
	if n := len([]rune(got)); n != PlatformLimit {
		t.Errorf("expected %d runes, got %d", PlatformLimit, n)
	}

	short := "within limit"
	if got, truncated := Truncate(short); truncated || got != short {
		t.Errorf("short text must pass through unchanged, got %q (%v)", got, truncated)
	}
}
