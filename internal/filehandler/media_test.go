package filehandler

import (
	"testing"

	"github.com/fpang/takeout-exif/internal/exiftool/exiftooltest"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		expected MediaClass
	}{
		{"video.MOV", Video},
		{"video.mp4", Video},
		{"clip.m4v", Video},
		{"dir/movie.AVI", Video},
		{"a.mkv", Video},
		{"a.3gp", Video},
		{"a.webm", Video},
		{"a.flv", Video},
		{"a.WMV", Video},
		{"image.jpg", Image},
		{"image.HEIC", Image},
		{"doc.pdf", Image},
		{"noext", Image},
		{"dir.mp4/noext", Image},
		{".mp4", Video},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.expected {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestMediaClassString(t *testing.T) {
	if Image.String() != "image" {
		t.Errorf("Image.String() = %q, want %q", Image.String(), "image")
	}
	if Video.String() != "video" {
		t.Errorf("Video.String() = %q, want %q", Video.String(), "video")
	}
}

func TestIsVideo(t *testing.T) {
	tests := []struct {
		ext      string
		expected bool
	}{
		{".mp4", true},
		{".MP4", true},
		{".mov", true},
		{".MOV", true},
		{".webm", true},
		{".jpg", false},
		{".png", false},
		{"", false},
		{"mp4", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := IsVideo(tt.ext); got != tt.expected {
				t.Errorf("IsVideo(%q) = %v, want %v", tt.ext, got, tt.expected)
			}
		})
	}
}

func TestHandlersFor(t *testing.T) {
	h := NewHandlers(exiftooltest.New(), nil)

	if _, ok := h.For(Image).(*ImageHandler); !ok {
		t.Errorf("For(Image) = %T, want *ImageHandler", h.For(Image))
	}
	if _, ok := h.For(Video).(*VideoHandler); !ok {
		t.Errorf("For(Video) = %T, want *VideoHandler", h.For(Video))
	}
}
