package filehandler

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/fpang/takeout-exif/internal/exifdate"
	"github.com/fpang/takeout-exif/internal/exiftool"
	"github.com/fpang/takeout-exif/internal/exiftool/exiftooltest"
	"github.com/fpang/takeout-exif/internal/testutil"
)

func TestImageHandlerHasDate(t *testing.T) {
	const when = "2017:11:23 23:34:26"

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"date time original", testutil.JPEGWithEXIF(map[uint16]string{testutil.TagDateTimeOriginal: when}), true},
		{"date time only", testutil.JPEGWithEXIF(map[uint16]string{testutil.TagDateTime: when}), true},
		{"digitized only", testutil.JPEGWithEXIF(map[uint16]string{testutil.TagDateTimeDigitized: when}), true},
		{"exif without dates", testutil.JPEGWithEXIF(nil), false},
		{"no exif segment", testutil.MinimalJPEG(), false},
		{"not an image", []byte("definitely not a jpeg"), false},
		{"empty file", nil, false},
	}

	h := &ImageHandler{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, t.TempDir(), "IMG_0001.jpg", tt.data)

			got, err := h.HasDate(context.Background(), path)
			if err != nil {
				t.Fatalf("HasDate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImageHandlerHasDateMissingFile(t *testing.T) {
	h := &ImageHandler{}
	_, err := h.HasDate(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
	if !errors.Is(err, ErrMetadataRead) {
		t.Fatalf("HasDate() error = %v, want ErrMetadataRead", err)
	}
}

func TestImageHandlerHasDateWithTool(t *testing.T) {
	const when = "2017:11:23 23:34:26"
	blank := "    :  :     :  :  "

	tests := []struct {
		name      string
		file      string
		data      []byte
		raw       map[string]string // what exiftool reports for the file
		want      bool
		wantReads int
	}{
		{
			name:      "png with eXIf date",
			file:      "Screenshot.png",
			data:      testutil.PNGWithEXIF(map[uint16]string{testutil.TagDateTimeOriginal: when}),
			raw:       map[string]string{exiftool.TagDateTimeOriginal: when},
			want:      true,
			wantReads: 1,
		},
		{
			name:      "png without date",
			file:      "Screenshot.png",
			data:      testutil.MinimalPNG(),
			want:      false,
			wantReads: 1,
		},
		{
			name:      "webp with EXIF date",
			file:      "sticker.webp",
			data:      testutil.WebPWithEXIF(map[uint16]string{testutil.TagDateTimeDigitized: when}),
			raw:       map[string]string{exiftool.TagCreateDate: when},
			want:      true,
			wantReads: 1,
		},
		{
			name:      "zero sentinel is undated",
			file:      "IMG_0001.jpg",
			data:      testutil.JPEGWithEXIF(map[uint16]string{testutil.TagDateTimeOriginal: exifdate.ZeroSentinel}),
			raw:       map[string]string{exiftool.TagDateTimeOriginal: exifdate.ZeroSentinel},
			want:      false,
			wantReads: 1,
		},
		{
			name:      "blank placeholder is undated",
			file:      "IMG_0002.jpg",
			data:      testutil.JPEGWithEXIF(map[uint16]string{testutil.TagDateTime: blank}),
			raw:       map[string]string{exiftool.TagModifyDate: blank},
			want:      false,
			wantReads: 1,
		},
		{
			name:      "present value in another layout is dated",
			file:      "IMG_0003.jpg",
			data:      testutil.JPEGWithEXIF(map[uint16]string{testutil.TagDateTimeOriginal: "2017-11-23 10:00:00"}),
			raw:       map[string]string{exiftool.TagDateTimeOriginal: "2017-11-23 10:00:00"},
			want:      true,
			wantReads: 1,
		},
		{
			name:      "parseable exif date needs no tool",
			file:      "IMG_0004.jpg",
			data:      testutil.JPEGWithEXIF(map[uint16]string{testutil.TagDateTimeOriginal: when}),
			want:      true,
			wantReads: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, t.TempDir(), tt.file, tt.data)
			fake := exiftooltest.New()
			for tag, v := range tt.raw {
				fake.Set(path, tag, v)
			}

			got, err := NewHandlers(fake, nil).Image.HasDate(context.Background(), path)
			if err != nil {
				t.Fatalf("HasDate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("HasDate() = %v, want %v", got, tt.want)
			}
			if n := len(fake.Reads()); n != tt.wantReads {
				t.Errorf("tool reads = %d, want %d", n, tt.wantReads)
			}
		})
	}
}

func TestImageHandlerToolFailure(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "a.png", testutil.MinimalPNG())

	fake := exiftooltest.New()
	fake.ReadErr = &exiftool.InvocationError{Op: "read", Path: path, Stderr: "Error: File format error"}
	got, err := NewHandlers(fake, nil).Image.HasDate(context.Background(), path)
	if err != nil || got {
		t.Errorf("HasDate() = %v, %v, want false, nil", got, err)
	}

	fake.ReadErr = exiftool.ErrToolTimeout
	if _, err := NewHandlers(fake, nil).Image.HasDate(context.Background(), path); !errors.Is(err, exiftool.ErrToolTimeout) {
		t.Errorf("HasDate() error = %v, want ErrToolTimeout", err)
	}
}

func TestImageHandlerPNGRoundTripWithExiftool(t *testing.T) {
	if _, err := exec.LookPath(exiftool.DefaultBinary); err != nil {
		t.Skip("Skipping integration test: exiftool not installed")
	}

	path := testutil.WriteFile(t, t.TempDir(), "Screenshot.png", testutil.MinimalPNG())
	tool := exiftool.NewCommand("", 30*time.Second)
	h := NewHandlers(tool, nil).Image
	ctx := context.Background()

	has, err := h.HasDate(ctx, path)
	if err != nil || has {
		t.Fatalf("before write: HasDate() = %v, %v, want false, nil", has, err)
	}

	if err := h.WriteDate(ctx, path, "2017:11:23 23:34:26"); err != nil {
		t.Fatalf("WriteDate() error = %v", err)
	}

	has, err = h.HasDate(ctx, path)
	if err != nil || !has {
		t.Fatalf("after write: HasDate() = %v, %v, want true, nil", has, err)
	}
}
