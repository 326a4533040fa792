// Package filehandler classifies media files and reads or writes their capture date.
//
// It follows a split-provider model:
//   - Images (JPEG, HEIC, TIFF, etc.): Pure Go presence check using evanoberholster/imagemeta
//   - Videos (MP4, MOV, MKV, etc.): ISO-BMFF headers via abema/go-mp4, then the external exiftool
//
// Writes always go through exiftool. Both classes implement DateHandler, so the
// pipeline never needs to know which provider answered.
package filehandler

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fpang/takeout-exif/internal/exiftool"
)

// MediaClass is the closed set of media families handled by the tool.
type MediaClass int

const (
	Image MediaClass = iota
	Video
)

// String returns "image" or "video".
func (c MediaClass) String() string {
	switch c {
	case Video:
		return "video"
	default:
		return "image"
	}
}

// VideoExtensions lists the lower-cased extensions classified as Video.
// Everything else, including files without an extension, is an Image.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".m4v":  true,
	".3gp":  true,
	".webm": true,
	".flv":  true,
	".wmv":  true,
}

// bmffExtensions are the video containers whose headers go-mp4 can read.
var bmffExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".m4v": true,
	".3gp": true,
}

// Classify maps a path to its MediaClass by extension. It never fails.
func Classify(path string) MediaClass {
	if IsVideo(filepath.Ext(path)) {
		return Video
	}
	return Image
}

// IsVideo reports whether ext (with leading dot, any case) is a video extension.
func IsVideo(ext string) bool {
	return VideoExtensions[strings.ToLower(ext)]
}

// DateHandler is implemented once per MediaClass.
type DateHandler interface {
	// HasDate reports whether the file already carries a usable capture date.
	// "No date" is a normal answer, not an error.
	HasDate(ctx context.Context, path string) (bool, error)

	// WriteDate stores datetime ("YYYY:MM:DD HH:MM:SS") into the file in place.
	WriteDate(ctx context.Context, path, datetime string) error
}

// Handlers holds one DateHandler per MediaClass. Build one per worker: the
// underlying Tool is not safe for concurrent use.
type Handlers struct {
	Image DateHandler
	Video DateHandler
}

// NewHandlers wires both class handlers to tool. prober may be nil, in which
// case writes skip the preflight check.
func NewHandlers(tool exiftool.Tool, prober *exiftool.Prober) Handlers {
	w := &Writer{tool: tool, prober: prober}
	return Handlers{
		Image: &ImageHandler{tool: tool, writer: w},
		Video: &VideoHandler{tool: tool, writer: w},
	}
}

// For returns the handler for class.
func (h Handlers) For(class MediaClass) DateHandler {
	switch class {
	case Video:
		return h.Video
	default:
		return h.Image
	}
}
