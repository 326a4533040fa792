package filehandler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/fpang/takeout-exif/internal/exifdate"
	"github.com/fpang/takeout-exif/internal/exiftool"
	"github.com/rs/zerolog/log"
)

// videoDateTags are the raw fields asked of exiftool when probing a video.
var videoDateTags = []string{
	exiftool.TagDateTimeOriginal,
	exiftool.TagCreateDate,
	exiftool.TagMediaCreateDate,
	exiftool.TagTrackCreateDate,
}

// VideoHandler checks and writes video dates.
type VideoHandler struct {
	tool   exiftool.Tool
	writer *Writer
}

var _ DateHandler = (*VideoHandler)(nil)

// HasDate first reads the ISO-BMFF headers in process for MP4-family files,
// then falls back to asking exiftool. A failed exiftool read counts as "no
// date" so the update is attempted (and its own error reported); a timeout
// or cancellation is returned.
func (h *VideoHandler) HasDate(ctx context.Context, path string) (bool, error) {
	if bmffExtensions[strings.ToLower(filepath.Ext(path))] {
		has, err := bmffHasCreationTime(path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("BMFF header read failed, asking exiftool")
		} else if has {
			log.Debug().Str("path", path).Msg("Video creation time found in movie header")
			return true, nil
		}
	}

	fields, err := h.tool.ReadFields(ctx, path, videoDateTags)
	if err != nil {
		if errors.Is(err, exiftool.ErrToolTimeout) || ctx.Err() != nil {
			return false, err
		}
		log.Warn().Err(err).Str("path", path).Msg("exiftool could not read video dates, treating as undated")
		return false, nil
	}

	for _, tag := range videoDateTags {
		if exifdate.IsSet(fields[tag]) {
			log.Debug().Str("path", path).Str("tag", tag).Msg("Video date found")
			return true, nil
		}
	}
	return false, nil
}

// WriteDate writes the common date fields plus the QuickTime media and track dates.
func (h *VideoHandler) WriteDate(ctx context.Context, path, datetime string) error {
	return h.writer.Write(ctx, path, Video, datetime)
}
