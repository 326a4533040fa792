package filehandler

import (
	"context"
	"fmt"

	"github.com/fpang/takeout-exif/internal/exiftool"
	"github.com/rs/zerolog/log"
)

var commonDateTags = []string{
	exiftool.TagDateTimeOriginal,
	exiftool.TagModifyDate,
	exiftool.TagCreateDate,
}

var videoOnlyDateTags = []string{
	exiftool.TagMediaCreateDate,
	exiftool.TagMediaModifyDate,
	exiftool.TagTrackCreateDate,
	exiftool.TagTrackModifyDate,
}

// DateFields returns the tag assignments written for class.
func DateFields(class MediaClass, datetime string) []exiftool.Field {
	tags := commonDateTags
	if class == Video {
		tags = append(append([]string(nil), commonDateTags...), videoOnlyDateTags...)
	}

	fields := make([]exiftool.Field, len(tags))
	for i, tag := range tags {
		fields[i] = exiftool.Field{Name: tag, Value: datetime}
	}
	return fields
}

// Writer applies date fields through exiftool, overwriting the file in place.
type Writer struct {
	tool   exiftool.Tool
	prober *exiftool.Prober
}

// Write runs the cached preflight probe, then writes the fields for class.
func (w *Writer) Write(ctx context.Context, path string, class MediaClass, datetime string) error {
	if w.prober != nil {
		if _, err := w.prober.Check(); err != nil {
			return err
		}
	}

	if err := w.tool.WriteFields(ctx, path, DateFields(class, datetime)); err != nil {
		return fmt.Errorf("writing %s date: %w", class, err)
	}

	log.Debug().
		Str("path", path).
		Str("class", class.String()).
		Str("datetime", datetime).
		Msg("Date metadata written")
	return nil
}
