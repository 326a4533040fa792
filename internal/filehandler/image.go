package filehandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/evanoberholster/imagemeta/exif2"
	"github.com/fpang/takeout-exif/internal/exifdate"
	"github.com/fpang/takeout-exif/internal/exiftool"
	"github.com/rs/zerolog/log"
)

// ErrMetadataRead means a media file could not be opened for inspection.
var ErrMetadataRead = errors.New("failed to read media metadata")

// imageDateTags are the raw fields asked of exiftool when imagemeta cannot
// answer: DateTimeOriginal, DateTime (ModifyDate) and DateTimeDigitized (CreateDate).
var imageDateTags = []string{
	exiftool.TagDateTimeOriginal,
	exiftool.TagModifyDate,
	exiftool.TagCreateDate,
}

// ImageHandler checks embedded EXIF in process and writes through exiftool.
type ImageHandler struct {
	tool   exiftool.Tool
	writer *Writer
}

var _ DateHandler = (*ImageHandler)(nil)

// HasDate reports whether DateTimeOriginal, DateTime (ModifyDate) or
// DateTimeDigitized (CreateDate) is set.
//
// imagemeta answers for JPEG, TIFF and HEIF when it finds a real date. For
// every other case (PNG, WebP and other formats imagemeta cannot read, missing
// EXIF, unparseable or all-zero values) the raw fields are read with exiftool
// and judged by exifdate.IsSet. A failed exiftool read counts as "no date";
// a timeout or cancellation is returned. Only a failure to open the file is
// returned as ErrMetadataRead.
func (h *ImageHandler) HasDate(ctx context.Context, path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrMetadataRead, err)
	}
	defer f.Close()

	x, err := decodeExifSafe(f)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("imagemeta cannot read EXIF, asking exiftool")
	} else if hasRealDate(x.DateTimeOriginal(), x.ModifyDate(), x.CreateDate()) {
		log.Debug().Str("path", path).Msg("Image date found in EXIF")
		return true, nil
	}

	if h.tool == nil {
		return false, nil
	}

	fields, err := h.tool.ReadFields(ctx, path, imageDateTags)
	if err != nil {
		if errors.Is(err, exiftool.ErrToolTimeout) || ctx.Err() != nil {
			return false, err
		}
		log.Warn().Err(err).Str("path", path).Msg("exiftool could not read image dates, treating as undated")
		return false, nil
	}

	for _, tag := range imageDateTags {
		if exifdate.IsSet(fields[tag]) {
			log.Debug().Str("path", path).Str("tag", tag).Msg("Image date found by exiftool")
			return true, nil
		}
	}
	return false, nil
}

// WriteDate writes the image date fields.
func (h *ImageHandler) WriteDate(ctx context.Context, path, datetime string) error {
	return h.writer.Write(ctx, path, Image, datetime)
}

// hasRealDate reports whether any parsed date is usable. The all-zero sentinel
// and blank placeholders normalize to dates before year 1.
func hasRealDate(dates ...time.Time) bool {
	for _, t := range dates {
		if !t.IsZero() && t.Year() >= 1 {
			return true
		}
	}
	return false
}

// decodeExifSafe runs imagemeta.Decode and turns a parser panic on malformed
// input into an error.
func decodeExifSafe(r io.ReadSeeker) (x exif2.Exif, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("exif decode panic: %v", p)
		}
	}()
	return imagemeta.Decode(r)
}
