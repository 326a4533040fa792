// Package exifdate converts sidecar epoch timestamps into the date-time
// representation used by EXIF and QuickTime date fields.
package exifdate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout is the field format required for EXIF date/time values (YYYY:MM:DD HH:MM:SS).
const Layout = "2006:01:02 15:04:05"

// ZeroSentinel is the placeholder value tools report for an unset date field.
const ZeroSentinel = "0000:00:00 00:00:00"

// ErrInvalidTimestamp is returned when a sidecar timestamp is not a base-10
// integer or does not map to a four-digit-year calendar date.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// FromEpochString parses epoch seconds (UTC) and returns the formatted date-time.
//
// Example: "1511480066" -> "2017:11:23 23:34:26"
func FromEpochString(s string) (string, error) {
	t, err := ParseEpoch(s)
	if err != nil {
		return "", err
	}
	return Format(t), nil
}

// ParseEpoch parses epoch seconds into a UTC time. Values whose year falls
// outside 0000-9999 are rejected rather than clamped.
func ParseEpoch(s string) (time.Time, error) {
	secs, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not an integer", ErrInvalidTimestamp, s)
	}

	t := time.Unix(secs, 0).UTC()
	if t.Year() < 0 || t.Year() > 9999 || t.Unix() != secs {
		return time.Time{}, fmt.Errorf("%w: %d is out of range", ErrInvalidTimestamp, secs)
	}
	return t, nil
}

// Format renders t in UTC using Layout.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse reads a value in Layout form, as written by Format or reported by exiftool.
func Parse(value string) (time.Time, error) {
	return time.Parse(Layout, strings.TrimSpace(value))
}

// IsSet reports whether a raw date field carries a value: any non-zero digit.
// Blank values, the all-zero sentinel and space-filled placeholders such as
// "    :  :     :  :  " are unset. Present values in other layouts are set.
func IsSet(value string) bool {
	return strings.ContainsAny(value, "123456789")
}
