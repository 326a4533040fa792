// Package sidecar handles Google Takeout supplemental-metadata JSON files:
// pairing a sidecar with its media file and reading the capture timestamp.
package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Suffix is appended by Takeout to the media file name to form the sidecar name.
const Suffix = ".supplemental-metadata.json"

var (
	// ErrInvalidSidecarName is returned when a path does not end with Suffix.
	ErrInvalidSidecarName = errors.New("path does not end with " + Suffix)

	// ErrSidecar is returned when a sidecar cannot be read or parsed, or lacks
	// photoTakenTime.timestamp.
	ErrSidecar = errors.New("sidecar read or parse error")
)

// Metadata holds the sidecar fields this tool consumes. Other fields are ignored.
type Metadata struct {
	PhotoTakenTime struct {
		Timestamp string `json:"timestamp"`
	} `json:"photoTakenTime"`
}

// IsSidecarName reports whether name carries the sidecar suffix.
func IsSidecarName(name string) bool {
	return strings.HasSuffix(name, Suffix)
}

// MediaPath returns the media file path for a sidecar by removing exactly one
// Suffix. It is a pure string operation; the result may not exist.
func MediaPath(sidecarPath string) (string, error) {
	if !IsSidecarName(sidecarPath) {
		return "", fmt.Errorf("%w: %s", ErrInvalidSidecarName, sidecarPath)
	}
	return strings.TrimSuffix(sidecarPath, Suffix), nil
}

// SidecarPath returns the sidecar path for a media file.
func SidecarPath(mediaPath string) string {
	return mediaPath + Suffix
}

// Read reads and parses the sidecar at path.
func Read(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSidecar, err)
	}
	return Parse(data)
}

// Parse decodes sidecar JSON. A missing or empty photoTakenTime.timestamp is an error.
func Parse(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSidecar, err)
	}
	if strings.TrimSpace(m.PhotoTakenTime.Timestamp) == "" {
		return nil, fmt.Errorf("%w: photoTakenTime.timestamp is missing", ErrSidecar)
	}
	return &m, nil
}
