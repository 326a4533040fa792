package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

var (
	// ErrDirectoryNotFound means the target path does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrNotADirectory means the target path exists but is not a directory.
	ErrNotADirectory = errors.New("path is not a directory")
)

// ResolveDirectory checks that the path exists and is a directory, then
// returns its absolute form.
func ResolveDirectory(dirPath string) (string, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrDirectoryNotFound, dirPath)
		}
		return "", fmt.Errorf("failed to access directory %s: %w", dirPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, dirPath)
	}

	if absPath, err := filepath.Abs(dirPath); err == nil {
		dirPath = absPath
	}
	return dirPath, nil
}

// ValidateAndResolveDirectory is ResolveDirectory that exits fatally on failure.
func ValidateAndResolveDirectory(dirPath string) string {
	resolved, err := ResolveDirectory(dirPath)
	if err != nil {
		switch {
		case errors.Is(err, ErrDirectoryNotFound):
			log.Fatal().Str("path", dirPath).Msg("Directory not found")
		case errors.Is(err, ErrNotADirectory):
			log.Fatal().Str("path", dirPath).Msg("Path is not a directory")
		default:
			log.Fatal().Err(err).Str("path", dirPath).Msg("Failed to access directory")
		}
	}
	return resolved
}
