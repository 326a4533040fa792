package filehandler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fpang/takeout-exif/internal/sidecar"
	"github.com/rs/zerolog/log"
)

// ScanOptions configures directory scanning behavior.
type ScanOptions struct {
	// MaxDepth limits recursion depth. 0 = unlimited, 1 = top-level only.
	MaxDepth int

	// Limit caps the number of sidecars returned. 0 = unlimited.
	Limit int
}

// ScanSidecars walks dirPath recursively and returns every regular file whose
// name ends with the supplemental-metadata suffix, sorted by path.
// This is a convenience wrapper that calls ScanSidecarsWithOptions with default options.
func ScanSidecars(dirPath string) ([]string, error) {
	return ScanSidecarsWithOptions(dirPath, ScanOptions{})
}

// ScanSidecarsWithOptions scans for sidecar files with configurable options.
// Symbolic links are never followed, to files or to directories. Entries that
// cannot be read are logged and skipped. Returned paths are absolute.
func ScanSidecarsWithOptions(dirPath string, opts ScanOptions) ([]string, error) {
	log.Info().
		Str("path", dirPath).
		Int("max_depth", opts.MaxDepth).
		Int("limit", opts.Limit).
		Msg("Scanning directory for sidecar files")

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", dirPath)
		}
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	// Convert to absolute path for consistent depth calculation
	root, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	baseDepth := strings.Count(root, string(os.PathSeparator))

	var sidecars []string
	var symlinks int
	limitReached := false

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error accessing path, skipping")
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if opts.MaxDepth > 0 && path != root {
				currentDepth := strings.Count(path, string(os.PathSeparator)) - baseDepth
				if currentDepth >= opts.MaxDepth {
					return fs.SkipDir
				}
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			symlinks++
			log.Debug().Str("path", path).Msg("Skipping symlink")
			return nil
		}

		if !d.Type().IsRegular() || !sidecar.IsSidecarName(d.Name()) {
			return nil
		}

		if opts.Limit > 0 && len(sidecars) >= opts.Limit {
			limitReached = true
			return fs.SkipAll
		}

		sidecars = append(sidecars, path)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(sidecars)

	logEvent := log.Info().
		Int("total_sidecars", len(sidecars)).
		Int("symlinks_skipped", symlinks).
		Str("directory", dirPath)

	if limitReached {
		logEvent.Bool("limit_reached", true)
	}

	logEvent.Msg("Directory scan complete")

	return sidecars, nil
}
