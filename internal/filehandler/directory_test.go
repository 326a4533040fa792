package filehandler

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fpang/takeout-exif/internal/testutil"
)

func buildTakeoutTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{
		"a.jpg.supplemental-metadata.json",
		"a.jpg",
		"album/b.mp4.supplemental-metadata.json",
		"album/nested/c.png.supplemental-metadata.json",
		"album/metadata.json",
		"notes.txt",
	} {
		testutil.WriteFile(t, root, name, []byte("{}"))
	}
	if err := os.Mkdir(filepath.Join(root, "dir.supplemental-metadata.json"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestScanSidecars(t *testing.T) {
	root := buildTakeoutTree(t)

	got, err := ScanSidecars(root)
	if err != nil {
		t.Fatalf("ScanSidecars() error = %v", err)
	}

	want := []string{
		filepath.Join(root, "a.jpg.supplemental-metadata.json"),
		filepath.Join(root, "album", "b.mp4.supplemental-metadata.json"),
		filepath.Join(root, "album", "nested", "c.png.supplemental-metadata.json"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScanSidecars() = %v, want %v", got, want)
	}
}

func TestScanSidecarsSkipsSymlinks(t *testing.T) {
	root := buildTakeoutTree(t)
	outside := t.TempDir()
	target := testutil.WriteFile(t, outside, "x.jpg.supplemental-metadata.json", []byte("{}"))

	if err := os.Symlink(target, filepath.Join(root, "link.jpg.supplemental-metadata.json")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "linked-dir")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got, err := ScanSidecars(root)
	if err != nil {
		t.Fatalf("ScanSidecars() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("ScanSidecars() found %d files, want 3: %v", len(got), got)
	}
}

func TestScanSidecarsWithOptions(t *testing.T) {
	root := buildTakeoutTree(t)

	tests := []struct {
		name string
		opts ScanOptions
		want int
	}{
		{"unlimited", ScanOptions{}, 3},
		{"top level only", ScanOptions{MaxDepth: 1}, 1},
		{"two levels", ScanOptions{MaxDepth: 2}, 2},
		{"limit", ScanOptions{Limit: 2}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScanSidecarsWithOptions(root, tt.opts)
			if err != nil {
				t.Fatalf("ScanSidecarsWithOptions() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("found %d files, want %d: %v", len(got), tt.want, got)
			}
		})
	}
}

func TestScanSidecarsErrors(t *testing.T) {
	dir := t.TempDir()
	file := testutil.WriteFile(t, dir, "file.txt", nil)

	if _, err := ScanSidecars(filepath.Join(dir, "missing")); err == nil {
		t.Error("ScanSidecars(missing) error = nil, want error")
	}
	if _, err := ScanSidecars(file); err == nil {
		t.Error("ScanSidecars(file) error = nil, want error")
	}
}

func TestScanSidecarsRelativeRoot(t *testing.T) {
	dir := buildTakeoutTree(t)
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	root, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{"top level only", ScanOptions{MaxDepth: 1}, []string{"a.jpg.supplemental-metadata.json"}},
		{"two levels", ScanOptions{MaxDepth: 2}, []string{
			"a.jpg.supplemental-metadata.json",
			filepath.Join("album", "b.mp4.supplemental-metadata.json"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScanSidecarsWithOptions(".", tt.opts)
			if err != nil {
				t.Fatalf("ScanSidecarsWithOptions() error = %v", err)
			}

			var rel []string
			for _, p := range got {
				if !filepath.IsAbs(p) {
					t.Errorf("path %q is not absolute", p)
				}
				r, err := filepath.Rel(root, p)
				if err != nil {
					t.Fatal(err)
				}
				rel = append(rel, r)
			}
			if !reflect.DeepEqual(rel, tt.want) {
				t.Errorf("ScanSidecarsWithOptions(\".\") = %v, want %v", rel, tt.want)
			}
		})
	}
}
