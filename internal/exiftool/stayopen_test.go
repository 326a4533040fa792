package exiftool

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/fpang/takeout-exif/internal/testutil"
)

func requireExiftool(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("Skipping integration test: exiftool not installed")
	}
}

func TestStayOpenWriteThenRead(t *testing.T) {
	requireExiftool(t)

	path := filepath.Join(t.TempDir(), "IMG_0001.jpg")
	if err := os.WriteFile(path, testutil.MinimalJPEG(), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewStayOpen("", 30*time.Second)
	if err != nil {
		t.Fatalf("NewStayOpen: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	err = s.WriteFields(ctx, path, []Field{
		{Name: TagDateTimeOriginal, Value: "2017:11:23 23:34:26"},
		{Name: TagCreateDate, Value: "2017:11:23 23:34:26"},
	})
	if err != nil {
		t.Fatalf("WriteFields: %v", err)
	}

	fields, err := s.ReadFields(ctx, path, []string{TagDateTimeOriginal, TagCreateDate})
	if err != nil {
		t.Fatalf("ReadFields: %v", err)
	}
	if fields[TagDateTimeOriginal] != "2017:11:23 23:34:26" {
		t.Errorf("DateTimeOriginal = %q", fields[TagDateTimeOriginal])
	}

	if _, err := os.Stat(path + "_original"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("backup file should not exist, stat err = %v", err)
	}
}

func TestStayOpenReadMissingFile(t *testing.T) {
	requireExiftool(t)

	s, err := NewStayOpen("", 30*time.Second)
	if err != nil {
		t.Fatalf("NewStayOpen: %v", err)
	}
	defer s.Close()

	_, err = s.ReadFields(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"), []string{TagCreateDate})
	var invErr *InvocationError
	if !errors.As(err, &invErr) {
		t.Errorf("expected *InvocationError, got %v", err)
	}
}

func TestStayOpenUnavailable(t *testing.T) {
	_, err := NewStayOpen(filepath.Join(t.TempDir(), "missing"), time.Second)
	if !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("expected ErrToolUnavailable, got %v", err)
	}
}

func TestCommandWriteThenRead(t *testing.T) {
	requireExiftool(t)

	path := filepath.Join(t.TempDir(), "IMG_0002.jpg")
	if err := os.WriteFile(path, testutil.MinimalJPEG(), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCommand("", 30*time.Second)
	ctx := context.Background()
	if err := c.WriteFields(ctx, path, []Field{{Name: TagDateTimeOriginal, Value: "2017:11:23 23:34:26"}}); err != nil {
		t.Fatalf("WriteFields: %v", err)
	}

	fields, err := c.ReadFields(ctx, path, []string{TagDateTimeOriginal})
	if err != nil {
		t.Fatalf("ReadFields: %v", err)
	}
	if fields[TagDateTimeOriginal] != "2017:11:23 23:34:26" {
		t.Errorf("DateTimeOriginal = %q", fields[TagDateTimeOriginal])
	}
}
