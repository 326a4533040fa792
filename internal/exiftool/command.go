package exiftool

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/fpang/takeout-exif/internal/exifdate"
	"github.com/rs/zerolog/log"
)

// Command invokes a fresh exiftool process for every call.
type Command struct {
	Binary  string
	Timeout time.Duration
}

// Ensure Command implements Tool
var _ Tool = (*Command)(nil)

// NewCommand returns a Command backend. An empty binary means DefaultBinary from PATH.
func NewCommand(binary string, timeout time.Duration) *Command {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Command{Binary: binary, Timeout: timeout}
}

// ReadFields runs "exiftool -n -S -Tag1 -Tag2 ... file" and parses the
// "Tag: value" lines. Tags absent from the file are absent from the map.
func (c *Command) ReadFields(ctx context.Context, path string, tags []string) (map[string]string, error) {
	args := make([]string, 0, len(tags)+3)
	args = append(args, "-n", "-S")
	for _, tag := range tags {
		args = append(args, "-"+tag)
	}
	args = append(args, safePath(path))

	out, err := c.run(ctx, "read", path, args)
	if err != nil {
		return nil, err
	}
	return parseShortOutput(out), nil
}

// WriteFields runs "exiftool -overwrite_original -Tag=Value ... file".
func (c *Command) WriteFields(ctx context.Context, path string, fields []Field) error {
	args := make([]string, 0, len(fields)+2)
	args = append(args, "-overwrite_original")
	for _, f := range fields {
		args = append(args, fmt.Sprintf("-%s=%s", f.Name, f.Value))
	}
	args = append(args, safePath(path))

	_, err := c.run(ctx, "write", path, args)
	return err
}

// Close is a no-op; Command holds no process between calls.
func (c *Command) Close() error {
	return nil
}

func (c *Command) run(ctx context.Context, op, path string, args []string) ([]byte, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	log.Debug().Str("op", op).Str("path", path).Strs("args", args).Msg("Running exiftool")

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %s %s after %s", ErrToolTimeout, op, path, c.Timeout)
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %w", ErrToolUnavailable, err)
	}

	return nil, &InvocationError{
		Op:     op,
		Path:   path,
		Stderr: strings.TrimSpace(stderr.String()),
		Err:    err,
	}
}

// parseShortOutput parses exiftool -S output ("Tag: value" per line). When a
// tag appears more than once (several groups), the first real date wins.
func parseShortOutput(out []byte) map[string]string {
	fields := make(map[string]string)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if prev, seen := fields[name]; seen && exifdate.IsSet(prev) {
			continue
		}
		fields[name] = value
	}

	return fields
}
