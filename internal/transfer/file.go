package transfer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// FileTransferer copies artifacts from file:// URLs, e.g. a mounted mirror.
type FileTransferer struct{}

// NewFileTransferer creates a file transferer.
func NewFileTransferer() *FileTransferer {
	return &FileTransferer{}
}

// Fetch copies the file referenced by rawURL to dest.
func (t *FileTransferer) Fetch(ctx context.Context, rawURL, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := filePath(rawURL)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	part := dest + partSuffix
	out, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", part, err)
	}

	n, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(part)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err := os.Rename(part, dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", part, err)
	}

	slog.Info("Artifact copied successfully", "source", src, "path", dest, "bytes", n)
	return nil
}

func filePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	p := u.Path
	// file:///C:/dir/file parses to "/C:/dir/file".
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = strings.TrimPrefix(p, "/")
	}

	return filepath.FromSlash(p), nil
}
