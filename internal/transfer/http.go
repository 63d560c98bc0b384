package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// HTTPTransferer downloads over HTTP(S). Interrupted transfers resume from
// the partial file with a Range request on the next attempt.
type HTTPTransferer struct {
	client *http.Client
	opts   Options
}

// NewHTTPTransferer creates an HTTP transferer.
func NewHTTPTransferer(opts Options) *HTTPTransferer {
	return &HTTPTransferer{
		client: &http.Client{},
		opts:   opts.withDefaults(),
	}
}

// NewHTTPTransfererWithClient creates an HTTP transferer with a custom client.
func NewHTTPTransfererWithClient(client *http.Client, opts Options) *HTTPTransferer {
	return &HTTPTransferer{
		client: client,
		opts:   opts.withDefaults(),
	}
}

// Fetch downloads rawURL to dest, retrying transient failures.
func (t *HTTPTransferer) Fetch(ctx context.Context, rawURL, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	part := dest + partSuffix

	var lastErr error
	for attempt := range t.opts.MaxRetries {
		if attempt > 0 {
			slog.Info("Retrying download", "url", rawURL, "attempt", attempt+1, "last_error", lastErr)

			select {
			case <-ctx.Done():
				return fmt.Errorf("download canceled: %w", ctx.Err())
			case <-time.After(t.opts.RetryDelay):
			}
		} else {
			slog.Info("Downloading artifact", "url", rawURL, "path", dest)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
		written, err := t.fetchOnce(attemptCtx, rawURL, part)
		deadline := attemptCtx.Err() == context.DeadlineExceeded
		cancel()

		if err == nil {
			if err := os.Rename(part, dest); err != nil {
				return fmt.Errorf("failed to move %s into place: %w", part, err)
			}

			slog.Info("Artifact downloaded successfully", "url", rawURL, "path", dest, "bytes", written, "attempt", attempt+1)
			return nil
		}

		lastErr = err
		slog.Error("Failed to download artifact", "url", rawURL, "path", dest, "attempt", attempt+1, "error", err)

		if ctx.Err() != nil {
			return fmt.Errorf("download canceled: %w", err)
		}
		if deadline {
			slog.Warn("Download timed out", "url", rawURL, "attempt", attempt+1)
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			return err
		}
	}

	return lastErr
}

// fetchOnce performs a single request, appending to part when the server
// honors the range request.
func (t *HTTPTransferer) fetchOnce(ctx context.Context, rawURL, part string) (int64, error) {
	var offset int64
	if info, err := os.Stat(part); err == nil {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	switch {
	case resp.StatusCode == http.StatusOK:
		flags |= os.O_TRUNC
		offset = 0

	case resp.StatusCode == http.StatusPartialContent && offset > 0:
		start, ok := contentRangeStart(resp.Header.Get("Content-Range"))
		if !ok || start != offset {
			slog.Warn("Server resumed at an unexpected offset, restarting download", "path", part, "start", start, "expected", offset)
			return t.restart(ctx, rawURL, part, resp)
		}
		flags |= os.O_APPEND

	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && offset > 0:
		// A partial file is complete only when it is exactly the remote size.
		if total, ok := contentRangeTotal(resp.Header.Get("Content-Range")); ok && total == offset {
			slog.Debug("Partial file already complete", "path", part, "bytes", offset)
			return offset, nil
		}

		slog.Warn("Partial file does not match remote size, restarting download", "path", part, "bytes", offset)
		return t.restart(ctx, rawURL, part, resp)

	default:
		return 0, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	f, err := os.OpenFile(part, flags, 0o644)
	if err != nil {
		return 0, err
	}

	n, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		return offset + n, copyErr
	}
	if closeErr != nil {
		return offset + n, closeErr
	}

	return offset + n, nil
}

// restart discards part and downloads from the first byte. resp is closed
// before the new request is made.
func (t *HTTPTransferer) restart(ctx context.Context, rawURL, part string, resp *http.Response) (int64, error) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := os.Remove(part); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("failed to discard partial file: %w", err)
	}

	return t.fetchOnce(ctx, rawURL, part)
}

// contentRangeTotal parses the complete length of a "bytes */total" or
// "bytes start-end/total" header. An unknown length ("*") is not ok.
func contentRangeTotal(header string) (int64, bool) {
	spec, ok := strings.CutPrefix(header, "bytes ")
	if !ok {
		return 0, false
	}

	_, totalStr, ok := strings.Cut(spec, "/")
	if !ok {
		return 0, false
	}

	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil {
		return 0, false
	}

	return total, true
}

// contentRangeStart parses the first byte position of a "bytes start-end/total" header.
func contentRangeStart(header string) (int64, bool) {
	spec, ok := strings.CutPrefix(header, "bytes ")
	if !ok {
		return 0, false
	}

	startStr, _, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, false
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return 0, false
	}

	return start, true
}
