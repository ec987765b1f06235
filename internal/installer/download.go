package installer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"binfetch/internal/logger"
)

// downloadChunkSize is the fixed buffer used when streaming a response body
// to disk, bounding peak memory per download no matter how large the
// archive is.
const downloadChunkSize = 8192

// Downloader fetches a URL to a file on disk. One Downloader is shared by a
// whole run so the underlying client reuses connections across the matrix.
type Downloader struct {
	client    *http.Client
	userAgent string
}

// NewDownloader returns a Downloader whose requests are bounded by timeout
// and carry the given User-Agent header.
func NewDownloader(timeout time.Duration, userAgent string) *Downloader {
	return &Downloader{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch streams the resource at url into destPath. Any failure (network
// error, timeout, non-2xx status) comes back as an error; the file at
// destPath must then be treated as invalid, and the caller's error path is
// responsible for removing it. No retries are attempted.
func (d *Downloader) Fetch(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Error("[ERROR] Failed to close destination file: %v\n", cerr)
		}
	}()

	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(out, resp.Body, buf); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}

	logger.Debug("[DEBUG] Downloaded %s to %s\n", url, destPath)
	return nil
}
