// Package fetcher downloads and parses remote datasets: HTTP with retry and
// rate limiting, ZIP extraction, and streaming CSV decoding.
package fetcher

import (
	"context"
	"io"
)

// Fetcher retrieves remote resources.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL to a local path, reporting progress on
	// the console when the size is known. Returns bytes written.
	DownloadToFile(ctx context.Context, url, path string) (int64, error)
}
