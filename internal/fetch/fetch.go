// Package fetch provides the shared HTTP client used for acquisition:
// webpage fetches, direct file downloads, and the search oracle all go
// through the same retrying client.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultUserAgent is the browser User-Agent sent on all acquisition requests
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// MaxPageBytes caps how much of a webpage body is read (2 MiB)
const MaxPageBytes = 2 << 20

// Client wraps a retrying HTTP client with acquisition defaults
type Client struct {
	http *retryablehttp.Client
}

// New creates a Client with retry/backoff defaults and the given timeout
func New(timeout time.Duration) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Timeout = timeout
	rc.RetryMax = 3
	rc.Logger = nil
	return &Client{http: rc}
}

// StandardClient exposes the underlying *http.Client for libraries that
// take one (readability URL resolution, SDK transports).
func (c *Client) StandardClient() *http.Client {
	return c.http.StandardClient()
}

// Get fetches a URL and returns at most maxBytes of the body.
// truncated reports whether the cap cut the body short.
func (c *Client) Get(ctx context.Context, url string, maxBytes int64) (body []byte, truncated bool, err error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, false, err
	}

	// One extra byte tells us whether the body continued past the cap
	var one [1]byte
	if n, _ := resp.Body.Read(one[:]); n > 0 {
		truncated = true
	}

	return body, truncated, nil
}

// DownloadFile streams a URL to the given path. The copy loop checks for
// context cancellation between chunks so a dead analysis does not keep
// pulling bytes.
func (c *Client) DownloadFile(ctx context.Context, url, outputPath string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, 32*1024)
	var written int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return writeErr
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	slog.Debug("downloaded file", "url", url, "path", outputPath, "bytes", written)
	return nil
}
