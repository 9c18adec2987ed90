package installer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
)

// ProgressListener observes a download. Implementations must not affect the transfer.
type ProgressListener interface {
	Start(total int64)
	Update(done, total int64)
	Finish(err error)
}

// Downloader transfers the resource at url into dst
type Downloader interface {
	Download(ctx context.Context, url string, dst io.Writer, listener ProgressListener) (int64, error)
}

// HTTPStatusError is returned for non-2xx responses
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPDownloader downloads over HTTP(S)
type HTTPDownloader struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPDownloader creates a downloader with a clean, non-shared HTTP client
func NewHTTPDownloader(userAgent string) *HTTPDownloader {
	return &HTTPDownloader{
		Client:    cleanhttp.DefaultClient(),
		UserAgent: userAgent,
	}
}

// Download performs a single GET and streams the body into dst
func (d *HTTPDownloader) Download(ctx context.Context, url string, dst io.Writer, listener ProgressListener) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	client := d.Client
	if client == nil {
		client = cleanhttp.DefaultClient()
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}

	total := resp.ContentLength
	if listener == nil {
		written, err := io.Copy(dst, resp.Body)
		if err != nil {
			return written, fmt.Errorf("failed to read %s: %w", url, err)
		}
		return written, nil
	}

	listener.Start(total)
	pw := &progressWriter{total: total, listener: listener}
	written, err := io.Copy(io.MultiWriter(dst, pw), resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", url, err)
	}
	listener.Finish(err)
	return written, err
}

// progressWriter reports bytes passing through to a listener
type progressWriter struct {
	total    int64
	done     int64
	listener ProgressListener
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	pw.done += int64(len(p))
	pw.listener.Update(pw.done, pw.total)
	return len(p), nil
}
