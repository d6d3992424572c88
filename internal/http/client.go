package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultUserAgent is sent when NewClient is given an empty agent.
const DefaultUserAgent = "spotify-enrich/1.0"

// Client wraps net/http with a User-Agent and timeout.
//
// Example usage:
//
//	client := NewClient("", 0)
//
//	resp, err := client.Do(ctx, http.MethodGet, "https://api.spotify.com/v1/tracks?ids=...", header)
//	if resp.StatusCode == http.StatusTooManyRequests {
//	    wait := resp.Header.Get("Retry-After")
//	}
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client. A zero timeout means 60 seconds.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// StatusError is returned by Get for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Status, e.URL)
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Do performs a request and reads the whole body. The status code is not
// checked. Transport and read failures are returned as errors.
func (c *Client) Do(ctx context.Context, method, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading response from %s", url)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// Get performs a GET request and returns the response body as bytes.
// Non-200 responses yield a *StatusError.
//
// Example:
//
//	data, err := client.Get(ctx, "https://i.scdn.co/image/ab67616d0000b273...")
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}
	return resp.Body, nil
}

// DownloadFile downloads a file to the specified path with optional progress callback.
//
// The content is streamed to a temporary file next to destPath and renamed
// into place once complete, so a failed download leaves nothing behind.
// Pass a nil onProgress to disable progress tracking.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	file, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return err
	}
	tmp := file.Name()
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tmp)
		}
	}()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	if _, err = io.Copy(writer, resp.Body); err != nil {
		return errors.Wrapf(err, "downloading %s", url)
	}
	if err = file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, destPath)
}

// DownloadBytes downloads a small file, such as an image, into memory.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}
