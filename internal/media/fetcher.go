// Package media retrieves remote report media and encodes it for the
// analysis service.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mr1hm/go-report-alerts/internal/fault"
)

// Fetcher downloads media over HTTP and base64-encodes it.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewFetcher creates a fetcher. maxBytes caps the raw payload size; anything
// larger fails with fault.ErrPayloadTooLarge before it is fully buffered.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxBytes,
	}
}

// FetchBase64 retrieves the full resource body and returns it base64-encoded.
func (f *Fetcher) FetchBase64(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: not an absolute http(s) URL: %q", fault.ErrInvalidInput, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", fault.ErrUpstreamUnavailable, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching media: %v", fault.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status code: %d - status: %s", fault.ErrUpstreamUnavailable, resp.StatusCode, resp.Status)
	}

	if resp.ContentLength > f.maxBytes {
		return "", fmt.Errorf("%w: content length %d exceeds cap %d", fault.ErrPayloadTooLarge, resp.ContentLength, f.maxBytes)
	}

	// Read one byte past the cap so an unreported oversize body is detected
	// without buffering the whole thing.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading media body: %v", fault.ErrUpstreamUnavailable, err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", fmt.Errorf("%w: media exceeds cap %d", fault.ErrPayloadTooLarge, f.maxBytes)
	}

	return base64.StdEncoding.EncodeToString(body), nil
}
