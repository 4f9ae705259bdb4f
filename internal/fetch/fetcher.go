// Package fetch provides the shared HTTP client used by every upstream
// source: encyclopedia, scrape target, media API and image downloads.
//
// Each call carries its own timeout, so a hung upstream fails one tier and the
// resolver chain moves on.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single request when the caller sets none.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response is read into memory.
const maxBodyBytes = 16 << 20

// ErrBodyTooLarge is returned when a response exceeds the body cap. The
// caller never sees a truncated body.
var ErrBodyTooLarge = errors.New("response body too large")

const userAgent = "RetroDay/1.0 (https://github.com/abelbrown/retroday)"

// StatusError is returned for any non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.Code, http.StatusText(e.Code))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Response is a fully read HTTP response body.
type Response struct {
	Body        []byte
	ContentType string
}

// Fetcher performs GET requests with a per-request timeout.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	maxBody int64
}

// NewFetcher creates a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		maxBody: maxBodyBytes,
	}
}

// NewFetcherWithClient wraps an existing client (for testing).
func NewFetcherWithClient(c *http.Client, timeout time.Duration) *Fetcher {
	f := NewFetcher(timeout)
	f.client = c
	return f
}

// Get retrieves url and returns the body. Non-200 responses return a
// *StatusError and bodies over the cap return ErrBodyTooLarge. Respects
// context cancellation.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (Response, error) {
	if ctx.Err() != nil {
		return Response{}, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		// *url.Error embeds the full URL, query credentials included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return Response{}, fmt.Errorf("failed to fetch %s: %w", redact(rawURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return Response{}, &StatusError{URL: redact(rawURL), Code: resp.StatusCode}
	}

	if resp.ContentLength > f.maxBody {
		return Response{}, fmt.Errorf("fetch %s: %w (%d bytes)", redact(rawURL), ErrBodyTooLarge, resp.ContentLength)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return Response{}, fmt.Errorf("fetch %s: %w", redact(rawURL), ErrBodyTooLarge)
	}

	return Response{Body: body, ContentType: resp.Header.Get("Content-Type")}, nil
}

// HashString creates a short deterministic hash of s for use as an ID.
func HashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:8]) // 16 character hex string
}

// redact drops the query string so API keys never reach logs or errors.
func redact(rawURL string) string {
	if base, _, found := strings.Cut(rawURL, "?"); found {
		return base + "?…"
	}
	return rawURL
}
