// Package webhook implements an HTTP POST bus for assembled frames.
//
// Publishes each frame as a binary POST to a configurable URL.
// Retries with exponential backoff on transient failures.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pithecene-io/chisel/bus"
	"github.com/pithecene-io/chisel/iox"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the webhook bus.
type Config struct {
	// URL is the HTTP endpoint to POST to (required).
	URL string
	// Headers are custom HTTP headers added to each request.
	Headers map[string]string
	// Timeout is the per-request timeout (default 10s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 3).
	Retries int
	// MaxPayload is the channel's payload ceiling (default bus.DefaultMaxPayload).
	MaxPayload int
}

// Bus publishes frames via HTTP POST.
type Bus struct {
	config Config
	client *http.Client
}

// New creates a webhook bus from the given config.
// Returns an error if the URL is empty.
func New(cfg Config) (*Bus, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook bus requires a URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.MaxPayload <= 0 {
		cfg.MaxPayload = bus.DefaultMaxPayload
	}

	return &Bus{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Publish sends the frame as a binary POST request.
// Retries with exponential backoff on 5xx responses and network errors.
// 4xx responses are non-retriable and fail immediately.
func (b *Bus) Publish(ctx context.Context, frame []byte) error {
	if len(frame) > b.config.MaxPayload {
		return fmt.Errorf("webhook: %d byte frame, limit %d: %w",
			len(frame), b.config.MaxPayload, bus.ErrFrameTooLarge)
	}

	var lastErr error
	// attempts = 1 initial + retries
	attempts := 1 + b.config.Retries

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("webhook: context canceled: %w", err)
		}

		// Exponential backoff before retries (not before first attempt)
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("webhook: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = b.doRequest(ctx, frame)
		if lastErr == nil {
			return nil
		}

		// 4xx errors are non-retriable — stop immediately
		var statusErr *StatusError
		if errors.As(lastErr, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500 {
			return fmt.Errorf("webhook: non-retriable error: %w", lastErr)
		}
	}

	return fmt.Errorf("webhook: failed after %d attempts: %w", attempts, lastErr)
}

// StatusError is returned for non-2xx HTTP responses.
// Wrapping the status code allows callers to distinguish retriable (5xx)
// from non-retriable (4xx) failures.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// doRequest performs a single HTTP POST and returns nil on 2xx.
func (b *Bus) doRequest(ctx context.Context, frame []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.config.URL, bytes.NewReader(frame))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	for k, v := range b.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}

	return nil
}

// MaxPayload returns the configured payload ceiling.
func (b *Bus) MaxPayload() int { return b.config.MaxPayload }

// Close releases bus resources.
func (b *Bus) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

// Verify Bus implements the bus interface.
var _ bus.Bus = (*Bus)(nil)
