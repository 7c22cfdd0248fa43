// Package redis implements a Redis pub/sub bus for assembled frames.
//
// Publishes each frame as a raw binary message to a configurable channel.
// Retries with exponential backoff on connection errors.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pithecene-io/chisel/bus"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "chisel:frames"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis frame bus.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: chisel:frames).
	Channel string
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 3).
	Retries int
	// MaxPayload is the channel's payload ceiling (default bus.DefaultMaxPayload).
	MaxPayload int
}

// Bus publishes frames via Redis PUBLISH.
type Bus struct {
	config Config
	client *goredis.Client
}

// New creates a Redis frame bus from the given config.
// Returns an error if the URL is empty or invalid.
func New(cfg Config) (*Bus, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis bus requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis bus: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
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
		client: goredis.NewClient(opts),
	}, nil
}

// Publish sends the frame as a binary PUBLISH to the configured channel.
// Retries with exponential backoff on failures.
func (b *Bus) Publish(ctx context.Context, frame []byte) error {
	if len(frame) > b.config.MaxPayload {
		return fmt.Errorf("redis: %d byte frame, limit %d: %w",
			len(frame), b.config.MaxPayload, bus.ErrFrameTooLarge)
	}

	var lastErr error
	// attempts = 1 initial + retries
	attempts := 1 + b.config.Retries

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("redis: context canceled: %w", err)
		}

		// Exponential backoff before retries (not before first attempt)
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("redis: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		publishCtx, cancel := context.WithTimeout(ctx, b.config.Timeout)
		lastErr = b.client.Publish(publishCtx, b.config.Channel, frame).Err()
		cancel()

		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("redis: failed after %d attempts: %w", attempts, lastErr)
}

// MaxPayload returns the configured payload ceiling.
func (b *Bus) MaxPayload() int { return b.config.MaxPayload }

// Close releases bus resources.
func (b *Bus) Close() error {
	return b.client.Close()
}

// Verify Bus implements the bus interface.
var _ bus.Bus = (*Bus)(nil)
