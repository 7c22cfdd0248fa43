// Package bus defines the outbound boundary for assembled frames.
//
// A Bus is any channel with a maximum payload size: a pub/sub topic, an
// HTTP endpoint, an in-memory loopback. Callers size their Chunker from
// MaxPayload so every assembled frame fits a single publish.
package bus

import (
	"context"
	"errors"
)

// DefaultMaxPayload is the payload ceiling adapters assume when the
// channel does not declare one.
const DefaultMaxPayload = 64 * 1024

// ErrFrameTooLarge indicates a frame exceeding the bus payload limit.
var ErrFrameTooLarge = errors.New("frame exceeds bus payload limit")

// Bus publishes frames to a size-limited channel.
// Implementations are not required to be safe for concurrent publishes.
type Bus interface {
	// Publish sends one frame. Must respect context cancellation and
	// deadlines, and must fail with ErrFrameTooLarge (wrapped) for frames
	// over MaxPayload.
	Publish(ctx context.Context, frame []byte) error

	// MaxPayload returns the channel's maximum payload size in bytes.
	MaxPayload() int

	// Close releases bus resources.
	Close() error
}
