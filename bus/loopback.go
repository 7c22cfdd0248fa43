package bus

import (
	"context"
	"fmt"
	"sync"
)

// Loopback is an in-memory bus that records published frames. It backs
// tests and the local reassembly path; frames are copied on publish so
// later caller mutation cannot corrupt the record.
type Loopback struct {
	mu sync.Mutex

	maxPayload int
	frames     [][]byte
	closed     bool

	// ErrOnPublish, if non-nil, is returned by every Publish.
	ErrOnPublish error
}

// NewLoopback creates a Loopback with the given payload ceiling.
// Non-positive values fall back to DefaultMaxPayload.
func NewLoopback(maxPayload int) *Loopback {
	if maxPayload <= 0 {
		maxPayload = DefaultMaxPayload
	}
	return &Loopback{maxPayload: maxPayload}
}

// Publish records the frame.
func (l *Loopback) Publish(ctx context.Context, frame []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("loopback: context canceled: %w", err)
	}
	if l.ErrOnPublish != nil {
		return l.ErrOnPublish
	}
	if len(frame) > l.maxPayload {
		return fmt.Errorf("loopback: %d byte frame, limit %d: %w", len(frame), l.maxPayload, ErrFrameTooLarge)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("loopback: publish on closed bus")
	}
	l.frames = append(l.frames, append([]byte(nil), frame...))
	return nil
}

// MaxPayload returns the configured payload ceiling.
func (l *Loopback) MaxPayload() int { return l.maxPayload }

// Close marks the bus closed; later publishes fail.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Frames returns the recorded frames in publish order.
func (l *Loopback) Frames() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, len(l.frames))
	copy(out, l.frames)
	return out
}

// Verify Loopback implements the bus interface.
var _ Bus = (*Loopback)(nil)
