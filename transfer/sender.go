// Package transfer drives a chunked payload across a bus: it publishes
// frames in order, tracks a per-chunk status alongside each transmission,
// retransmits on negative acknowledgement, and records outcomes.
//
// A Sender is single-use and single-goroutine, matching the one-transfer
// lifecycle of the chunk status machinery it wraps.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pithecene-io/chisel/bus"
	"github.com/pithecene-io/chisel/chunk"
	"github.com/pithecene-io/chisel/log"
	"github.com/pithecene-io/chisel/metrics"
	"github.com/pithecene-io/chisel/wire"
)

// DefaultRetryBudget is the per-chunk retransmission cap applied when the
// config leaves it unset. Kept well below the hard uint8 ceiling of the
// chunk retry counter.
const DefaultRetryBudget = 8

// Sentinel errors for transfer-level failures.
var (
	// ErrRetriesExhausted indicates a chunk that used up its retry budget.
	// The transfer should be abandoned.
	ErrRetriesExhausted = errors.New("retry budget exhausted")

	// ErrUnknownChunk indicates an acknowledgement or retransmission
	// request for a chunk that was never sent.
	ErrUnknownChunk = errors.New("chunk not in flight")

	// ErrTopicMismatch indicates an acknowledgement for a different topic.
	ErrTopicMismatch = errors.New("ack topic mismatch")
)

// Config tunes a Sender.
type Config struct {
	// RetryBudget caps retransmissions per chunk (default DefaultRetryBudget).
	RetryBudget uint8
	// Logger receives transfer diagnostics (default: discard).
	Logger *log.Logger
	// Metrics receives transfer counters (optional).
	Metrics *metrics.Collector
}

// Sender publishes a payload's frames to a bus and tracks each chunk's
// send/ack lifecycle.
type Sender struct {
	chunker   *chunk.Chunker
	bus       bus.Bus
	budget    uint8
	logger    *log.Logger
	collector *metrics.Collector
	statuses  map[int]*chunk.Status
}

// NewSender creates a Sender over the given chunker and bus. Fails when
// the chunker's frames cannot fit the bus payload limit.
func NewSender(c *chunk.Chunker, b bus.Bus, cfg Config) (*Sender, error) {
	if c.MaxFrameSize() > b.MaxPayload() {
		return nil, fmt.Errorf("max frame size %d exceeds bus payload limit %d: %w",
			c.MaxFrameSize(), b.MaxPayload(), bus.ErrFrameTooLarge)
	}
	if cfg.RetryBudget == 0 {
		cfg.RetryBudget = DefaultRetryBudget
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	return &Sender{
		chunker:   c,
		bus:       b,
		budget:    cfg.RetryBudget,
		logger:    cfg.Logger,
		collector: cfg.Metrics,
		statuses:  make(map[int]*chunk.Status),
	}, nil
}

// SendAll publishes every remaining frame in sequence, recording a send
// per chunk. A publish failure stops the sweep; the failed chunk is not
// marked sent and a later SendAll resumes from it.
func (s *Sender) SendAll(ctx context.Context) error {
	for {
		index := s.chunker.Cursor()
		frame, ok := wire.Frame(s.chunker, index)
		if !ok {
			return nil
		}

		if err := s.bus.Publish(ctx, frame); err != nil {
			s.collector.IncPublishFailure()
			s.logger.Error("frame publish failed", map[string]any{
				"index": index,
				"error": err.Error(),
			})
			return fmt.Errorf("publish chunk %d: %w", index, err)
		}

		// Consume the chunk only after it is on the bus, so a failed
		// publish leaves the cursor on the chunk for the next sweep.
		s.chunker.Next()

		status := chunk.NewStatus(s.logger.Raw())
		status.ToSend(index)
		s.statuses[index] = status
		s.collector.IncFramePublished()
		s.logger.Debug("frame published", map[string]any{
			"index": index,
			"bytes": len(frame),
		})
	}
}

// Ack records a positive acknowledgement for the chunk at index.
func (s *Sender) Ack(index int) error {
	status, ok := s.statuses[index]
	if !ok {
		s.collector.IncViolation()
		return fmt.Errorf("ack for chunk %d: %w", index, ErrUnknownChunk)
	}

	if err := status.ToReceived(index); err != nil {
		if chunk.IsViolation(err) {
			s.collector.IncViolation()
		}
		return err
	}

	s.collector.IncChunkAcked()
	s.logger.Debug("chunk acknowledged", map[string]any{"index": index})
	return nil
}

// Nack retransmits the chunk at index after a negative acknowledgement or
// timeout. Fails with ErrRetriesExhausted once the chunk's retry budget is
// spent, or with the chunk's own overflow error at the hard counter
// ceiling; either way the caller should abandon the transfer.
func (s *Sender) Nack(ctx context.Context, index int) error {
	status, ok := s.statuses[index]
	if !ok {
		return fmt.Errorf("nack for chunk %d: %w", index, ErrUnknownChunk)
	}

	if status.Retry() >= s.budget {
		s.collector.IncRetryOverflow()
		return fmt.Errorf("chunk %d after %d retries: %w", index, status.Retry(), ErrRetriesExhausted)
	}

	retry, err := status.IncreaseRetry()
	if err != nil {
		s.collector.IncRetryOverflow()
		return fmt.Errorf("chunk %d: %w", index, err)
	}

	frame, ok := wire.Frame(s.chunker, index)
	if !ok {
		return fmt.Errorf("nack for chunk %d: %w", index, ErrUnknownChunk)
	}
	if err := s.bus.Publish(ctx, frame); err != nil {
		s.collector.IncPublishFailure()
		return fmt.Errorf("republish chunk %d: %w", index, err)
	}

	s.collector.IncRetry()
	s.collector.IncFramePublished()
	s.logger.Warn("frame retransmitted", map[string]any{
		"index": index,
		"retry": retry,
	})
	return nil
}

// HandleAck applies a decoded acknowledgement envelope: a positive ack
// marks the chunk received, a negative one triggers a retransmission.
func (s *Sender) HandleAck(ctx context.Context, a *wire.Ack) error {
	if a.Topic != s.chunker.Topic() {
		return fmt.Errorf("ack for topic %#x on transfer of topic %#x: %w",
			a.Topic, s.chunker.Topic(), ErrTopicMismatch)
	}
	if a.OK {
		return s.Ack(a.Index)
	}
	return s.Nack(ctx, a.Index)
}

// Outstanding returns the indexes of chunks sent but not yet acknowledged,
// in ascending order.
func (s *Sender) Outstanding() []int {
	var out []int
	for index, status := range s.statuses {
		if status.Session() == chunk.SessionSent {
			out = append(out, index)
		}
	}
	sort.Ints(out)
	return out
}

// Done reports whether every chunk of the payload has been acknowledged.
func (s *Sender) Done() bool {
	total := s.chunker.Count()
	received := 0
	for _, status := range s.statuses {
		if status.Session() == chunk.SessionReceived {
			received++
		}
	}
	return received == total
}
