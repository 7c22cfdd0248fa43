package chunk

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Session is the last recorded phase of a chunk transfer.
type Session int

const (
	// SessionNone means no send has been recorded yet.
	SessionNone Session = iota
	// SessionSent means the chunk was handed to the transport.
	SessionSent
	// SessionReceived means the peer acknowledged the chunk.
	SessionReceived
)

// String returns the session name for logs and error messages.
func (s Session) String() string {
	switch s {
	case SessionSent:
		return "sent"
	case SessionReceived:
		return "received"
	default:
		return "none"
	}
}

// Status is the state machine for one chunk transfer: which chunk number
// is in flight, whether it was last sent or received, and how many times
// it was retried. One Status per logical chunk transfer; create it fresh
// and discard it once the chunk is acknowledged or abandoned.
//
// Not safe for concurrent use.
type Status struct {
	logger  *zap.Logger
	number  int
	session Session
	retry   uint8
}

// NewStatus creates a Status in the unset state. A nil logger disables
// the retry diagnostics.
func NewStatus(logger *zap.Logger) *Status {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Status{logger: logger}
}

// ToSend records that sending of chunk number begins (or restarts). It
// always succeeds and overwrites any prior state, resetting the retry
// counter.
func (s *Status) ToSend(number int) {
	s.number = number
	s.session = SessionSent
	s.retry = 0
}

// ToReceived records an acknowledgement for chunk number. Acknowledging a
// chunk other than the tracked one is a caller logic error and fails with
// a MismatchError, leaving the state untouched. On match the retry counter
// resets.
func (s *Status) ToReceived(number int) error {
	if s.session == SessionNone || s.number != number {
		tracked := -1
		if s.session != SessionNone {
			tracked = s.number
		}
		return &MismatchError{Tracked: tracked, Acked: number}
	}
	s.session = SessionReceived
	s.retry = 0
	return nil
}

// IncreaseRetry increments the retry counter and returns the new value.
// The counter saturates: at the maximum it fails with ErrRetryOverflow
// without mutating, it never wraps.
func (s *Status) IncreaseRetry() (uint8, error) {
	s.logger.Debug("retry counter increase", zap.Uint8("retry", s.retry))
	if s.retry == math.MaxUint8 {
		return 0, fmt.Errorf("retry counter at %d: %w", s.retry, ErrRetryOverflow)
	}
	s.retry++
	return s.retry, nil
}

// Number returns the tracked chunk number; ok is false before the first
// send.
func (s *Status) Number() (number int, ok bool) {
	if s.session == SessionNone {
		return 0, false
	}
	return s.number, true
}

// Session returns the last recorded phase.
func (s *Status) Session() Session { return s.session }

// Retry returns the current retry count.
func (s *Status) Retry() uint8 { return s.retry }
