// Package chunk implements chunk boundary arithmetic and per-chunk
// transfer status tracking for payloads split across size-limited frames.
//
// This file defines sentinel errors and the contract-violation error type.
// Callers classify failures with errors.Is/errors.As rather than string
// matching.
package chunk

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrInvalidMetaSize indicates a buffer too short to hold a meta field.
	// The input must be treated as truncated; do not proceed with decoding.
	ErrInvalidMetaSize = errors.New("meta field too short")

	// ErrRetryOverflow indicates a retry counter at its maximum value.
	// The caller should stop retrying the chunk and escalate.
	ErrRetryOverflow = errors.New("retry counter overflow")

	// ErrFrameSizeTooSmall indicates a frame size that leaves no room for
	// chunk data after the header overhead.
	ErrFrameSizeTooSmall = errors.New("max frame size too small")

	// ErrChunkMismatch indicates an acknowledgement for a chunk other than
	// the one being tracked. See MismatchError.
	ErrChunkMismatch = errors.New("chunk number mismatch")
)

// MismatchError reports an acknowledgement that named a chunk number other
// than the tracked one. It signals a logic error in the caller (acking the
// wrong chunk), not a recoverable transfer fault, and is deliberately a
// distinct type from the sentinel errors above.
type MismatchError struct {
	// Tracked is the chunk number currently tracked, or -1 if no send
	// was recorded yet.
	Tracked int
	// Acked is the chunk number the acknowledgement named.
	Acked int
}

func (e *MismatchError) Error() string {
	if e.Tracked < 0 {
		return fmt.Sprintf("chunk number mismatch: no chunk tracked, received ack for %d", e.Acked)
	}
	return fmt.Sprintf("chunk number mismatch: tracking %d, received ack for %d", e.Tracked, e.Acked)
}

// Is reports whether the error matches the ErrChunkMismatch sentinel.
func (e *MismatchError) Is(target error) bool {
	return target == ErrChunkMismatch
}

// IsViolation reports whether err is a contract violation (a MismatchError)
// as opposed to one of the recoverable error kinds.
func IsViolation(err error) bool {
	var mismatch *MismatchError
	return errors.As(err, &mismatch)
}
