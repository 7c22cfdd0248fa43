// Package wire assembles and re-parses the frames callers put on a
// size-limited channel.
//
// The first frame of a transfer carries the one-time header (topic + total
// payload length); every later frame carries a rolling 8-byte field holding
// the number of payload bytes still outstanding, this frame's data
// included. A receiver learns the total from the first frame and
// re-synchronizes on the rolling field thereafter.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pithecene-io/chisel/chunk"
)

// FrameErrorKind classifies frame consumption errors.
type FrameErrorKind int

const (
	// FrameErrorTruncated indicates a frame too short for its prefix.
	FrameErrorTruncated FrameErrorKind = iota
	// FrameErrorLengthMismatch indicates a rolling length field that
	// disagrees with the bytes outstanding.
	FrameErrorLengthMismatch
	// FrameErrorAfterComplete indicates a frame consumed after the
	// transfer already completed.
	FrameErrorAfterComplete
	// FrameErrorDecode indicates a malformed control envelope.
	FrameErrorDecode
)

// FrameError represents a frame consumption error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// Frame assembles the complete wire frame for the chunk at index: the
// header for chunk 0, the rolling remaining-length field for every later
// chunk, followed by the chunk data. Returns ok=false past the payload.
// Pure; never touches the chunker cursor.
func Frame(c *chunk.Chunker, index int) ([]byte, bool) {
	data, ok := c.Chunk(index)
	if !ok {
		return nil, false
	}
	return assemble(c, index, data), true
}

// NextFrame assembles the frame at the chunker cursor and advances it.
func NextFrame(c *chunk.Chunker) (frame []byte, index int, ok bool) {
	data, index, ok := c.Next()
	if !ok {
		return nil, 0, false
	}
	return assemble(c, index, data), index, true
}

func assemble(c *chunk.Chunker, index int, data []byte) []byte {
	if index == 0 {
		return append(c.Header(), data...)
	}
	frame := make([]byte, chunk.MetaSize+len(data))
	remaining := c.Len() - c.Offset(index)
	binary.LittleEndian.PutUint64(frame[:chunk.MetaSize], uint64(remaining))
	copy(frame[chunk.MetaSize:], data)
	return frame
}

// Reassembler consumes frames in production order and rebuilds the
// payload. The topic and total length are learned from the first frame;
// every later frame's rolling length field is validated against the bytes
// still outstanding.
//
// Not safe for concurrent use.
type Reassembler struct {
	topic   byte
	total   uint64
	buf     []byte
	started bool
}

// NewReassembler creates an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Consume ingests the next frame. Errors are *FrameError classified by
// kind; a failed Consume leaves the accumulated state untouched.
func (r *Reassembler) Consume(frame []byte) error {
	if r.Done() {
		return &FrameError{
			Kind: FrameErrorAfterComplete,
			Msg:  fmt.Sprintf("transfer of %d bytes already complete", r.total),
		}
	}

	if !r.started {
		if len(frame) < chunk.HeaderSize {
			return &FrameError{
				Kind: FrameErrorTruncated,
				Msg:  fmt.Sprintf("first frame needs at least %d header bytes, got %d", chunk.HeaderSize, len(frame)),
			}
		}
		total, err := chunk.Meta(frame[1:])
		if err != nil {
			return &FrameError{Kind: FrameErrorTruncated, Msg: "header length field", Err: err}
		}
		data := frame[chunk.HeaderSize:]
		if uint64(len(data)) > total {
			return &FrameError{
				Kind: FrameErrorLengthMismatch,
				Msg:  fmt.Sprintf("first frame carries %d data bytes for a %d byte payload", len(data), total),
			}
		}
		r.topic = frame[0]
		r.total = total
		r.buf = append(r.buf, data...)
		r.started = true
		return nil
	}

	remaining, err := chunk.Meta(frame)
	if err != nil {
		return &FrameError{Kind: FrameErrorTruncated, Msg: "rolling length field", Err: err}
	}
	outstanding := r.total - uint64(len(r.buf))
	if remaining != outstanding {
		return &FrameError{
			Kind: FrameErrorLengthMismatch,
			Msg:  fmt.Sprintf("frame declares %d bytes remaining, %d outstanding", remaining, outstanding),
		}
	}
	data := frame[chunk.MetaSize:]
	if uint64(len(data)) > outstanding {
		return &FrameError{
			Kind: FrameErrorLengthMismatch,
			Msg:  fmt.Sprintf("frame carries %d data bytes, only %d outstanding", len(data), outstanding),
		}
	}
	r.buf = append(r.buf, data...)
	return nil
}

// Done reports whether every payload byte has arrived. An announced empty
// payload is complete after its header frame.
func (r *Reassembler) Done() bool {
	return r.started && uint64(len(r.buf)) == r.total
}

// Topic returns the topic tag learned from the first frame.
func (r *Reassembler) Topic() (byte, bool) {
	return r.topic, r.started
}

// Total returns the payload length announced by the first frame.
func (r *Reassembler) Total() (uint64, bool) {
	return r.total, r.started
}

// Bytes returns the reassembled payload once complete.
func (r *Reassembler) Bytes() ([]byte, error) {
	if !r.Done() {
		return nil, errors.New("transfer incomplete")
	}
	return r.buf, nil
}
