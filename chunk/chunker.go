package chunk

import (
	"encoding/binary"
	"fmt"
)

// Wire layout constants. The length field is fixed at 8 bytes regardless
// of the build's word size so frames are portable across targets.
const (
	// MetaSize is the byte width of the little-endian length field carried
	// by every frame after the first.
	MetaSize = 8
	// HeaderSize is the width of the one-time header: topic byte + length.
	HeaderSize = MetaSize + 1
)

// Chunker is a read-only view over a caller-owned payload that maps chunk
// indexes to byte ranges. The payload is borrowed, never copied or mutated.
//
// The framing model: the first frame on the wire carries the full header
// (HeaderSize bytes), every later frame carries only a rolling MetaSize
// length field. Chunk 0 is charged both overheads, so it holds
// maxFrameSize-MetaSize-HeaderSize data bytes and every later chunk holds
// maxFrameSize-MetaSize; no frame exceeds maxFrameSize.
//
// Chunk is pure and safe to call from any goroutine; Next mutates the
// cursor and needs external synchronization if shared.
type Chunker struct {
	payload      []byte
	maxFrameSize int
	topic        byte
	cursor       int
}

// New creates a Chunker over payload. maxFrameSize is the maximum size of
// a complete wire frame including framing overhead; it must exceed
// MetaSize+HeaderSize, the combined overhead charged to the first chunk,
// or the boundary arithmetic produces negative offsets. New fails with
// ErrFrameSizeTooSmall instead.
func New(maxFrameSize int, topic byte, payload []byte) (*Chunker, error) {
	if maxFrameSize <= MetaSize+HeaderSize {
		return nil, fmt.Errorf("max frame size %d does not exceed framing overhead %d: %w",
			maxFrameSize, MetaSize+HeaderSize, ErrFrameSizeTooSmall)
	}
	return &Chunker{
		payload:      payload,
		maxFrameSize: maxFrameSize,
		topic:        topic,
	}, nil
}

// Topic returns the single-byte channel tag carried in the header.
func (c *Chunker) Topic() byte { return c.topic }

// Len returns the length of the borrowed payload.
func (c *Chunker) Len() int { return len(c.payload) }

// MaxFrameSize returns the configured maximum wire frame size.
func (c *Chunker) MaxFrameSize() int { return c.maxFrameSize }

// Cursor returns the next index sequential production will attempt.
func (c *Chunker) Cursor() int { return c.cursor }

// Header returns the one-time envelope for the payload: byte 0 is the
// topic, bytes 1..HeaderSize hold the total payload length, little-endian.
// Pure function of topic and payload length; prepending it to the first
// frame is the caller's responsibility.
func (c *Chunker) Header() []byte {
	h := make([]byte, HeaderSize)
	h[0] = c.topic
	binary.LittleEndian.PutUint64(h[1:], uint64(len(c.payload)))
	return h
}

// Offset maps a zero-based chunk index to the starting byte offset of that
// chunk's data within the payload. Index 0 starts at 0; the first frame is
// charged the full header, every later frame only the rolling length field.
func (c *Chunker) Offset(index int) int {
	if index == 0 {
		return 0
	}
	return index*c.maxFrameSize - MetaSize*index - HeaderSize
}

// Chunk returns the data slice for the given index. The final chunk may be
// shorter than the computed capacity; it is clamped to the payload end.
// Returns (nil, false) once index is past the payload, including the case
// where the payload length is an exact multiple of the chunk capacity (no
// trailing empty chunk is produced).
//
// Chunk is side-effect free and never touches the cursor.
func (c *Chunker) Chunk(index int) ([]byte, bool) {
	start := c.Offset(index)
	if start >= len(c.payload) {
		return nil, false
	}
	end := c.Offset(index + 1)
	if end > len(c.payload) {
		return c.payload[start:], true
	}
	return c.payload[start:end], true
}

// Next produces the chunk at the cursor and advances it. Once exhausted it
// keeps returning ok=false with the cursor unchanged; there is no reset,
// construct a new Chunker to iterate again.
func (c *Chunker) Next() (data []byte, index int, ok bool) {
	data, ok = c.Chunk(c.cursor)
	if !ok {
		return nil, 0, false
	}
	index = c.cursor
	c.cursor++
	return data, index, true
}

// Count returns the total number of chunks the payload splits into.
func (c *Chunker) Count() int {
	n := 0
	for {
		if _, ok := c.Chunk(n); !ok {
			return n
		}
		n++
	}
}

// Meta decodes the first MetaSize bytes of b as a little-endian length
// field. Fails with ErrInvalidMetaSize when b is shorter than MetaSize.
func Meta(b []byte) (uint64, error) {
	if len(b) < MetaSize {
		return 0, fmt.Errorf("meta field needs %d bytes, got %d: %w", MetaSize, len(b), ErrInvalidMetaSize)
	}
	return binary.LittleEndian.Uint64(b[:MetaSize]), nil
}
