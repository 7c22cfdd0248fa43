package chunk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func mustChunker(t *testing.T, maxFrameSize int, topic byte, payload []byte) *Chunker {
	t.Helper()
	c, err := New(maxFrameSize, topic, payload)
	if err != nil {
		t.Fatalf("New(%d, %#x, %d bytes) failed: %v", maxFrameSize, topic, len(payload), err)
	}
	return c
}

func TestNew_ValidatesFrameSize(t *testing.T) {
	tests := []struct {
		name         string
		maxFrameSize int
		wantErr      bool
	}{
		{name: "zero", maxFrameSize: 0, wantErr: true},
		{name: "negative", maxFrameSize: -1, wantErr: true},
		{name: "equal to header size", maxFrameSize: HeaderSize, wantErr: true},
		// The first chunk is charged both overheads; anything at or below
		// MetaSize+HeaderSize would yield negative offsets.
		{name: "one above header size", maxFrameSize: HeaderSize + 1, wantErr: true},
		{name: "equal to combined overhead", maxFrameSize: MetaSize + HeaderSize, wantErr: true},
		{name: "one above combined overhead", maxFrameSize: MetaSize + HeaderSize + 1, wantErr: false},
		{name: "typical", maxFrameSize: 250, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.maxFrameSize, 0x01, []byte("payload"))
			if tt.wantErr {
				if !errors.Is(err, ErrFrameSizeTooSmall) {
					t.Errorf("expected ErrFrameSizeTooSmall, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestChunker_Scenario validates the concrete reference scenario: 1000 zero
// bytes at max frame size 250 with an 8-byte length field.
func TestChunker_Scenario(t *testing.T) {
	payload := make([]byte, 1000)
	c := mustChunker(t, 250, 0x10, payload)

	header := c.Header()
	wantHeader := []byte{0x10, 0xE8, 0x03, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(header, wantHeader) {
		t.Errorf("Header() = %v, want %v", header, wantHeader)
	}

	// The first chunk is charged both the header and the length field the
	// later frames carry, so its capacity is M-MetaSize-HeaderSize.
	first, index, ok := c.Next()
	if !ok || index != 0 {
		t.Fatalf("Next() = (_, %d, %v), want index 0", index, ok)
	}
	if len(first) != 250-MetaSize-HeaderSize {
		t.Errorf("first chunk length = %d, want %d", len(first), 250-MetaSize-HeaderSize)
	}

	for want := 1; want <= 2; want++ {
		data, index, ok := c.Next()
		if !ok || index != want {
			t.Fatalf("Next() = (_, %d, %v), want index %d", index, ok, want)
		}
		if len(data) != 250-MetaSize {
			t.Errorf("chunk %d length = %d, want %d", index, len(data), 250-MetaSize)
		}
	}
}

// TestChunker_Reconstruction verifies that the concatenation of all chunks
// in production order reconstructs the payload exactly.
func TestChunker_Reconstruction(t *testing.T) {
	tests := []struct {
		name         string
		payloadLen   int
		maxFrameSize int
	}{
		{name: "empty payload", payloadLen: 0, maxFrameSize: 250},
		{name: "smaller than first capacity", payloadLen: 100, maxFrameSize: 250},
		{name: "exactly first capacity", payloadLen: 233, maxFrameSize: 250},
		{name: "one over first capacity", payloadLen: 234, maxFrameSize: 250},
		{name: "reference scenario", payloadLen: 1000, maxFrameSize: 250},
		{name: "exact multiple of capacities", payloadLen: 233 + 2*242, maxFrameSize: 250},
		{name: "single byte first chunk", payloadLen: 37, maxFrameSize: MetaSize + HeaderSize + 1},
		{name: "large payload", payloadLen: 65537, maxFrameSize: 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make([]byte, tt.payloadLen)
			for i := range payload {
				payload[i] = byte(i % 251)
			}

			c := mustChunker(t, tt.maxFrameSize, 0x42, payload)

			var rebuilt []byte
			prev := -1
			for {
				data, index, ok := c.Next()
				if !ok {
					break
				}
				if index != prev+1 {
					t.Fatalf("index %d follows %d, want monotonic by one", index, prev)
				}
				prev = index
				rebuilt = append(rebuilt, data...)

				if prev > tt.payloadLen {
					t.Fatal("iteration did not terminate")
				}
			}

			if !bytes.Equal(rebuilt, payload) {
				t.Errorf("reconstructed %d bytes differ from payload (%d bytes)", len(rebuilt), len(payload))
			}
			if got := c.Count(); got != prev+1 {
				t.Errorf("Count() = %d, want %d", got, prev+1)
			}
		})
	}
}

// TestChunker_ExactMultipleBoundary pins the open boundary case: when the
// payload length is an exact multiple of the chunk capacity, iteration ends
// without a trailing empty chunk.
func TestChunker_ExactMultipleBoundary(t *testing.T) {
	// First chunk 233 bytes, second 242: exactly two full chunks.
	payload := make([]byte, 233+242)
	c := mustChunker(t, 250, 0x01, payload)

	if _, _, ok := c.Next(); !ok {
		t.Fatal("first chunk missing")
	}
	if _, _, ok := c.Next(); !ok {
		t.Fatal("second chunk missing")
	}
	if data, index, ok := c.Next(); ok {
		t.Errorf("Next() after exact multiple = (%d bytes, %d, true), want exhaustion", len(data), index)
	}
	if _, ok := c.Chunk(2); ok {
		t.Error("Chunk(2) at exact multiple should report no more chunks")
	}
}

func TestChunker_ExhaustionIsSticky(t *testing.T) {
	c := mustChunker(t, 50, 0x01, []byte("short"))

	if _, _, ok := c.Next(); !ok {
		t.Fatal("expected one chunk")
	}
	cursor := c.Cursor()
	for i := 0; i < 3; i++ {
		if _, _, ok := c.Next(); ok {
			t.Fatal("expected exhaustion")
		}
	}
	if c.Cursor() != cursor {
		t.Errorf("cursor moved to %d after exhaustion, want %d", c.Cursor(), cursor)
	}
}

func TestChunker_RandomAccessDoesNotPerturbCursor(t *testing.T) {
	payload := make([]byte, 1000)
	c := mustChunker(t, 250, 0x01, payload)

	seq0, _, _ := c.Next()

	// Random access to later chunks must not move the cursor.
	if _, ok := c.Chunk(2); !ok {
		t.Fatal("Chunk(2) missing")
	}
	if c.Cursor() != 1 {
		t.Fatalf("cursor = %d after random access, want 1", c.Cursor())
	}

	seq1, index, ok := c.Next()
	if !ok || index != 1 {
		t.Fatalf("Next() = (_, %d, %v), want index 1", index, ok)
	}

	// Sequential and random access agree on content.
	if rand0, _ := c.Chunk(0); !bytes.Equal(seq0, rand0) {
		t.Error("Chunk(0) differs from sequential production")
	}
	if rand1, _ := c.Chunk(1); !bytes.Equal(seq1, rand1) {
		t.Error("Chunk(1) differs from sequential production")
	}
}

func TestChunker_Offset(t *testing.T) {
	c := mustChunker(t, 250, 0x01, make([]byte, 1000))

	tests := []struct {
		index int
		want  int
	}{
		{index: 0, want: 0},
		{index: 1, want: 250 - MetaSize - HeaderSize},
		{index: 2, want: 2*250 - 2*MetaSize - HeaderSize},
		{index: 3, want: 3*250 - 3*MetaSize - HeaderSize},
	}
	for _, tt := range tests {
		if got := c.Offset(tt.index); got != tt.want {
			t.Errorf("Offset(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestHeader_RoundTrip(t *testing.T) {
	payload := []byte("some payload worth framing")
	c := mustChunker(t, 64, 0x7F, payload)

	header := c.Header()
	if len(header) != HeaderSize {
		t.Fatalf("Header() length = %d, want %d", len(header), HeaderSize)
	}
	if header[0] != 0x7F {
		t.Errorf("header topic = %#x, want 0x7F", header[0])
	}

	length, err := Meta(header[1:])
	if err != nil {
		t.Fatalf("Meta failed on header length field: %v", err)
	}
	if length != uint64(len(payload)) {
		t.Errorf("decoded length = %d, want %d", length, len(payload))
	}
}

func TestMeta(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    uint64
		wantErr bool
	}{
		{name: "empty", input: nil, wantErr: true},
		{name: "one byte short", input: make([]byte, MetaSize-1), wantErr: true},
		{name: "exact width", input: []byte{0xE8, 0x03, 0, 0, 0, 0, 0, 0}, want: 1000},
		{name: "extra bytes ignored", input: []byte{0x01, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Meta(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMetaSize) {
					t.Errorf("expected ErrInvalidMetaSize, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Meta failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Meta() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeta_LittleEndian(t *testing.T) {
	var buf [MetaSize]byte
	binary.LittleEndian.PutUint64(buf[:], 0xDEADBEEF)

	got, err := Meta(buf[:])
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	if got != 0xDEADBEEF {
		t.Errorf("Meta() = %#x, want 0xDEADBEEF", got)
	}
}
