package wire

import (
	"errors"
	"testing"
)

func TestAck_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ack  Ack
	}{
		{name: "positive", ack: Ack{Topic: 0x10, Index: 3, OK: true}},
		{name: "negative with reason", ack: Ack{Topic: 0x10, Index: 0, OK: false, Reason: "timeout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := EncodeAck(&tt.ack)
			if err != nil {
				t.Fatalf("EncodeAck failed: %v", err)
			}

			decoded, err := DecodeAck(payload)
			if err != nil {
				t.Fatalf("DecodeAck failed: %v", err)
			}
			if *decoded != tt.ack {
				t.Errorf("decoded %+v, want %+v", *decoded, tt.ack)
			}
		})
	}
}

func TestDecodeAck_Malformed(t *testing.T) {
	_, err := DecodeAck([]byte{0xC1}) // 0xC1 is never used by msgpack

	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected *FrameError, got %v", err)
	}
	if frameErr.Kind != FrameErrorDecode {
		t.Errorf("Kind = %v, want FrameErrorDecode", frameErr.Kind)
	}
}
