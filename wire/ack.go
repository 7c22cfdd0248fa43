package wire

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Ack is the control envelope a receiver returns per chunk. A negative
// acknowledgement (OK=false) asks the sender to retransmit the chunk.
type Ack struct {
	Topic  byte   `msgpack:"topic"`
	Index  int    `msgpack:"index"`
	OK     bool   `msgpack:"ok"`
	Reason string `msgpack:"reason,omitempty"`
}

// EncodeAck encodes an acknowledgement as msgpack.
func EncodeAck(a *Ack) ([]byte, error) {
	payload, err := msgpack.Marshal(a)
	if err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to encode ack", Err: err}
	}
	return payload, nil
}

// DecodeAck decodes a msgpack acknowledgement envelope.
func DecodeAck(payload []byte) (*Ack, error) {
	var a Ack
	if err := msgpack.Unmarshal(payload, &a); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode ack", Err: err}
	}
	return &a, nil
}
