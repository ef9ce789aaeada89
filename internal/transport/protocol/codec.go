// Package protocol frames channel events on the wire. Every frame is an
// envelope of {type, payload}; JSON is the default encoding and msgpack is
// available for clients that want compact binary tick updates.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mcoot/screenpong/internal/model"
)

// Codec names accepted in the ?codec= query parameter
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Codec encodes outbound messages and decodes inbound frames
type Codec interface {
	Name() string
	// Binary reports whether frames should be sent as binary websocket messages
	Binary() bool
	Encode(msg model.Message) ([]byte, error)
	Decode(data []byte) (Frame, error)
}

// Frame is a decoded inbound envelope whose payload has not been parsed yet
type Frame struct {
	Type    model.EventType
	payload []byte
	decode  func(data []byte, v any) error
}

// HasPayload reports whether the frame carried a payload
func (f Frame) HasPayload() bool {
	return len(f.payload) > 0 && !bytes.Equal(f.payload, []byte("null"))
}

// DecodePayload parses a frame's payload into T
func DecodePayload[T any](f Frame) (T, error) {
	var v T
	if !f.HasPayload() {
		return v, fmt.Errorf("%w: %s has no payload", model.ErrInvalidPayload, f.Type)
	}
	if err := f.decode(f.payload, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", model.ErrInvalidPayload, f.Type, err)
	}
	return v, nil
}

// ByName returns the codec for a name, falling back to JSON
func ByName(name string) Codec {
	if name == CodecMsgpack {
		return Msgpack{}
	}
	return JSON{}
}

// JSON is the default text codec
type JSON struct{}

type jsonEnvelope struct {
	Type    model.EventType `json:"type"`
	Payload any             `json:"payload,omitempty"`
}

type jsonInbound struct {
	Type    model.EventType `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (JSON) Name() string { return CodecJSON }

func (JSON) Binary() bool { return false }

func (JSON) Encode(msg model.Message) ([]byte, error) {
	return json.Marshal(jsonEnvelope{Type: msg.Type, Payload: msg.Payload})
}

func (JSON) Decode(data []byte) (Frame, error) {
	var in jsonInbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", model.ErrInvalidPayload, err)
	}
	if in.Type == "" {
		return Frame{}, fmt.Errorf("%w: missing type", model.ErrInvalidPayload)
	}
	return Frame{Type: in.Type, payload: in.Payload, decode: json.Unmarshal}, nil
}

// Msgpack is the binary codec. Field names follow the json tags so both
// codecs produce the same shape.
type Msgpack struct{}

type msgpackInbound struct {
	Type    model.EventType    `json:"type"`
	Payload msgpack.RawMessage `json:"payload"`
}

func (Msgpack) Name() string { return CodecMsgpack }

func (Msgpack) Binary() bool { return true }

func (Msgpack) Encode(msg model.Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(jsonEnvelope{Type: msg.Type, Payload: msg.Payload}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Msgpack) Decode(data []byte) (Frame, error) {
	var in msgpackInbound
	if err := unmarshalMsgpack(data, &in); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", model.ErrInvalidPayload, err)
	}
	if in.Type == "" {
		return Frame{}, fmt.Errorf("%w: missing type", model.ErrInvalidPayload)
	}
	return Frame{Type: in.Type, payload: in.Payload, decode: unmarshalMsgpack}, nil
}

func unmarshalMsgpack(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
