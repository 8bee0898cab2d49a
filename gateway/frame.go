package gateway

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/teamlint/puppr/event"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Frame types.
const (
	FrameSubscribe   = "subscribe"   // client -> server: set the gateway filter
	FrameUnsubscribe = "unsubscribe" // client -> server: drop names, or everything
	FrameEvent       = "event"       // server -> client
)

// Variables with frame errors.
var (
	ErrUnknownFrame = errors.New("unknown frame type")
	ErrEmptyFrame   = errors.New("event frame without event")
)

// Frame is the unit exchanged over a gateway connection.
type Frame struct {
	Type  string       `json:"type"`
	Names []string     `json:"names,omitempty"`
	Event *event.Event `json:"event,omitempty"`
}

// Encode serializes a frame.
func Encode(f Frame) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s frame", f.Type)
	}
	return data, nil
}

// Decode parses and checks a frame.
func Decode(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, errors.Wrap(err, "decode frame")
	}
	switch f.Type {
	case FrameSubscribe, FrameUnsubscribe:
	case FrameEvent:
		if f.Event == nil {
			return Frame{}, ErrEmptyFrame
		}
	default:
		return Frame{}, errors.Wrapf(ErrUnknownFrame, "%q", f.Type)
	}
	return f, nil
}
