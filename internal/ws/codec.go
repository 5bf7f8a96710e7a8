package ws

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/playmatatu/poolsim/internal/game"
)

// Format is the frame encoding a client asked for with ?format=.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat maps the query value to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMsgpack):
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

func (f Format) Marshal(v interface{}) ([]byte, error) {
	if f == FormatMsgpack {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}

func (f Format) Unmarshal(data []byte, v interface{}) error {
	if f == FormatMsgpack {
		return msgpack.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// frameType is the websocket message type frames of this format travel in.
func (f Format) frameType() int {
	if f == FormatMsgpack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Message types
const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
	MessageError    = "error"
)

// Message is the envelope of every server-to-client frame.
type Message struct {
	Type     string         `json:"type" msgpack:"type"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty" msgpack:"snapshot,omitempty"`
	Event    *game.Event    `json:"event,omitempty" msgpack:"event,omitempty"`
	Error    string         `json:"error,omitempty" msgpack:"error,omitempty"`
}
