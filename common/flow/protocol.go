package flow

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Message is the envelope passed into a node and handed back out of it.
// Nodes only ever replace Payload.
type Message struct {
	ID      string `json:"_msgid"`
	Topic   string `json:"topic,omitempty"`
	Payload any    `json:"payload"`
}

// NewMessage returns an empty message with a fresh id.
func NewMessage(topic string) *Message {
	return &Message{
		ID:    uuid.NewString(),
		Topic: topic,
	}
}

// WriteMessage writes a Message as a single JSON line.
func WriteMessage(w io.Writer, msg *Message) error {
	return json.NewEncoder(w).Encode(msg)
}

// ReadMessage reads one JSON-encoded Message from the stream.
func ReadMessage(r io.Reader) (*Message, error) {
	var msg Message
	if err := json.NewDecoder(r).Decode(&msg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return &msg, nil
}
