package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change operations carried by ChangeMessage.
const (
	OpAppend = "append"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeMessage announces that the ledger table was mutated. Consumers
// reload the table rather than trusting the position, which may already be
// stale by the time the message is read.
type ChangeMessage struct {
	Operation string    `json:"operation"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a message stamped with the current time.
func NewChangeMessage(op string, index int) *ChangeMessage {
	return &ChangeMessage{
		Operation: op,
		Index:     index,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes and checks a message.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Operation {
	case OpAppend, OpUpdate, OpDelete:
	default:
		return nil, fmt.Errorf("unknown operation %q", msg.Operation)
	}
	return &msg, nil
}
