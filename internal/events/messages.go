package events

import (
	"encoding/json"
	"time"
)

// ChangeMessage notifies the worker that a ledger collection changed.
// It carries only the collection, operation and entity id; the worker
// reloads the collection from the store rather than trusting the payload.
type ChangeMessage struct {
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change notification stamped with the current time.
func NewChangeMessage(collection, op, id string) *ChangeMessage {
	return &ChangeMessage{
		Collection: collection,
		Op:         op,
		ID:         id,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
