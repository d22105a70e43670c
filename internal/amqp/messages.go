package amqp

import (
	"encoding/json"
	"time"
)

// HistorySyncMessage asks the worker to export one payment history entry.
// It carries only the entry ID; the worker fetches the full row from the
// database before appending it to the export sheet.
type HistorySyncMessage struct {
	EntryID   int64     `json:"entry_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewHistorySyncMessage creates a sync message for a history entry.
func NewHistorySyncMessage(entryID int64) *HistorySyncMessage {
	return &HistorySyncMessage{
		EntryID:   entryID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *HistorySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// HistorySyncMessageFromJSON creates a message from JSON bytes.
func HistorySyncMessageFromJSON(data []byte) (*HistorySyncMessage, error) {
	var msg HistorySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
