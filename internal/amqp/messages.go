package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotExportMessage asks the worker to export one totals snapshot.
// It carries only the id; the worker fetches the row from the database
// so the queue never holds stale figures.
type SnapshotExportMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotExportMessage creates an export message for a snapshot id.
func NewSnapshotExportMessage(id string) *SnapshotExportMessage {
	return &SnapshotExportMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *SnapshotExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotExportMessageFromJSON decodes a message from JSON bytes.
func SnapshotExportMessageFromJSON(data []byte) (*SnapshotExportMessage, error) {
	var msg SnapshotExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
