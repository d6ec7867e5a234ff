package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotWrittenMessage announces that the portfolio snapshot for a day
// has been written. Consumers fetch the full snapshot from the store.
type SnapshotWrittenMessage struct {
	EventID      string          `json:"event_id"`
	SnapshotDate string          `json:"snapshot_date"`
	NetWorth     decimal.Decimal `json:"net_worth"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NewSnapshotWrittenMessage creates a message for the given snapshot day
func NewSnapshotWrittenMessage(snapshotDate string, netWorth decimal.Decimal) *SnapshotWrittenMessage {
	return &SnapshotWrittenMessage{
		EventID:      uuid.NewString(),
		SnapshotDate: snapshotDate,
		NetWorth:     netWorth,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotWrittenMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotWrittenMessageFromJSON creates a message from JSON bytes
func SnapshotWrittenMessageFromJSON(data []byte) (*SnapshotWrittenMessage, error) {
	var msg SnapshotWrittenMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
