package amqp

import (
	"encoding/json"
	"time"
)

// CategorizeMessage asks the worker to run the keyword categorizer for one
// transaction. It carries only identifiers; the worker fetches the full row
// from the database so stale payloads cannot overwrite newer data.
type CategorizeMessage struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewCategorizeMessage(transactionID, userID string) *CategorizeMessage {
	return &CategorizeMessage{
		TransactionID: transactionID,
		UserID:        userID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CategorizeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CategorizeMessageFromJSON creates a message from JSON bytes
func CategorizeMessageFromJSON(data []byte) (*CategorizeMessage, error) {
	var msg CategorizeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
