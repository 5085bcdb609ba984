package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

// KafkaEvent is a consumed message recorded for idempotency.
type KafkaEvent struct {
	ID         int64           `json:"id"`
	MessageID  uuid.UUID       `json:"message_id"`
	Topic      string          `json:"topic"`
	Key        string          `json:"key"`
	Partition  int             `json:"partition"`
	Offset     int64           `json:"offset"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt string          `json:"received_at"`
}

// KafkaDLQ is a message that could not be applied. Payload is kept as text
// because rejected messages are not guaranteed to be JSON.
type KafkaDLQ struct {
	ID         int64  `json:"id"`
	Topic      string `json:"topic"`
	Key        string `json:"key"`
	Payload    string `json:"payload"`
	Error      string `json:"error"`
	ReceivedAt string `json:"received_at"`
}
