package kafka

import (
	"encoding/json"
	"time"
)

// Topics для Kafka.
const (
	TopicOrderEvents     = "jdm.order.events"
	TopicDeadLetterQueue = "jdm.dlq" // Dead Letter Queue для событий, не доставленных после всех попыток
)

// Заголовки сообщений с событиями заказов.
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
	HeaderOutboxID      = "x-outbox-id"
)

// Envelope — конверт, в котором outbox-сообщение уходит в брокер.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// ParseEnvelope разбирает значение сообщения из топика событий заказов.
func ParseEnvelope(value []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
