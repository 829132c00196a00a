package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderEvents {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "order_123" {
			return errors.New("message must be keyed by order id")
		}
		headers := map[string]string{}
		for _, h := range msg.Headers {
			headers[string(h.Key)] = string(h.Value)
		}
		if headers[HeaderEventType] != domain.EventOrderStatusChanged || headers[HeaderOutboxID] != "outbox-1" {
			return errors.New("missing event headers")
		}
		return nil
	})

	producer := NewProducerWithClient(mockProducer, log.WithField("component", "kafka-outbox-publisher-test"))
	publisher := NewOutboxPublisher(producer, "")
	if publisher.Topic() != TopicOrderEvents {
		t.Fatalf("expected default topic, got %s", publisher.Topic())
	}

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: "order",
		AggregateID:   "order_123",
		EventType:     domain.EventOrderStatusChanged,
		Payload:       []byte(`{"status":"confirmed"}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOutboxPublisher(NewProducerWithClient(mockProducer, nil), TopicDeadLetterQueue)

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: "order",
		AggregateID:   "order_234",
		EventType:     domain.EventOrderCreated,
	})
	if !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, TopicOrderEvents)
	if err := publisher.Publish(domain.OutboxMessage{ID: "outbox-3"}); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish for nil producer, got %v", err)
	}
}

func TestOutboxPublisher_EnvelopeAndKey(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, "")
	publisher.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("WAT", 3600)) }

	env := publisher.envelope(domain.OutboxMessage{ID: "outbox-4", AggregateID: "order_9", EventType: domain.EventOrderCreated})
	if string(env.Payload) != "{}" {
		t.Fatalf("empty payload must become {}, got %s", env.Payload)
	}
	if env.PublishedAt.Location() != time.UTC || env.PublishedAt.Hour() != 8 {
		t.Fatalf("expected UTC publish time, got %v", env.PublishedAt)
	}

	if got := partitionKey(domain.OutboxMessage{ID: "outbox-5"}); got != "outbox-5" {
		t.Fatalf("key must fall back to outbox id, got %q", got)
	}
}
