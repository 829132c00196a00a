package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	for _, brokers := range []string{"", " , "} {
		producer, err := initKafkaProducer(Config{KafkaBrokers: brokers}, logger)
		if err != nil {
			t.Errorf("expected no error for brokers %q, got %v", brokers, err)
		}
		if producer != nil {
			t.Errorf("expected nil producer for brokers %q", brokers)
		}
	}
}

func TestInitKafkaProducer_UnreachableBrokers(t *testing.T) {
	if testing.Short() {
		t.Skip("sarama retries metadata requests before failing")
	}
	logger := log.WithField("test", "kafka")

	producer, err := initKafkaProducer(Config{KafkaBrokers: "127.0.0.1:1, 127.0.0.1:2"}, logger)
	if err == nil {
		closeKafka(producer, logger)
		t.Fatal("expected error for unreachable brokers")
	}
	if producer != nil {
		t.Error("expected nil producer on error")
	}
}

func TestCloseKafka_NilProducer(t *testing.T) {
	// Не должно паниковать
	closeKafka(nil, log.WithField("test", "kafka"))
}
