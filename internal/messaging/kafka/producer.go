package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

const defaultProducerRetries = 5

// ProducerConfig — подключение витрины к брокеру.
type ProducerConfig struct {
	Brokers  []string
	ClientID string
	// MaxRetries — повторы внутри sarama до возврата ошибки вызывающему; 0 означает значение по умолчанию.
	MaxRetries int
}

// saramaConfig собирает настройки идемпотентного синхронного producer.
func (c ProducerConfig) saramaConfig() *sarama.Config {
	sc := sarama.NewConfig()
	if c.ClientID != "" {
		sc.ClientID = c.ClientID
	}
	sc.Producer.Idempotent = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Retry.Max = defaultProducerRetries
	if c.MaxRetries > 0 {
		sc.Producer.Retry.Max = c.MaxRetries
	}
	// Идемпотентность sarama требует одного запроса в полёте на соединение.
	sc.Net.MaxOpenRequests = 1
	return sc
}

// Producer отправляет JSON-сообщения в Kafka.
type Producer struct {
	client sarama.SyncProducer
	logger *log.Entry
}

// NewProducer подключается к брокерам.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}

	client, err := sarama.NewSyncProducer(cfg.Brokers, cfg.saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return NewProducerWithClient(client, nil), nil
}

// NewProducerWithClient оборачивает готовый sarama.SyncProducer, например mocks.SyncProducer.
func NewProducerWithClient(client sarama.SyncProducer, logger *log.Entry) *Producer {
	if logger == nil {
		logger = log.WithField("component", "kafka-producer")
	}
	return &Producer{client: client, logger: logger}
}

// Publish сериализует value в JSON и синхронно отправляет его в topic с ключом партиционирования key.
func (p *Producer) Publish(topic, key string, value any, headers map[string]string) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal kafka message for %s: %w", topic, err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(body),
		Timestamp: time.Now(),
		Headers:   make([]sarama.RecordHeader, 0, len(headers)),
	}
	for name, v := range headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(name), Value: []byte(v)})
	}

	fields := log.Fields{"topic": topic, "key": key}
	partition, offset, err := p.client.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(fields).Error("kafka send failed")
		return fmt.Errorf("send to %s: %w", topic, err)
	}

	fields["partition"], fields["offset"] = partition, offset
	p.logger.WithFields(fields).Debug("kafka message sent")
	return nil
}

// Close закрывает соединения с брокерами.
func (p *Producer) Close() error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
