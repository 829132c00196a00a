package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/metrics"
	"github.com/vladislavdragonenkov/jourmarche/internal/storage/memory"
)

func enqueueOrderEvent(t *testing.T, repo domain.OutboxRepository, orderID, eventType, payload string) domain.OutboxMessage {
	t.Helper()
	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   orderID,
		EventType:     eventType,
		Payload:       []byte(payload),
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return msg
}

func TestWorker_ProcessOnce_MarkSent(t *testing.T) {
	t.Parallel()

	repo := memory.NewOutboxRepository()
	enqueueOrderEvent(t, repo, "order_1", domain.EventOrderCreated, `{"status":"pending"}`)
	enqueueOrderEvent(t, repo, "order_1", domain.EventOrderStatusChanged, `{"status":"confirmed"}`)
	publisher := &stubPublisher{}

	worker := NewWorker(
		repo,
		publisher,
		WithRetryBaseDelay(0),
		WithMaxAttempts(3),
		WithMetrics(metrics.NewOutboxMetricsWithRegisterer(prometheus.NewRegistry())),
	)

	if got := worker.ProcessOnce(context.Background()); got != 2 {
		t.Fatalf("expected 2 published, got %d", got)
	}
	if got := publisher.calls(); got != 2 {
		t.Fatalf("expected 2 publish calls, got %d", got)
	}
	if types := publisher.eventTypes(); types[0] != domain.EventOrderCreated || types[1] != domain.EventOrderStatusChanged {
		t.Fatalf("events must be published in enqueue order, got %v", types)
	}
	stats, _ := repo.Stats()
	if stats.PendingCount != 0 {
		t.Fatalf("expected empty backlog, got %d", stats.PendingCount)
	}
}

func TestWorker_ProcessOnce_MarkFailedAndDLQAfterRetries(t *testing.T) {
	t.Parallel()

	repo := memory.NewOutboxRepository()
	enqueued := enqueueOrderEvent(t, repo, "order_2", domain.EventOrderStatusChanged, `{"status":"cancelled"}`)
	publisher := &stubPublisher{err: errors.New("broker down")}
	dlqPublisher := &stubPublisher{}

	worker := NewWorker(
		repo,
		publisher,
		WithDLQPublisher(dlqPublisher),
		WithRetryBaseDelay(0),
		WithMaxAttempts(3),
	)

	if got := worker.ProcessOnce(context.Background()); got != 0 {
		t.Fatalf("expected nothing published, got %d", got)
	}

	if got := publisher.calls(); got != 3 {
		t.Fatalf("expected 3 publish attempts, got %d", got)
	}
	if got := dlqPublisher.calls(); got != 1 {
		t.Fatalf("expected 1 DLQ publish, got %d", got)
	}
	stats, _ := repo.Stats()
	if stats.PendingCount != 0 {
		t.Fatalf("failed message must leave the backlog, got %d pending", stats.PendingCount)
	}

	var letter DeadLetter
	if err := json.Unmarshal(dlqPublisher.last().Payload, &letter); err != nil {
		t.Fatalf("decode dead letter: %v", err)
	}
	if letter.OutboxID != enqueued.ID || letter.AggregateID != "order_2" || letter.Attempts != 3 {
		t.Fatalf("unexpected dead letter: %+v", letter)
	}
	if letter.PublishError == "" || string(letter.Payload) != `{"status":"cancelled"}` {
		t.Fatalf("dead letter must carry error and original payload: %+v", letter)
	}
}

func TestWorker_ProcessOnce_SuccessAfterRetry(t *testing.T) {
	t.Parallel()

	repo := memory.NewOutboxRepository()
	enqueueOrderEvent(t, repo, "order_3", domain.EventOrderStatusChanged, `{"status":"delivered"}`)
	publisher := &stubPublisher{
		sequenceErrors: []error{
			errors.New("attempt 1"),
			errors.New("attempt 2"),
			nil,
		},
	}

	worker := NewWorker(
		repo,
		publisher,
		WithRetryBaseDelay(0),
		WithMaxAttempts(3),
	)

	if got := worker.ProcessOnce(context.Background()); got != 1 {
		t.Fatalf("expected 1 published, got %d", got)
	}
	if got := publisher.calls(); got != 3 {
		t.Fatalf("expected 3 publish attempts, got %d", got)
	}
}

func TestWorker_ProcessOnce_CancelledContext(t *testing.T) {
	t.Parallel()

	repo := memory.NewOutboxRepository()
	enqueueOrderEvent(t, repo, "order_4", domain.EventOrderCreated, `{}`)
	publisher := &stubPublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := NewWorker(repo, publisher).ProcessOnce(ctx); got != 0 {
		t.Fatalf("expected no work on cancelled context, got %d", got)
	}
	if publisher.calls() != 0 {
		t.Fatal("publisher must not be called")
	}
}

func TestWorker_RetryBackoff(t *testing.T) {
	t.Parallel()

	worker := NewWorker(nil, nil, WithRetryBaseDelay(10*time.Millisecond))
	if got := worker.retryBackoff(1); got != 10*time.Millisecond {
		t.Fatalf("unexpected first delay: %s", got)
	}
	if got := worker.retryBackoff(3); got != 40*time.Millisecond {
		t.Fatalf("unexpected third delay: %s", got)
	}

	if got := worker.retryBackoff(20); got != maxRetryDelay {
		t.Fatalf("delay must be capped at %s, got %s", maxRetryDelay, got)
	}

	if got := NewWorker(nil, nil, WithRetryBaseDelay(0)).retryBackoff(5); got != 0 {
		t.Fatalf("zero base delay must disable backoff, got %s", got)
	}
}

func TestWorker_ProcessOnce_CancelDuringRetryKeepsPending(t *testing.T) {
	t.Parallel()

	repo := memory.NewOutboxRepository()
	enqueueOrderEvent(t, repo, "order_6", domain.EventOrderCreated, `{}`)
	publisher := &stubPublisher{err: errors.New("broker down")}
	dlqPublisher := &stubPublisher{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	worker := NewWorker(repo, publisher,
		WithDLQPublisher(dlqPublisher),
		WithMaxAttempts(5),
		WithRetryBaseDelay(time.Second),
	)
	if got := worker.ProcessOnce(ctx); got != 0 {
		t.Fatalf("expected nothing published, got %d", got)
	}
	if dlqPublisher.calls() != 0 {
		t.Fatal("cancelled delivery must not reach the DLQ")
	}
	if stats, _ := repo.Stats(); stats.PendingCount != 1 {
		t.Fatalf("event must stay pending, got %d", stats.PendingCount)
	}
}

func TestWorker_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	repo := memory.NewOutboxRepository()
	publisher := &stubPublisher{}

	worker := NewWorker(
		repo,
		publisher,
		WithPollInterval(5*time.Millisecond),
		WithRetryBaseDelay(0),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	enqueueOrderEvent(t, repo, "order_5", domain.EventOrderCreated, `{}`)
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("worker did not stop on context cancel")
	}
	if publisher.calls() != 1 {
		t.Fatalf("expected the polled event to be published once, got %d", publisher.calls())
	}
}

func TestWorker_Run_DisabledWithoutPublisher(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		NewWorker(memory.NewOutboxRepository(), nil).Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker without publisher must return immediately")
	}
}

type stubPublisher struct {
	mu             sync.Mutex
	err            error
	sequenceErrors []error
	published      []domain.OutboxMessage
	callCount      int
}

func (s *stubPublisher) Publish(event domain.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.callCount++
	if len(s.sequenceErrors) > 0 {
		err := s.sequenceErrors[0]
		s.sequenceErrors = s.sequenceErrors[1:]
		if err == nil {
			s.published = append(s.published, event)
		}
		return err
	}
	if s.err == nil {
		s.published = append(s.published, event)
	}
	return s.err
}

func (s *stubPublisher) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}

func (s *stubPublisher) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, len(s.published))
	for i, e := range s.published {
		types[i] = e.EventType
	}
	return types
}

func (s *stubPublisher) last() domain.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.published[len(s.published)-1]
}

var _ domain.OutboxPublisher = (*stubPublisher)(nil)
