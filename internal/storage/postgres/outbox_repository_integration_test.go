package postgres

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

func enqueueOrderEvent(t *testing.T, repo *OutboxRepository, id, orderID, eventType string) domain.OutboxMessage {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{"orderId": orderID})
	msg, err := repo.Enqueue(domain.OutboxMessage{
		ID:            id,
		AggregateType: "order",
		AggregateID:   orderID,
		EventType:     eventType,
		Payload:       payload,
	})
	if err != nil {
		t.Fatalf("enqueue %s: %v", eventType, err)
	}
	return msg
}

func TestOutboxRepository_DeliveryCycle(t *testing.T) {
	repo := NewOutboxRepository(migratedTestStore(t))

	created := enqueueOrderEvent(t, repo, "", "order_a", domain.EventOrderCreated)
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	changed := enqueueOrderEvent(t, repo, "evt-fixed", "order_a", domain.EventOrderStatusChanged)
	if changed.ID != "evt-fixed" {
		t.Fatalf("expected caller id to be kept, got %q", changed.ID)
	}

	pending, err := repo.PullPending(0)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != created.ID || pending[1].ID != changed.ID {
		t.Fatalf("expected events in enqueue order, got %+v", pending)
	}
	var body map[string]string
	if err := json.Unmarshal(pending[0].Payload, &body); err != nil || body["orderId"] != "order_a" {
		t.Fatalf("unexpected payload %s: %v", pending[0].Payload, err)
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.PendingCount != 2 || stats.OldestPendingAt.IsZero() {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := repo.MarkSent(created.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := repo.MarkFailed(changed.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	stats, err = repo.Stats()
	if err != nil {
		t.Fatalf("stats after settle: %v", err)
	}
	if stats.PendingCount != 0 || !stats.OldestPendingAt.IsZero() {
		t.Fatalf("expected empty backlog, got %+v", stats)
	}
}

func TestOutboxRepository_PullRespectsLimit(t *testing.T) {
	repo := NewOutboxRepository(migratedTestStore(t))

	for _, orderID := range []string{"order_1", "order_2", "order_3"} {
		enqueueOrderEvent(t, repo, "", orderID, domain.EventOrderCreated)
	}

	batch, err := repo.PullPending(2)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(batch) != 2 || batch[0].AggregateID != "order_1" || batch[1].AggregateID != "order_2" {
		t.Fatalf("unexpected batch: %+v", batch)
	}
}

func TestOutboxRepository_EmptyPayloadStoredAsObject(t *testing.T) {
	repo := NewOutboxRepository(migratedTestStore(t))

	msg, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "order_x", EventType: domain.EventOrderCreated})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	pending, err := repo.PullPending(1)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != msg.ID || string(pending[0].Payload) != "{}" {
		t.Fatalf("unexpected pending: %+v", pending)
	}
}

func TestOutboxRepository_SettleUnknownID(t *testing.T) {
	repo := NewOutboxRepository(migratedTestStore(t))

	if err := repo.MarkSent("missing"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish from MarkSent, got %v", err)
	}
	if err := repo.MarkFailed("missing"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish from MarkFailed, got %v", err)
	}
}
