package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

const defaultPullLimit = 100

type outboxState uint8

const (
	statePending outboxState = iota
	stateSent
	stateFailed
)

type outboxEntry struct {
	msg        domain.OutboxMessage
	state      outboxState
	attempts   int
	enqueuedAt time.Time
}

// OutboxRepository — outbox в памяти процесса для драйверов memory и redis и для тестов.
// Записи хранятся в порядке постановки, поэтому pending выдаются FIFO.
type OutboxRepository struct {
	mu      sync.RWMutex
	log     []*outboxEntry
	byID    map[string]*outboxEntry
	pending int
	now     func() time.Time
}

// NewOutboxRepository создаёт пустой outbox.
func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{
		byID: make(map[string]*outboxEntry),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue ставит событие в очередь; тело копируется.
func (r *OutboxRepository) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.Payload = append([]byte(nil), msg.Payload...)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byID[msg.ID]; dup {
		return domain.OutboxMessage{}, fmt.Errorf("outbox message %s already enqueued", msg.ID)
	}
	entry := &outboxEntry{msg: msg, enqueuedAt: r.now()}
	r.log = append(r.log, entry)
	r.byID[msg.ID] = entry
	r.pending++
	return msg, nil
}

// PullPending возвращает до limit ожидающих событий в порядке постановки.
func (r *OutboxRepository) PullPending(limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = defaultPullLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	batch := make([]domain.OutboxMessage, 0, min(limit, r.pending))
	for _, e := range r.log {
		if len(batch) == limit {
			break
		}
		if e.state == statePending {
			batch = append(batch, e.msg)
		}
	}
	return batch, nil
}

// Stats возвращает размер backlog и время постановки самого старого события.
func (r *OutboxRepository) Stats() (domain.OutboxStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.OutboxStats{PendingCount: r.pending}
	for _, e := range r.log {
		if e.state == statePending {
			stats.OldestPendingAt = e.enqueuedAt
			break
		}
	}
	return stats, nil
}

// MarkSent закрывает событие как опубликованное.
func (r *OutboxRepository) MarkSent(id string) error {
	return r.settle(id, stateSent)
}

// MarkFailed закрывает событие как неопубликованное.
func (r *OutboxRepository) MarkFailed(id string) error {
	return r.settle(id, stateFailed)
}

// AllPending возвращает все ожидающие события; удобно в тестах.
func (r *OutboxRepository) AllPending() []domain.OutboxMessage {
	batch, _ := r.PullPending(int(^uint(0) >> 1))
	return batch
}

func (r *OutboxRepository) settle(id string, state outboxState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: outbox message %s not found", domain.ErrOutboxPublish, id)
	}
	if e.state == statePending {
		r.pending--
	}
	e.state = state
	e.attempts++
	return nil
}

var _ domain.OutboxRepository = (*OutboxRepository)(nil)
