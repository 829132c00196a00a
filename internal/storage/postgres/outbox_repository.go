package postgres

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

const defaultPullLimit = 100

// Состояния строки order_event_outbox.
const (
	outboxPending = "pending"
	outboxSent    = "sent"
	outboxFailed  = "failed"
)

// OutboxRepository — outbox событий заказов в таблице order_event_outbox.
// Порядок выдачи задаёт seq, а не время постановки.
type OutboxRepository struct {
	db *sql.DB
}

// NewOutboxRepository создаёт outbox поверх store.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{db: store.DB()}
}

// Enqueue ставит событие в очередь; пустое тело сохраняется как {}.
func (r *OutboxRepository) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	ctx, cancel := opContext()
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if len(msg.Payload) == 0 {
		msg.Payload = []byte("{}")
	}

	const q = `
INSERT INTO order_event_outbox (id, aggregate_type, aggregate_id, event_type, payload)
VALUES ($1, $2, $3, $4, $5::jsonb)`
	if _, err := r.db.ExecContext(ctx, q,
		msg.ID, msg.AggregateType, msg.AggregateID, msg.EventType, string(msg.Payload),
	); err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("enqueue %s for %s: %w", msg.EventType, msg.AggregateID, err)
	}
	return msg, nil
}

// PullPending возвращает до limit ожидающих событий в порядке постановки.
func (r *OutboxRepository) PullPending(limit int) ([]domain.OutboxMessage, error) {
	ctx, cancel := opContext()
	defer cancel()

	if limit <= 0 {
		limit = defaultPullLimit
	}

	const q = `
SELECT id, aggregate_type, aggregate_id, event_type, payload::text
FROM order_event_outbox
WHERE state = $1
ORDER BY seq
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, outboxPending, limit)
	if err != nil {
		return nil, fmt.Errorf("pull pending outbox: %w", err)
	}
	defer rows.Close()

	var batch []domain.OutboxMessage
	for rows.Next() {
		var (
			msg     domain.OutboxMessage
			payload string
		)
		if err := rows.Scan(&msg.ID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		msg.Payload = []byte(payload)
		batch = append(batch, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return batch, nil
}

// Stats возвращает размер backlog и время постановки самого старого события.
func (r *OutboxRepository) Stats() (domain.OutboxStats, error) {
	ctx, cancel := opContext()
	defer cancel()

	var (
		stats  domain.OutboxStats
		oldest sql.NullTime
	)
	const q = `SELECT COUNT(*), MIN(enqueued_at) FROM order_event_outbox WHERE state = $1`
	if err := r.db.QueryRowContext(ctx, q, outboxPending).Scan(&stats.PendingCount, &oldest); err != nil {
		return domain.OutboxStats{}, fmt.Errorf("outbox stats: %w", err)
	}
	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time.UTC()
	}
	return stats, nil
}

// MarkSent закрывает событие как опубликованное.
func (r *OutboxRepository) MarkSent(id string) error {
	return r.settle(id, outboxSent)
}

// MarkFailed закрывает событие как неопубликованное.
func (r *OutboxRepository) MarkFailed(id string) error {
	return r.settle(id, outboxFailed)
}

// settle переводит событие в конечное состояние. Неизвестный id даёт domain.ErrOutboxPublish.
func (r *OutboxRepository) settle(id, state string) error {
	ctx, cancel := opContext()
	defer cancel()

	const q = `
UPDATE order_event_outbox
SET state = $2, attempts = attempts + 1, settled_at = NOW()
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, state)
	if err != nil {
		return fmt.Errorf("mark outbox %s as %s: %w", id, state, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("mark outbox %s as %s: %w", id, state, err)
	} else if n == 0 {
		return fmt.Errorf("%w: outbox message %s not found", domain.ErrOutboxPublish, id)
	}
	return nil
}

var _ domain.OutboxRepository = (*OutboxRepository)(nil)
