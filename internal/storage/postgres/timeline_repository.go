package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

// TimelineRepository — история заказов в таблице order_timeline.
type TimelineRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTimelineRepository создаёт историю заказов поверх store.
func NewTimelineRepository(store *Store) *TimelineRepository {
	return &TimelineRepository{db: store.DB(), now: time.Now}
}

// Append записывает событие; нулевое время заменяется текущим.
func (r *TimelineRepository) Append(event domain.TimelineEvent) error {
	ctx, cancel := opContext()
	defer cancel()

	if event.Occurred.IsZero() {
		event.Occurred = r.now()
	}

	const q = `
INSERT INTO order_timeline (order_id, event_type, reason, occurred_at)
VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, q, event.OrderID, event.Type, event.Reason, event.Occurred.UTC()); err != nil {
		return fmt.Errorf("append %s to timeline of %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}

// List возвращает события заказа по времени; при равном времени по порядку записи.
func (r *TimelineRepository) List(orderID string) ([]domain.TimelineEvent, error) {
	ctx, cancel := opContext()
	defer cancel()

	const q = `
SELECT event_type, reason, occurred_at
FROM order_timeline
WHERE order_id = $1
ORDER BY occurred_at, seq`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("list timeline of %s: %w", orderID, err)
	}
	defer rows.Close()

	events := []domain.TimelineEvent{}
	for rows.Next() {
		event := domain.TimelineEvent{OrderID: orderID}
		if err := rows.Scan(&event.Type, &event.Reason, &event.Occurred); err != nil {
			return nil, fmt.Errorf("scan timeline row: %w", err)
		}
		event.Occurred = event.Occurred.UTC()
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline rows: %w", err)
	}
	return events, nil
}

var _ domain.TimelineRepository = (*TimelineRepository)(nil)
