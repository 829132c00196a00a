package order

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

// EventPayload — тело события заказа в outbox.
type EventPayload struct {
	OrderID        string              `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	ShopID         string              `json:"shop_id"`
	Status         domain.OrderStatus  `json:"status"`
	PreviousStatus domain.OrderStatus  `json:"previous_status,omitempty"`
	Total          int64               `json:"total"`
	DeliveryType   domain.DeliveryType `json:"delivery_type,omitempty"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

func (s *Store) emitCreated(o domain.Order) {
	s.emitEvent(domain.EventOrderCreated, string(o.Status), EventPayload{
		OrderID:      o.ID,
		OrderNumber:  o.OrderNumber,
		ShopID:       o.ShopID,
		Status:       o.Status,
		Total:        o.Total,
		DeliveryType: o.DeliveryType,
		OccurredAt:   o.CreatedAt,
	})
}

func (s *Store) emitStatusChanged(o domain.Order, previous domain.OrderStatus) {
	s.emitEvent(domain.EventOrderStatusChanged, string(previous)+" -> "+string(o.Status), EventPayload{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		ShopID:         o.ShopID,
		Status:         o.Status,
		PreviousStatus: previous,
		Total:          o.Total,
		OccurredAt:     o.UpdatedAt,
	})
}

// emitEvent пишет событие в outbox и timeline. Ошибки только логируются:
// состояние заказа уже изменено и сохранено.
func (s *Store) emitEvent(eventType, reason string, payload EventPayload) {
	fields := log.Fields{
		"order_id": payload.OrderID,
		"event":    eventType,
	}

	if s.outbox != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.WithError(err).WithFields(fields).Error("marshal event failed")
		} else if _, err := s.outbox.Enqueue(domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   payload.OrderID,
			EventType:     eventType,
			Payload:       data,
		}); err != nil {
			s.logger.WithError(err).WithFields(fields).Error("enqueue event failed")
		} else {
			s.metrics.RecordOutboxEvent()
		}
	}

	if s.timeline != nil {
		event := domain.TimelineEvent{
			OrderID:  payload.OrderID,
			Type:     eventType,
			Reason:   reason,
			Occurred: payload.OccurredAt,
		}
		if err := s.timeline.Append(event); err != nil {
			s.logger.WithError(err).WithFields(fields).Warn("append timeline event failed")
		} else {
			s.metrics.RecordTimelineEvent()
		}
	}
}
