// Package order хранит оформленные заказы витрины и их статусы.
package order

import (
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/metrics"
	"github.com/vladislavdragonenkov/jourmarche/internal/storage/snapshot"
)

const maxNumberAttempts = 5

// Option настраивает Store.
type Option func(*Store)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator подменяет генератор идентификаторов заказов.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithNumberGenerator подменяет генератор номеров заказов.
func WithNumberGenerator(gen NumberGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newNumber = gen
		}
	}
}

// WithStatusPolicy задаёт политику переходов статусов. По умолчанию domain.PermissivePolicy.
func WithStatusPolicy(policy domain.StatusPolicy) Option {
	return func(s *Store) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithOutbox включает запись событий заказов в outbox.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(s *Store) {
		s.outbox = repo
	}
}

// WithTimeline включает запись истории заказов.
func WithTimeline(repo domain.TimelineRepository) Option {
	return func(s *Store) {
		s.timeline = repo
	}
}

// WithMetrics подключает prometheus-метрики.
func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// Store держит заказы от новых к старым и сохраняет весь список после каждого изменения.
// Заказы никогда не удаляются.
type Store struct {
	mu        sync.Mutex
	orders    []domain.Order
	snapshots domain.SnapshotStore
	policy    domain.StatusPolicy
	outbox    domain.OutboxRepository
	timeline  domain.TimelineRepository
	logger    *log.Entry
	metrics   *metrics.StorefrontMetrics
	now       func() time.Time
	newID     IDGenerator
	newNumber NumberGenerator
}

// NewStore восстанавливает заказы из снимка. Отсутствующий или повреждённый снимок
// даёт пустой список.
func NewStore(snapshots domain.SnapshotStore, opts ...Option) *Store {
	s := &Store{
		orders:    []domain.Order{},
		snapshots: snapshots,
		policy:    domain.PermissivePolicy{},
		logger:    log.WithField("component", "order-store"),
		now:       time.Now,
		newID:     NewOrderID,
		newNumber: NewOrderNumber,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.restore()
	s.metrics.SetPendingOrders(s.pendingCountLocked())
	return s
}

func (s *Store) restore() {
	var restored []domain.Order
	found, err := snapshot.LoadJSON(s.snapshots, domain.OrdersSnapshotKey, &restored)
	if err != nil {
		s.logger.WithError(err).WithField("key", domain.OrdersSnapshotKey).Warn("failed to restore orders, starting empty")
		s.metrics.RecordSnapshotFailure(domain.OrdersSnapshotKey, snapshot.OpOf(err))
		return
	}
	if !found {
		return
	}

	for i := range restored {
		if errs := restored[i].ValidateInvariants(); len(errs) > 0 {
			s.logger.WithFields(log.Fields{
				"order_id": restored[i].ID,
				"issues":   fmt.Sprint(errs),
			}).Warn("restored order is inconsistent")
		}
	}
	s.orders = restored
	s.logger.WithField("orders", len(restored)).Debug("orders restored from snapshot")
}

// CreateOrder создаёт заказ из черновика: генерирует идентификатор и номер, ставит статус
// pending и кладёт заказ в начало списка. Позиции копируются из черновика.
func (s *Store) CreateOrder(draft domain.OrderDraft) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	created := domain.NewOrder(draft, s.newID(now), s.uniqueNumberLocked(now), now)

	s.orders = append([]domain.Order{created}, s.orders...)
	s.persistLocked("create")

	s.logger.WithFields(log.Fields{
		"order_id":     created.ID,
		"order_number": created.OrderNumber,
		"shop_id":      created.ShopID,
		"total":        created.Total,
	}).Info("order created")
	s.metrics.RecordOrderCreated()
	s.metrics.SetPendingOrders(s.pendingCountLocked())
	s.emitCreated(created)

	return created.Clone()
}

// UpdateOrderStatus меняет статус заказа и обновляет updatedAt.
// Возвращает domain.ErrUnknownOrderStatus для статуса вне словаря, domain.ErrOrderNotFound
// для неизвестного заказа и domain.ErrInvalidStatusTransition, если переход запрещён политикой.
func (s *Store) UpdateOrderStatus(orderID string, status domain.OrderStatus) (domain.Order, error) {
	if orderID == "" {
		return domain.Order{}, domain.ErrOrderIDRequired
	}
	if !status.Valid() {
		s.metrics.RecordStatusRejected("unknown_status")
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrUnknownOrderStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(orderID)
	if idx < 0 {
		s.metrics.RecordStatusRejected("not_found")
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}

	current := &s.orders[idx]
	previous := current.Status
	if !s.policy.CanTransition(previous, status) {
		s.metrics.RecordStatusRejected("invalid_transition")
		return domain.Order{}, fmt.Errorf("%w: %s -> %s (allowed: %s)",
			domain.ErrInvalidStatusTransition, previous, status, allowedList(previous))
	}

	current.Status = status
	current.UpdatedAt = s.now()
	s.persistLocked("update_status")

	s.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       status,
	}).Info("order status updated")
	s.metrics.RecordStatusChange(string(status))
	s.metrics.SetPendingOrders(s.pendingCountLocked())
	s.emitStatusChanged(*current, previous)

	return current.Clone(), nil
}

// GetOrderByID возвращает копию заказа и признак наличия.
func (s *Store) GetOrderByID(orderID string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(orderID)
	if idx < 0 {
		return domain.Order{}, false
	}
	return s.orders[idx].Clone(), true
}

// GetOrdersByShop возвращает заказы магазина в порядке хранения (новые первыми).
func (s *Store) GetOrdersByShop(shopID string) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Order, 0)
	for _, o := range s.orders {
		if o.ShopID == shopID {
			result = append(result, o.Clone())
		}
	}
	return result
}

// Orders возвращает все заказы, новые первыми.
func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		result[i] = o.Clone()
	}
	return result
}

// SellerOrders возвращает заказы продавца. У пользователя нет привязки к магазину,
// поэтому продавец видит все заказы витрины.
func (s *Store) SellerOrders() []domain.Order {
	return s.Orders()
}

// NewOrdersCount возвращает число заказов в статусе pending.
func (s *Store) NewOrdersCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pendingCountLocked()
}

// Timeline возвращает историю заказа, если подключён TimelineRepository.
func (s *Store) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if s.timeline == nil {
		return []domain.TimelineEvent{}, nil
	}
	return s.timeline.List(orderID)
}

func allowedList(from domain.OrderStatus) string {
	next := domain.NextStatuses(from)
	if len(next) == 0 {
		return "none"
	}
	names := make([]string, len(next))
	for i, status := range next {
		names[i] = string(status)
	}
	return strings.Join(names, ", ")
}

func (s *Store) indexLocked(orderID string) int {
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}

func (s *Store) pendingCountLocked() int {
	var count int
	for _, o := range s.orders {
		if o.Status == domain.OrderStatusPending {
			count++
		}
	}
	return count
}

// uniqueNumberLocked генерирует номер, не совпадающий с уже выданными.
// После maxNumberAttempts неудач возвращается последний вариант.
func (s *Store) uniqueNumberLocked(now time.Time) string {
	taken := make(map[string]struct{}, len(s.orders))
	for _, o := range s.orders {
		taken[o.OrderNumber] = struct{}{}
	}

	number := s.newNumber(now)
	for attempt := 1; attempt < maxNumberAttempts; attempt++ {
		if _, dup := taken[number]; !dup {
			return number
		}
		s.logger.WithFields(log.Fields{
			"order_number": number,
			"attempt":      attempt,
		}).Warn("order number collision, regenerating")
		s.metrics.RecordOrderNumberCollision()
		number = s.newNumber(now)
	}
	if _, dup := taken[number]; dup {
		s.logger.WithField("order_number", number).Error("order number still collides after retries")
	}
	return number
}

// persistLocked сохраняет список заказов. Ошибка сохранения не откатывает изменение.
func (s *Store) persistLocked(op string) {
	if err := snapshot.SaveJSON(s.snapshots, domain.OrdersSnapshotKey, s.orders); err != nil {
		s.logger.WithError(err).WithField("op", op).Warn("failed to persist orders")
		s.metrics.RecordSnapshotFailure(domain.OrdersSnapshotKey, snapshot.OpOf(err))
	}
}
