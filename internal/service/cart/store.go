// Package cart хранит корзину покупателя текущей сессии.
package cart

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/metrics"
	"github.com/vladislavdragonenkov/jourmarche/internal/storage/snapshot"
)

// Операции корзины для логов и метрик.
const (
	opAdd      = "add"
	opUpdate   = "update"
	opRemove   = "remove"
	opClear    = "clear"
	opCheckout = "checkout"
)

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

// WithMetrics подключает prometheus-метрики.
func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// Store — корзина с пересчётом суммы и сохранением снимка после каждого изменения.
// Все операции сериализованы мьютексом.
type Store struct {
	mu        sync.Mutex
	cart      domain.Cart
	snapshots domain.SnapshotStore
	logger    *log.Entry
	metrics   *metrics.StorefrontMetrics
}

// NewStore восстанавливает корзину из снимка. Отсутствующий или повреждённый снимок
// даёт пустую корзину.
func NewStore(snapshots domain.SnapshotStore, opts ...Option) *Store {
	s := &Store{
		cart:      domain.EmptyCart(),
		snapshots: snapshots,
		logger:    log.WithField("component", "cart-store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.restore()
	return s
}

func (s *Store) restore() {
	var restored domain.Cart
	found, err := snapshot.LoadJSON(s.snapshots, domain.CartSnapshotKey, &restored)
	if err != nil {
		s.logger.WithError(err).WithField("key", domain.CartSnapshotKey).Warn("failed to restore cart, starting empty")
		s.metrics.RecordSnapshotFailure(domain.CartSnapshotKey, snapshot.OpOf(err))
		return
	}
	if !found {
		return
	}

	// Сумма в снимке не является источником истины.
	restored.Recalculate()
	s.cart = restored
	s.logger.WithFields(log.Fields{
		"items": len(restored.Items),
		"total": restored.Total,
	}).Debug("cart restored from snapshot")
}

// AddToCart добавляет товар или увеличивает количество уже лежащей позиции.
// Количество меньше 1 трактуется как 1. Остаток товара не проверяется.
// Выбранные варианты берутся из первого добавления и при слиянии не меняются.
func (s *Store) AddToCart(product domain.Product, quantity int, variants *domain.VariantSelection) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		quantity = 1
	}

	if idx := s.cart.IndexOf(product.ID); idx >= 0 {
		s.cart.Items[idx].Quantity += quantity
	} else {
		item := domain.CartItem{Product: product.Clone(), Quantity: quantity}
		if variants != nil {
			v := *variants
			item.SelectedVariants = &v
		}
		s.cart.Items = append(s.cart.Items, item)
	}

	return s.commitLocked(opAdd)
}

// RemoveFromCart удаляет позицию товара. Отсутствующий товар не ошибка.
func (s *Store) RemoveFromCart(productID string) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(productID)
	return s.commitLocked(opRemove)
}

// UpdateQuantity перезаписывает количество. quantity <= 0 удаляет позицию.
func (s *Store) UpdateQuantity(productID string, quantity int) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(productID)
		return s.commitLocked(opRemove)
	}

	if idx := s.cart.IndexOf(productID); idx >= 0 {
		s.cart.Items[idx].Quantity = quantity
	}
	return s.commitLocked(opUpdate)
}

// ClearCart очищает корзину.
func (s *Store) ClearCart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = domain.EmptyCart()
	return s.commitLocked(opClear)
}

// RemoveOrdered вычитает из корзины оформленные позиции. Позиции и единицы товара,
// добавленные после снимка для заказа, остаются в корзине.
func (s *Store) RemoveOrdered(ordered []domain.CartItem) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range ordered {
		idx := s.cart.IndexOf(item.Product.ID)
		if idx < 0 {
			continue
		}
		s.cart.Items[idx].Quantity -= item.Quantity
		if s.cart.Items[idx].Quantity <= 0 {
			s.removeLocked(item.Product.ID)
		}
	}
	if len(s.cart.Items) == 0 {
		s.cart = domain.EmptyCart()
	}
	return s.commitLocked(opCheckout)
}

// Cart возвращает копию текущей корзины.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

// ItemCount возвращает суммарное количество единиц товара.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.ItemCount()
}

// Total возвращает текущую сумму корзины.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Total
}

// StockViolations возвращает позиции, превышающие остаток товара.
func (s *Store) StockViolations() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.StockViolations()
}

func (s *Store) removeLocked(productID string) {
	kept := s.cart.Items[:0]
	for _, item := range s.cart.Items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	s.cart.Items = kept
}

// commitLocked пересчитывает сумму, сохраняет снимок и возвращает копию корзины.
// Ошибка сохранения не откатывает изменение в памяти.
func (s *Store) commitLocked(op string) domain.Cart {
	s.cart.Recalculate()

	if err := snapshot.SaveJSON(s.snapshots, domain.CartSnapshotKey, s.cart); err != nil {
		s.logger.WithError(err).WithField("op", op).Warn("failed to persist cart")
		s.metrics.RecordSnapshotFailure(domain.CartSnapshotKey, snapshot.OpOf(err))
	}
	s.metrics.RecordCartMutation(op, s.cart.ItemCount(), s.cart.Total)

	return s.cart.Clone()
}
