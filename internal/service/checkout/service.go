// Package checkout оформляет заказ из текущей корзины.
package checkout

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/metrics"
)

// Магазин по умолчанию для позиций без привязки к магазину.
const (
	FallbackShopID   = "shop_1"
	FallbackShopName = "Boutique"

	// DefaultDeliveryFee — стоимость доставки в FCFA, если у магазина она не задана.
	DefaultDeliveryFee int64 = 2000
)

// CartStore — часть корзины, нужная для оформления.
type CartStore interface {
	Cart() domain.Cart
	RemoveOrdered(ordered []domain.CartItem) domain.Cart
}

// OrderStore создаёт заказы.
type OrderStore interface {
	CreateOrder(draft domain.OrderDraft) domain.Order
}

// ShopDirectory отдаёт условия доставки магазина.
type ShopDirectory interface {
	Shop(id string) (domain.Shop, error)
}

// Customer — контактные данные покупателя из формы оформления.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Request — запрос на оформление заказа.
type Request struct {
	Customer      Customer             `json:"customer"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	DeliveryType  domain.DeliveryType  `json:"deliveryType"`
	Notes         string               `json:"notes,omitempty"`
}

// Validate проверяет обязательные поля запроса.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Customer.Name) == "" || strings.TrimSpace(r.Customer.Phone) == "" {
		return domain.ErrCustomerRequired
	}
	if !r.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPaymentMethod, r.PaymentMethod)
	}
	if !r.DeliveryType.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDeliveryType, r.DeliveryType)
	}
	if r.DeliveryType == domain.DeliveryTypeDelivery && strings.TrimSpace(r.Customer.Address) == "" {
		return domain.ErrAddressRequired
	}
	return nil
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics подключает prometheus-метрики.
func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDefaultDeliveryFee задаёт стоимость доставки для магазинов без своих условий.
func WithDefaultDeliveryFee(fee int64) Option {
	return func(s *Service) {
		if fee >= 0 {
			s.defaultFee = fee
		}
	}
}

// WithShops подключает справочник магазинов.
func WithShops(shops ShopDirectory) Option {
	return func(s *Service) {
		s.shops = shops
	}
}

// Service связывает корзину и заказы.
type Service struct {
	cart       CartStore
	orders     OrderStore
	shops      ShopDirectory
	defaultFee int64
	logger     *log.Entry
	metrics    *metrics.StorefrontMetrics
}

// NewService создаёт сервис оформления.
func NewService(cart CartStore, orders OrderStore, opts ...Option) *Service {
	s := &Service{
		cart:       cart,
		orders:     orders,
		defaultFee: DefaultDeliveryFee,
		logger:     log.WithField("component", "checkout"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder оформляет заказ: снимок корзины, магазин первой позиции, стоимость доставки,
// создание заказа и очистка корзины. Из корзины убираются только оформленные позиции,
// поэтому добавленное параллельным запросом не теряется.
func (s *Service) PlaceOrder(req Request) (domain.Order, error) {
	started := time.Now()

	if err := req.Validate(); err != nil {
		s.metrics.RecordCheckoutFailure("invalid_request")
		return domain.Order{}, fmt.Errorf("checkout: %w", err)
	}

	current := s.cart.Cart()
	if current.IsEmpty() {
		s.metrics.RecordCheckoutFailure("empty_cart")
		return domain.Order{}, fmt.Errorf("checkout: %w", domain.ErrCartEmpty)
	}

	shopID, shopName := shopOf(current)
	fee, err := s.deliveryFee(shopID, req.DeliveryType, current.Total)
	if err != nil {
		s.metrics.RecordCheckoutFailure("delivery_unavailable")
		return domain.Order{}, fmt.Errorf("checkout: %w", err)
	}

	draft := domain.OrderDraft{
		Items:           current.Items,
		Total:           current.Total + fee,
		CustomerName:    strings.TrimSpace(req.Customer.Name),
		CustomerPhone:   strings.TrimSpace(req.Customer.Phone),
		CustomerAddress: strings.TrimSpace(req.Customer.Address),
		PaymentMethod:   req.PaymentMethod,
		ShopID:          shopID,
		ShopName:        shopName,
		DeliveryType:    req.DeliveryType,
		DeliveryFee:     &fee,
		DeliveryNotes:   req.Notes,
	}

	created := s.orders.CreateOrder(draft)
	s.cart.RemoveOrdered(current.Items)

	s.logger.WithFields(log.Fields{
		"order_id":      created.ID,
		"shop_id":       shopID,
		"delivery_type": req.DeliveryType,
		"delivery_fee":  fee,
		"total":         created.Total,
	}).Info("checkout completed")
	s.metrics.RecordCheckoutDuration(time.Since(started))

	return created, nil
}

// Quote возвращает стоимость доставки и итог для текущей корзины без оформления.
func (s *Service) Quote(deliveryType domain.DeliveryType) (fee, total int64, err error) {
	if !deliveryType.Valid() {
		return 0, 0, fmt.Errorf("%w: %q", domain.ErrInvalidDeliveryType, deliveryType)
	}
	current := s.cart.Cart()
	if current.IsEmpty() {
		return 0, 0, domain.ErrCartEmpty
	}
	shopID, _ := shopOf(current)
	fee, err = s.deliveryFee(shopID, deliveryType, current.Total)
	if err != nil {
		return 0, 0, err
	}
	return fee, current.Total + fee, nil
}

func shopOf(c domain.Cart) (id, name string) {
	id, name = FallbackShopID, FallbackShopName
	if len(c.Items) == 0 {
		return id, name
	}
	first := c.Items[0].Product
	if first.ShopID != "" {
		id = first.ShopID
	}
	if first.ShopName != "" {
		name = first.ShopName
	}
	return id, name
}

func (s *Service) deliveryFee(shopID string, deliveryType domain.DeliveryType, subtotal int64) (int64, error) {
	var options *domain.DeliveryOptions
	if s.shops != nil {
		shop, err := s.shops.Shop(shopID)
		switch {
		case err == nil:
			options = shop.DeliveryOptions
		case domain.IsNotFound(err):
			s.logger.WithField("shop_id", shopID).Debug("shop not in catalog, using default delivery terms")
		default:
			return 0, err
		}
	}

	if deliveryType == domain.DeliveryTypePickup {
		if options != nil && !options.Pickup {
			return 0, fmt.Errorf("%w: %s does not offer pickup", domain.ErrDeliveryUnavailable, shopID)
		}
		return 0, nil
	}

	if options == nil {
		return s.defaultFee, nil
	}
	if !options.Delivery {
		return 0, fmt.Errorf("%w: %s does not deliver", domain.ErrDeliveryUnavailable, shopID)
	}
	if options.FreeDeliveryMinimum > 0 && subtotal >= options.FreeDeliveryMinimum {
		return 0, nil
	}
	return options.DeliveryFee, nil
}
