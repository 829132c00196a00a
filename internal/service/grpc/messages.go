package grpcsvc

import (
	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/service/checkout"
)

// Empty используется там, где у метода нет полей запроса или ответа.
type Empty struct{}

// CartResponse содержит корзину и число единиц товара в ней.
type CartResponse struct {
	Cart      domain.Cart `json:"cart"`
	ItemCount int         `json:"itemCount"`
}

// AddToCartRequest добавляет товар каталога в корзину.
type AddToCartRequest struct {
	ProductID string                   `json:"productId"`
	Quantity  int                      `json:"quantity"`
	Variants  *domain.VariantSelection `json:"variants,omitempty"`
}

// UpdateQuantityRequest задаёт количество позиции; 0 и меньше удаляет её.
type UpdateQuantityRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// RemoveFromCartRequest удаляет позицию.
type RemoveFromCartRequest struct {
	ProductID string `json:"productId"`
}

// QuoteCartRequest запрашивает расчёт доставки для текущей корзины.
type QuoteCartRequest struct {
	DeliveryType domain.DeliveryType `json:"deliveryType"`
}

type QuoteCartResponse struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	Total       int64 `json:"total"`
}

// CheckoutRequest несёт данные формы оформления заказа.
type CheckoutRequest = checkout.Request

// CreateOrderRequest создаёт заказ из готового черновика.
type CreateOrderRequest struct {
	Draft domain.OrderDraft `json:"draft"`
}

// OrderResponse возвращает один заказ.
type OrderResponse struct {
	Order domain.Order `json:"order"`
}

// UpdateOrderStatusRequest меняет статус заказа.
type UpdateOrderStatusRequest struct {
	OrderID string             `json:"orderId"`
	Status  domain.OrderStatus `json:"status"`
}

// GetOrderRequest запрашивает заказ с историей.
type GetOrderRequest struct {
	OrderID string `json:"orderId"`
}

// GetOrderResponse содержит заказ и его историю.
type GetOrderResponse struct {
	Order    domain.Order           `json:"order"`
	Timeline []domain.TimelineEvent `json:"timeline"`
}

// ListOrdersRequest без shopId запрашивает все заказы. Seller выбирает заказы продавца
// и имеет приоритет над shopId.
type ListOrdersRequest struct {
	ShopID string `json:"shopId,omitempty"`
	Seller bool   `json:"seller,omitempty"`
}

// ListOrdersResponse перечисляет заказы, новые первыми, и число ожидающих подтверждения.
type ListOrdersResponse struct {
	Orders         []domain.Order `json:"orders"`
	NewOrdersCount int            `json:"newOrdersCount"`
}

// LoginRequest входит по почте; пароль демо-провайдер не проверяет.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest регистрирует нового пользователя.
type SignupRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Name     string          `json:"name"`
	Role     domain.UserRole `json:"role"`
}

// UpdateUserRequest частично обновляет профиль.
type UpdateUserRequest struct {
	Patch domain.UserPatch `json:"patch"`
}

// UserResponse описывает пользователя сессии; User пуст, если вход не выполнен.
type UserResponse struct {
	User          *domain.User `json:"user,omitempty"`
	Authenticated bool         `json:"authenticated"`
}

// ListProductsRequest фильтрует каталог.
type ListProductsRequest struct {
	Category string `json:"category,omitempty"`
	ShopID   string `json:"shopId,omitempty"`
	Query    string `json:"query,omitempty"`
}

type ListProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type ListCategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
}
