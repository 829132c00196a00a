package grpcsvc

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/jourmarche/internal/catalog"
	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/service/checkout"
)

// CartStore — корзина сессии.
type CartStore interface {
	Cart() domain.Cart
	ItemCount() int
	AddToCart(product domain.Product, quantity int, variants *domain.VariantSelection) domain.Cart
	UpdateQuantity(productID string, quantity int) domain.Cart
	RemoveFromCart(productID string) domain.Cart
	ClearCart() domain.Cart
}

// OrderStore — заказы витрины.
type OrderStore interface {
	CreateOrder(draft domain.OrderDraft) domain.Order
	UpdateOrderStatus(orderID string, status domain.OrderStatus) (domain.Order, error)
	GetOrderByID(orderID string) (domain.Order, bool)
	GetOrdersByShop(shopID string) []domain.Order
	Orders() []domain.Order
	SellerOrders() []domain.Order
	NewOrdersCount() int
	Timeline(orderID string) ([]domain.TimelineEvent, error)
}

// AuthStore — пользователь сессии.
type AuthStore interface {
	Login(ctx context.Context, email, password string) (domain.User, error)
	Signup(ctx context.Context, req domain.SignupRequest) (domain.User, error)
	Logout()
	UpdateUser(patch domain.UserPatch) (domain.User, bool)
	CurrentUser() (domain.User, bool)
}

// Checkout оформляет заказ из корзины.
type Checkout interface {
	PlaceOrder(req checkout.Request) (domain.Order, error)
	Quote(deliveryType domain.DeliveryType) (fee, total int64, err error)
}

// Catalog — справочник товаров и разделов.
type Catalog interface {
	Product(id string) (domain.Product, error)
	Products(filter catalog.ProductFilter) []domain.Product
	Categories() []domain.Category
}

// StorefrontService реализует jourmarche.v1.Storefront поверх хранилищ сессии.
type StorefrontService struct {
	cart     CartStore
	orders   OrderStore
	auth     AuthStore
	checkout Checkout
	catalog  Catalog
	logger   *log.Entry
}

// Dependencies — зависимости StorefrontService.
type Dependencies struct {
	Cart     CartStore
	Orders   OrderStore
	Auth     AuthStore
	Checkout Checkout
	Catalog  Catalog
	Logger   *log.Entry
}

// NewStorefrontService конструирует сервис с зависимостями.
func NewStorefrontService(deps Dependencies) *StorefrontService {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "storefront-grpc")
	}
	return &StorefrontService{
		cart:     deps.Cart,
		orders:   deps.Orders,
		auth:     deps.Auth,
		checkout: deps.Checkout,
		catalog:  deps.Catalog,
		logger:   logger,
	}
}

var _ StorefrontServer = (*StorefrontService)(nil)

func (s *StorefrontService) cartResponse(c domain.Cart) *CartResponse {
	return &CartResponse{Cart: c, ItemCount: c.ItemCount()}
}

// GetCart возвращает корзину.
func (s *StorefrontService) GetCart(context.Context, *Empty) (*CartResponse, error) {
	return s.cartResponse(s.cart.Cart()), nil
}

// AddToCart добавляет товар каталога; незаданное количество считается равным 1.
func (s *StorefrontService) AddToCart(_ context.Context, req *AddToCartRequest) (*CartResponse, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "productId is required")
	}
	if req.Quantity < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "quantity must not be negative, got %d", req.Quantity)
	}
	product, err := s.catalog.Product(req.ProductID)
	if err != nil {
		return nil, s.toStatus(err, "AddToCart")
	}
	if product.Status == domain.ProductStatusDraft {
		return nil, status.Errorf(codes.FailedPrecondition, "product %s is not published", product.ID)
	}
	return s.cartResponse(s.cart.AddToCart(product, req.Quantity, req.Variants)), nil
}

// UpdateQuantity задаёт количество позиции.
func (s *StorefrontService) UpdateQuantity(_ context.Context, req *UpdateQuantityRequest) (*CartResponse, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "productId is required")
	}
	return s.cartResponse(s.cart.UpdateQuantity(req.ProductID, req.Quantity)), nil
}

// RemoveFromCart удаляет позицию; отсутствующая позиция не ошибка.
func (s *StorefrontService) RemoveFromCart(_ context.Context, req *RemoveFromCartRequest) (*CartResponse, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "productId is required")
	}
	return s.cartResponse(s.cart.RemoveFromCart(req.ProductID)), nil
}

// ClearCart очищает корзину.
func (s *StorefrontService) ClearCart(context.Context, *Empty) (*CartResponse, error) {
	return s.cartResponse(s.cart.ClearCart()), nil
}

// QuoteCart считает доставку и итог корзины, не оформляя заказ.
func (s *StorefrontService) QuoteCart(_ context.Context, req *QuoteCartRequest) (*QuoteCartResponse, error) {
	fee, total, err := s.checkout.Quote(req.DeliveryType)
	if err != nil {
		return nil, s.toStatus(err, "QuoteCart")
	}
	return &QuoteCartResponse{Subtotal: total - fee, DeliveryFee: fee, Total: total}, nil
}

// Checkout оформляет заказ из корзины.
func (s *StorefrontService) Checkout(_ context.Context, req *CheckoutRequest) (*OrderResponse, error) {
	created, err := s.checkout.PlaceOrder(*req)
	if err != nil {
		return nil, s.toStatus(err, "Checkout")
	}
	return &OrderResponse{Order: created}, nil
}

// CreateOrder создаёт заказ из черновика без участия корзины.
func (s *StorefrontService) CreateOrder(_ context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	if len(req.Draft.Items) == 0 {
		return nil, status.Error(codes.InvalidArgument, domain.ErrItemsRequired.Error())
	}
	return &OrderResponse{Order: s.orders.CreateOrder(req.Draft)}, nil
}

// UpdateOrderStatus меняет статус заказа.
func (s *StorefrontService) UpdateOrderStatus(_ context.Context, req *UpdateOrderStatusRequest) (*OrderResponse, error) {
	updated, err := s.orders.UpdateOrderStatus(req.OrderID, req.Status)
	if err != nil {
		return nil, s.toStatus(err, "UpdateOrderStatus")
	}
	return &OrderResponse{Order: updated}, nil
}

// GetOrder возвращает заказ и его историю.
func (s *StorefrontService) GetOrder(_ context.Context, req *GetOrderRequest) (*GetOrderResponse, error) {
	if req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, domain.ErrOrderIDRequired.Error())
	}
	found, ok := s.orders.GetOrderByID(req.OrderID)
	if !ok {
		return nil, status.Error(codes.NotFound, domain.ErrOrderNotFound.Error())
	}
	timeline, err := s.orders.Timeline(req.OrderID)
	if err != nil {
		return nil, s.toStatus(err, "GetOrder")
	}
	return &GetOrderResponse{Order: found, Timeline: timeline}, nil
}

// ListOrders возвращает заказы продавца, магазина или все заказы.
func (s *StorefrontService) ListOrders(_ context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	var orders []domain.Order
	switch {
	case req.Seller:
		orders = s.orders.SellerOrders()
	case req.ShopID != "":
		orders = s.orders.GetOrdersByShop(req.ShopID)
	default:
		orders = s.orders.Orders()
	}
	return &ListOrdersResponse{Orders: orders, NewOrdersCount: s.orders.NewOrdersCount()}, nil
}

// Login выполняет вход.
func (s *StorefrontService) Login(ctx context.Context, req *LoginRequest) (*UserResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, status.Error(codes.InvalidArgument, domain.ErrEmailRequired.Error())
	}
	user, err := s.auth.Login(ctx, email, req.Password)
	if err != nil {
		return nil, s.toStatus(err, "Login")
	}
	return &UserResponse{User: &user, Authenticated: true}, nil
}

// Signup регистрирует пользователя; по умолчанию с ролью покупателя.
func (s *StorefrontService) Signup(ctx context.Context, req *SignupRequest) (*UserResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, status.Error(codes.InvalidArgument, domain.ErrEmailRequired.Error())
	}
	role := req.Role
	if role == "" {
		role = domain.UserRoleBuyer
	}
	if !role.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown role %q", role)
	}
	user, err := s.auth.Signup(ctx, domain.SignupRequest{
		Email:    email,
		Password: req.Password,
		Name:     req.Name,
		Role:     role,
	})
	if err != nil {
		return nil, s.toStatus(err, "Signup")
	}
	return &UserResponse{User: &user, Authenticated: true}, nil
}

// Logout завершает сессию.
func (s *StorefrontService) Logout(context.Context, *Empty) (*UserResponse, error) {
	s.auth.Logout()
	return &UserResponse{}, nil
}

// CurrentUser возвращает пользователя сессии.
func (s *StorefrontService) CurrentUser(context.Context, *Empty) (*UserResponse, error) {
	user, ok := s.auth.CurrentUser()
	if !ok {
		return &UserResponse{}, nil
	}
	return &UserResponse{User: &user, Authenticated: true}, nil
}

// UpdateUser обновляет профиль вошедшего пользователя.
func (s *StorefrontService) UpdateUser(_ context.Context, req *UpdateUserRequest) (*UserResponse, error) {
	if req.Patch.Role != nil && !req.Patch.Role.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown role %q", *req.Patch.Role)
	}
	user, ok := s.auth.UpdateUser(req.Patch)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, domain.ErrNotAuthenticated.Error())
	}
	return &UserResponse{User: &user, Authenticated: true}, nil
}

// ListProducts возвращает опубликованные товары по фильтру.
func (s *StorefrontService) ListProducts(_ context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	return &ListProductsResponse{Products: s.catalog.Products(catalog.ProductFilter{
		Category: req.Category,
		ShopID:   req.ShopID,
		Query:    req.Query,
	})}, nil
}

// ListCategories возвращает разделы каталога.
func (s *StorefrontService) ListCategories(context.Context, *Empty) (*ListCategoriesResponse, error) {
	return &ListCategoriesResponse{Categories: s.catalog.Categories()}, nil
}

func (s *StorefrontService) toStatus(err error, operation string) error {
	code := CodeOf(err)
	if code == codes.Internal {
		s.logger.WithError(err).WithField("operation", operation).Error("storefront call failed")
		return status.Error(codes.Internal, fmt.Sprintf("%s failed", operation))
	}
	s.logger.WithError(err).WithFields(log.Fields{
		"operation": operation,
		"code":      code.String(),
	}).Debug("storefront call rejected")
	return status.Error(code, err.Error())
}
