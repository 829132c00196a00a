package app

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/service/checkout"
)

func newMemoryDependencies(t *testing.T, cfg Config, publishEvents bool) (*Dependencies, *runtimeStorage) {
	t.Helper()

	storage, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "dependencies"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies failed: %v", err)
	}
	deps, err := NewDependencies(cfg, storage, prometheus.NewRegistry(), publishEvents, log.WithField("test", "dependencies"))
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	return deps, storage
}

func TestNewDependencies_AllFieldsInitialized(t *testing.T) {
	deps, _ := newMemoryDependencies(t, DefaultConfig(), false)

	if deps.Catalog == nil || deps.Metrics == nil {
		t.Fatal("catalog and metrics must be initialized")
	}
	if deps.Cart == nil || deps.Orders == nil || deps.Auth == nil {
		t.Fatal("session stores must be initialized")
	}
	if deps.Checkout == nil || deps.Storefront == nil {
		t.Fatal("checkout and storefront service must be initialized")
	}
	if deps.Logger == nil {
		t.Fatal("logger must be initialized")
	}
}

func TestNewDependencies_NilStorage(t *testing.T) {
	if _, err := NewDependencies(DefaultConfig(), nil, prometheus.NewRegistry(), false, nil); err == nil {
		t.Fatal("expected error for nil storage")
	}
}

func TestNewDependencies_CheckoutFlow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultDeliveryFee = 3000
	deps, storage := newMemoryDependencies(t, cfg, true)

	product, err := deps.Catalog.Product("4")
	if err != nil {
		t.Fatalf("catalog product: %v", err)
	}
	deps.Cart.AddToCart(product, 2, nil)

	order, err := deps.Checkout.PlaceOrder(checkout.Request{
		Customer:      checkout.Customer{Name: "Awa", Phone: "+221770000000", Address: "Plateau"},
		PaymentMethod: domain.PaymentMethodCash,
		DeliveryType:  domain.DeliveryTypeDelivery,
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", order.Status)
	}
	if deps.Cart.ItemCount() != 0 {
		t.Fatal("cart must be cleared after checkout")
	}

	stats, err := storage.outboxRepo.Stats()
	if err != nil {
		t.Fatalf("outbox stats: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected order.created in outbox, got %d pending", stats.PendingCount)
	}

	events, err := deps.Orders.Timeline(order.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one timeline event, got %d", len(events))
	}
}

func TestNewDependencies_OutboxDisabledWithoutBroker(t *testing.T) {
	deps, storage := newMemoryDependencies(t, DefaultConfig(), false)

	deps.Orders.CreateOrder(draftFor(t, deps, "1"))

	stats, err := storage.outboxRepo.Stats()
	if err != nil {
		t.Fatalf("outbox stats: %v", err)
	}
	if stats.PendingCount != 0 {
		t.Fatalf("expected empty outbox without broker, got %d", stats.PendingCount)
	}
}

func TestNewDependencies_StrictTransitions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictTransitions = true
	deps, _ := newMemoryDependencies(t, cfg, false)

	created := deps.Orders.CreateOrder(draftFor(t, deps, "1"))

	if _, err := deps.Orders.UpdateOrderStatus(created.ID, domain.OrderStatusDelivered); err == nil {
		t.Fatal("expected strict policy to reject pending -> delivered")
	}
}

func draftFor(t *testing.T, deps *Dependencies, productID string) domain.OrderDraft {
	t.Helper()

	product, err := deps.Catalog.Product(productID)
	if err != nil {
		t.Fatalf("catalog product %s: %v", productID, err)
	}
	return domain.OrderDraft{
		Items:         []domain.CartItem{{Product: product, Quantity: 1}},
		Total:         product.Price,
		CustomerName:  "Moussa",
		CustomerPhone: "+221770000001",
		PaymentMethod: domain.PaymentMethodMobileMoney,
		ShopID:        product.ShopID,
		DeliveryType:  domain.DeliveryTypePickup,
	}
}
