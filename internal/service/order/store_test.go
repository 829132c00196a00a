package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/storage/memory"
)

var fixedNow = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func testDraft(shopID string) domain.OrderDraft {
	fee := int64(2000)
	return domain.OrderDraft{
		Items: []domain.CartItem{{
			Product:  domain.Product{ID: "p1", Title: "Attiéké", Price: 1000, Stock: 10, ShopID: shopID},
			Quantity: 5,
		}},
		Total:           7000,
		CustomerName:    "Amara Koné",
		CustomerPhone:   "+225 07 12 34 56",
		CustomerAddress: "Cocody",
		PaymentMethod:   domain.PaymentMethodMobileMoney,
		ShopID:          shopID,
		ShopName:        "Boutique",
		DeliveryType:    domain.DeliveryTypeDelivery,
		DeliveryFee:     &fee,
	}
}

func newTestStore(t *testing.T, opts ...Option) (*Store, domain.SnapshotStore) {
	t.Helper()
	snapshots := memory.NewSnapshotStore()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewStore(snapshots, opts...), snapshots
}

func TestCreateOrder(t *testing.T) {
	store, _ := newTestStore(t)

	created := store.CreateOrder(testDraft("shop_1"))

	if created.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}
	if created.Total != 7000 {
		t.Fatalf("expected total 7000, got %d", created.Total)
	}
	if !created.CreatedAt.Equal(fixedNow) || !created.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected timestamps: %v %v", created.CreatedAt, created.UpdatedAt)
	}
	if !regexp.MustCompile(`^JDM240301-\d{4}$`).MatchString(created.OrderNumber) {
		t.Fatalf("unexpected order number %q", created.OrderNumber)
	}
	if !regexp.MustCompile(`^order_1709296200000_[0-9a-z]{9}$`).MatchString(created.ID) {
		t.Fatalf("unexpected order id %q", created.ID)
	}
	if store.NewOrdersCount() != 1 {
		t.Fatalf("expected 1 new order, got %d", store.NewOrdersCount())
	}
}

func TestCreateOrderSnapshotsItems(t *testing.T) {
	store, _ := newTestStore(t)
	draft := testDraft("shop_1")

	created := store.CreateOrder(draft)
	draft.Items[0].Quantity = 1
	draft.Items[0].Product.Price = 1

	stored, ok := store.GetOrderByID(created.ID)
	if !ok {
		t.Fatal("order not found")
	}
	if stored.Items[0].Quantity != 5 || stored.Items[0].Product.Price != 1000 {
		t.Fatalf("order items changed with the draft: %+v", stored.Items[0])
	}

	created.Items[0].Quantity = 42
	stored, _ = store.GetOrderByID(created.ID)
	if stored.Items[0].Quantity != 5 {
		t.Fatal("returned order aliases store state")
	}
}

func TestOrdersAreMostRecentFirst(t *testing.T) {
	store, _ := newTestStore(t)

	first := store.CreateOrder(testDraft("shop_1"))
	second := store.CreateOrder(testDraft("shop_2"))
	third := store.CreateOrder(testDraft("shop_1"))

	orders := store.Orders()
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if orders[0].ID != third.ID || orders[1].ID != second.ID || orders[2].ID != first.ID {
		t.Fatalf("unexpected order: %s %s %s", orders[0].ID, orders[1].ID, orders[2].ID)
	}

	byShop := store.GetOrdersByShop("shop_1")
	if len(byShop) != 2 || byShop[0].ID != third.ID || byShop[1].ID != first.ID {
		t.Fatalf("unexpected shop orders: %+v", byShop)
	}
	if len(store.GetOrdersByShop("shop_9")) != 0 {
		t.Fatal("expected no orders for unknown shop")
	}
	if len(store.SellerOrders()) != 3 {
		t.Fatal("seller sees every order")
	}
}

func TestUpdateOrderStatusPermissive(t *testing.T) {
	clock := fixedNow
	store, _ := newTestStore(t, WithClock(func() time.Time { return clock }))
	created := store.CreateOrder(testDraft("shop_1"))

	clock = fixedNow.Add(time.Hour)
	updated, err := store.UpdateOrderStatus(created.ID, domain.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.OrderStatusDelivered || !updated.UpdatedAt.Equal(clock) {
		t.Fatalf("unexpected order after update: %+v", updated)
	}
	if !updated.CreatedAt.Equal(fixedNow) {
		t.Fatal("createdAt must not change")
	}

	back, err := store.UpdateOrderStatus(created.ID, domain.OrderStatusPending)
	if err != nil {
		t.Fatalf("permissive policy must allow delivered -> pending: %v", err)
	}
	if back.Status != domain.OrderStatusPending || store.NewOrdersCount() != 1 {
		t.Fatalf("unexpected state: %+v", back)
	}
}

func TestUpdateOrderStatusStrict(t *testing.T) {
	store, _ := newTestStore(t, WithStatusPolicy(domain.StrictPolicy{}))
	created := store.CreateOrder(testDraft("shop_1"))

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusPreparing,
		domain.OrderStatusReadyForPickup,
		domain.OrderStatusInDelivery,
		domain.OrderStatusDelivered,
	} {
		if _, err := store.UpdateOrderStatus(created.ID, status); err != nil {
			t.Fatalf("strict step to %s failed: %v", status, err)
		}
	}

	_, err := store.UpdateOrderStatus(created.ID, domain.OrderStatusPending)
	if !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if !strings.Contains(err.Error(), "allowed: none") {
		t.Fatalf("terminal status must list no transitions: %v", err)
	}
	stored, _ := store.GetOrderByID(created.ID)
	if stored.Status != domain.OrderStatusDelivered {
		t.Fatalf("rejected transition changed state: %s", stored.Status)
	}
}

func TestUpdateOrderStatusStrictListsAllowed(t *testing.T) {
	store, _ := newTestStore(t, WithStatusPolicy(domain.StrictPolicy{}))
	created := store.CreateOrder(testDraft("shop_1"))

	_, err := store.UpdateOrderStatus(created.ID, domain.OrderStatusDelivered)
	if !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	want := fmt.Sprintf("allowed: %s, %s", domain.OrderStatusConfirmed, domain.OrderStatusCancelled)
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q in %v", want, err)
	}
}

func TestUpdateOrderStatusErrors(t *testing.T) {
	store, _ := newTestStore(t)
	created := store.CreateOrder(testDraft("shop_1"))

	if _, err := store.UpdateOrderStatus("missing", domain.OrderStatusConfirmed); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := store.UpdateOrderStatus(created.ID, "shipped"); !errors.Is(err, domain.ErrUnknownOrderStatus) {
		t.Fatalf("expected ErrUnknownOrderStatus, got %v", err)
	}
	if _, err := store.UpdateOrderStatus("", domain.OrderStatusConfirmed); !errors.Is(err, domain.ErrOrderIDRequired) {
		t.Fatalf("expected ErrOrderIDRequired, got %v", err)
	}

	stored, _ := store.GetOrderByID(created.ID)
	if stored.Status != domain.OrderStatusPending || !stored.UpdatedAt.Equal(fixedNow) {
		t.Fatalf("failed updates must not touch state: %+v", stored)
	}
}

func TestGetOrderByIDMissing(t *testing.T) {
	store, _ := newTestStore(t)
	if _, ok := store.GetOrderByID("missing"); ok {
		t.Fatal("expected missing order")
	}
}

func TestPersistAndRestoreOrders(t *testing.T) {
	store, snapshots := newTestStore(t)
	eta := fixedNow.Add(2 * time.Hour)
	draft := testDraft("shop_1")
	draft.EstimatedDeliveryTime = &eta
	created := store.CreateOrder(draft)
	if _, err := store.UpdateOrderStatus(created.ID, domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("update: %v", err)
	}

	raw, err := snapshots.Load(domain.OrdersSnapshotKey)
	if err != nil {
		t.Fatalf("orders not persisted: %v", err)
	}
	if !strings.Contains(string(raw), `"createdAt":"2024-03-01T12:30:00Z"`) {
		t.Fatalf("dates must be persisted as RFC 3339 text: %s", raw)
	}

	restored := NewStore(snapshots).Orders()
	if len(restored) != 1 {
		t.Fatalf("expected 1 restored order, got %d", len(restored))
	}
	got := restored[0]
	if got.Status != domain.OrderStatusConfirmed || !got.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected restored order: %+v", got)
	}
	if got.EstimatedDeliveryTime == nil || !got.EstimatedDeliveryTime.Equal(eta) {
		t.Fatalf("estimatedDeliveryTime lost: %v", got.EstimatedDeliveryTime)
	}
}

func TestRestoreAcceptsBrowserDates(t *testing.T) {
	snapshots := memory.NewSnapshotStore()
	_ = snapshots.Save(domain.OrdersSnapshotKey, []byte(`[{
		"id":"order_1","orderNumber":"JDM240301-0042","items":[],"total":0,"status":"pending",
		"createdAt":"2024-03-01T12:30:00.000Z","updatedAt":"2024-03-01T12:31:00.000Z"
	}]`))

	orders := NewStore(snapshots).Orders()
	if len(orders) != 1 || !orders[0].CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected restored orders: %+v", orders)
	}
}

func TestRestoreCorruptSnapshot(t *testing.T) {
	snapshots := memory.NewSnapshotStore()
	_ = snapshots.Save(domain.OrdersSnapshotKey, []byte(`{"not":"a list"}`))

	store := NewStore(snapshots)
	if len(store.Orders()) != 0 {
		t.Fatal("expected empty order list")
	}
	store.CreateOrder(testDraft("shop_1"))
	if len(store.Orders()) != 1 {
		t.Fatal("store must stay usable after a corrupt snapshot")
	}
}

func TestOrderNumberCollisionIsRegenerated(t *testing.T) {
	numbers := []string{"JDM240301-0001", "JDM240301-0001", "JDM240301-0002"}
	var calls int
	gen := func(time.Time) string {
		n := numbers[calls%len(numbers)]
		calls++
		return n
	}
	store, _ := newTestStore(t, WithNumberGenerator(gen))

	first := store.CreateOrder(testDraft("shop_1"))
	second := store.CreateOrder(testDraft("shop_1"))

	if first.OrderNumber == second.OrderNumber {
		t.Fatalf("duplicate order number %s", first.OrderNumber)
	}
	if second.OrderNumber != "JDM240301-0002" {
		t.Fatalf("unexpected regenerated number %s", second.OrderNumber)
	}
}

func TestEventsAreEmitted(t *testing.T) {
	outbox := memory.NewOutboxRepository()
	timeline := memory.NewTimelineRepository()
	clock := fixedNow
	store, _ := newTestStore(t, WithOutbox(outbox), WithTimeline(timeline), WithClock(func() time.Time { return clock }))

	created := store.CreateOrder(testDraft("shop_1"))
	clock = clock.Add(time.Minute)
	if _, err := store.UpdateOrderStatus(created.ID, domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("update: %v", err)
	}

	pending := outbox.AllPending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 outbox messages, got %d", len(pending))
	}
	if pending[0].EventType != domain.EventOrderCreated || pending[1].EventType != domain.EventOrderStatusChanged {
		t.Fatalf("unexpected event types: %s, %s", pending[0].EventType, pending[1].EventType)
	}
	var payload EventPayload
	if err := json.Unmarshal(pending[1].Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.PreviousStatus != domain.OrderStatusPending || payload.Status != domain.OrderStatusConfirmed {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	events, err := store.Timeline(created.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(events) != 2 || events[1].Reason != fmt.Sprintf("%s -> %s", domain.OrderStatusPending, domain.OrderStatusConfirmed) {
		t.Fatalf("unexpected timeline: %+v", events)
	}
}

func TestTimelineWithoutRepository(t *testing.T) {
	store, _ := newTestStore(t)
	events, err := store.Timeline("order_1")
	if err != nil || len(events) != 0 {
		t.Fatalf("expected empty timeline, got %v %v", events, err)
	}
}
