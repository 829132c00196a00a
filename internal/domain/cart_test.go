package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
)

func product(id string, price int64, stock int) domain.Product {
	return domain.Product{ID: id, Title: "product " + id, Price: price, Stock: stock, ShopID: "shop_1", ShopName: "Boutique"}
}

func TestCartRecalculate(t *testing.T) {
	cart := domain.Cart{Items: []domain.CartItem{
		{Product: product("p1", 1000, 10), Quantity: 2},
		{Product: product("p2", 250, 10), Quantity: 3},
	}}
	cart.Recalculate()

	if cart.Total != 2750 {
		t.Fatalf("expected total 2750, got %d", cart.Total)
	}
	if cart.ItemCount() != 5 {
		t.Fatalf("expected 5 units, got %d", cart.ItemCount())
	}
	if cart.IndexOf("p2") != 1 || cart.IndexOf("missing") != -1 {
		t.Fatalf("unexpected IndexOf results")
	}
}

func TestCartRecalculateNilItems(t *testing.T) {
	cart := domain.Cart{Total: 99}
	cart.Recalculate()
	if cart.Items == nil || cart.Total != 0 || !cart.IsEmpty() {
		t.Fatalf("expected normalized empty cart, got %+v", cart)
	}
}

func TestCartCloneIsDeep(t *testing.T) {
	orig := domain.Cart{Items: []domain.CartItem{{
		Product:          product("p1", 1000, 1),
		Quantity:         1,
		SelectedVariants: &domain.VariantSelection{Size: "M"},
	}}}
	orig.Items[0].Product.Images = []string{"a.jpg"}

	clone := orig.Clone()
	clone.Items[0].Quantity = 7
	clone.Items[0].SelectedVariants.Size = "XL"
	clone.Items[0].Product.Images[0] = "b.jpg"

	if orig.Items[0].Quantity != 1 || orig.Items[0].SelectedVariants.Size != "M" || orig.Items[0].Product.Images[0] != "a.jpg" {
		t.Fatalf("clone shares state with original: %+v", orig.Items[0])
	}
}

func TestCartStockViolations(t *testing.T) {
	cart := domain.Cart{Items: []domain.CartItem{
		{Product: product("p1", 100, 2), Quantity: 3},
		{Product: product("p2", 100, 5), Quantity: 5},
	}}
	violations := cart.StockViolations()
	if len(violations) != 1 || violations[0].Product.ID != "p1" {
		t.Fatalf("expected only p1 to exceed stock, got %+v", violations)
	}
}
