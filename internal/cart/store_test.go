package cart

import (
	"context"
	"testing"

	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestAddItemFirstLine(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	line, err := store.AddItem(context.Background(), burger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", line.Quantity)
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("expected 1 line, got %d", got)
	}
	if got := store.TotalItems(); got != 1 {
		t.Fatalf("expected totalItems 1, got %d", got)
	}
	if got := store.TotalPrice(); !got.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("expected totalPrice 10, got %s", got)
	}
	if id, ok := store.RestaurantID(); !ok || id != "r1" {
		t.Fatalf("expected restaurant r1, got %q ok=%v", id, ok)
	}
}

func TestAddItemRejectsCrossRestaurant(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	if _, err := store.AddItem(context.Background(), burger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := burger()
	other.RestaurantID = "r2"
	other.RestaurantName = "Other Place"

	_, err := store.AddItem(context.Background(), other)
	if err == nil {
		t.Fatal("expected cross-restaurant add to fail")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCrossRestaurant {
		t.Fatalf("unexpected error code: %v", err)
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("cart should be unchanged, got %d lines", got)
	}
}

func TestAddItemMergesSameIdentity(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	item := burger()
	item.Customizations = []string{"extra cheese"}

	first, err := store.AddItem(context.Background(), item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.AddItem(context.Background(), item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected single merged line, got %d", store.Len())
	}
	if second.ID != first.ID {
		t.Fatalf("merge should reuse the existing line id")
	}
	if second.Quantity != 2 {
		t.Fatalf("expected quantity 2 after merge, got %d", second.Quantity)
	}
}

func TestAddItemMergeIsCustomizationSensitive(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	plain := burger()
	cheesy := burger()
	cheesy.Customizations = []string{"extra cheese"}

	if _, err := store.AddItem(context.Background(), plain); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.AddItem(context.Background(), cheesy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.Len() != 2 {
		t.Fatalf("expected 2 distinct lines, got %d", store.Len())
	}
}

func TestAddItemMergeIsOrderSensitive(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	a := burger()
	a.Customizations = []string{"bacon", "extra cheese"}
	b := burger()
	b.Customizations = []string{"extra cheese", "bacon"}

	if _, err := store.AddItem(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.AddItem(context.Background(), b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.Len() != 2 {
		t.Fatalf("customization order is part of identity; expected 2 lines, got %d", store.Len())
	}
}

func TestAddItemMergesNilAndEmptyCustomizations(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	bare := burger()
	bare.Customizations = nil
	emptied := burger()
	emptied.Customizations = []string{}

	if _, err := store.AddItem(context.Background(), bare); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	merged, err := store.AddItem(context.Background(), emptied)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No customizations is one identity, however the caller spells it.
	if store.Len() != 1 {
		t.Fatalf("expected nil and empty customizations to merge, got %d lines", store.Len())
	}
	if merged.Quantity != 2 {
		t.Fatalf("expected quantity 2 after merge, got %d", merged.Quantity)
	}
}

func TestUpdateQuantityFloorRemovesLine(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	first, _ := store.AddItem(context.Background(), burger())
	fries := burger()
	fries.MenuItemID = "m2"
	fries.Name = "Fries"
	fries.Price = decimal.RequireFromString("3.50")
	second, _ := store.AddItem(context.Background(), fries)

	store.UpdateQuantity(context.Background(), first.ID, -1)

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 line after floor removal, got %d", len(items))
	}
	if items[0].ID != second.ID {
		t.Fatalf("wrong line removed")
	}

	store.UpdateQuantity(context.Background(), second.ID, 0)
	if store.Len() != 0 {
		t.Fatalf("quantity 0 should remove the line")
	}
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	line, _ := store.AddItem(context.Background(), burger())

	store.UpdateQuantity(context.Background(), line.ID, 4)

	if got := store.TotalItems(); got != 4 {
		t.Fatalf("expected totalItems 4, got %d", got)
	}
	if got := store.TotalPrice(); !got.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("expected totalPrice 40, got %s", got)
	}
}

func TestUpdateQuantityUnknownLineIsNoop(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	store.AddItem(context.Background(), burger())

	store.UpdateQuantity(context.Background(), uuid.New(), 3)
	if got := store.TotalItems(); got != 1 {
		t.Fatalf("unknown line id should not change the cart, totalItems=%d", got)
	}
}

func TestRemoveItemAbsentIsNoop(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	store.AddItem(context.Background(), burger())
	store.RemoveItem(context.Background(), uuid.New())

	if store.Len() != 1 {
		t.Fatalf("removing an absent line must be a no-op")
	}
}

func TestUpdateItemDoesNotRetroactivelyMerge(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	plain := burger()
	cheesy := burger()
	cheesy.Customizations = []string{"extra cheese"}

	first, _ := store.AddItem(context.Background(), plain)
	store.AddItem(context.Background(), cheesy)

	newCustoms := []string{"extra cheese"}
	note := "no pickles"
	store.UpdateItem(context.Background(), first.ID, ItemUpdate{
		Customizations:      &newCustoms,
		SpecialInstructions: &note,
	})

	items := store.Items()
	if len(items) != 2 {
		t.Fatalf("update must not merge lines, got %d", len(items))
	}
	if items[0].SpecialInstructions != "no pickles" {
		t.Fatalf("special instructions not merged: %q", items[0].SpecialInstructions)
	}
	if len(items[0].Customizations) != 1 || items[0].Customizations[0] != "extra cheese" {
		t.Fatalf("customizations not updated: %v", items[0].Customizations)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	store.AddItem(context.Background(), burger())

	store.Clear(context.Background())
	store.Clear(context.Background())

	if store.Len() != 0 || store.TotalItems() != 0 {
		t.Fatalf("expected empty cart after clear")
	}
	if got := store.TotalPrice(); !got.IsZero() {
		t.Fatalf("expected zero total, got %s", got)
	}
	if _, ok := store.RestaurantID(); ok {
		t.Fatalf("empty cart should have no restaurant")
	}
	if !store.CanAdd("r2") {
		t.Fatalf("cleared cart should accept any restaurant")
	}
}

func TestTotalsTrackEveryMutation(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	burgerLine, _ := store.AddItem(context.Background(), burger())

	fries := burger()
	fries.MenuItemID = "m2"
	fries.Name = "Fries"
	fries.Price = decimal.RequireFromString("3.25")
	friesLine, _ := store.AddItem(context.Background(), fries)

	store.UpdateQuantity(context.Background(), burgerLine.ID, 2)
	store.UpdateQuantity(context.Background(), friesLine.ID, 3)

	wantItems := 0
	wantPrice := decimal.Zero
	for _, line := range store.Items() {
		wantItems += line.Quantity
		wantPrice = wantPrice.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if got := store.TotalItems(); got != wantItems {
		t.Fatalf("totalItems drifted: got %d want %d", got, wantItems)
	}
	if got := store.TotalPrice(); !got.Equal(wantPrice) {
		t.Fatalf("totalPrice drifted: got %s want %s", got, wantPrice)
	}
	if !wantPrice.Equal(decimal.RequireFromString("29.75")) {
		t.Fatalf("unexpected fixture arithmetic: %s", wantPrice)
	}
}

func TestAddItemValidatesCandidate(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})

	missing := burger()
	missing.MenuItemID = " "
	if _, err := store.AddItem(context.Background(), missing); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for blank menu item id, got %v", err)
	}

	negative := burger()
	negative.Price = decimal.RequireFromString("-1")
	if _, err := store.AddItem(context.Background(), negative); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}

	if store.Len() != 0 {
		t.Fatalf("rejected adds must not mutate the cart")
	}
}

func TestItemsReturnsCopies(t *testing.T) {
	t.Parallel()

	store := NewStore(StoreOptions{})
	item := burger()
	item.Customizations = []string{"extra cheese"}
	store.AddItem(context.Background(), item)

	items := store.Items()
	items[0].Customizations[0] = "mutated"
	items[0].Quantity = 99

	fresh := store.Items()
	if fresh[0].Customizations[0] != "extra cheese" || fresh[0].Quantity != 1 {
		t.Fatalf("Items must return defensive copies")
	}
}

func burger() NewLineItem {
	return NewLineItem{
		MenuItemID:     "m1",
		Name:           "Classic Burger",
		Price:          decimal.RequireFromString("10"),
		Image:          "https://img.example/burger.jpg",
		RestaurantID:   "r1",
		RestaurantName: "Burger Barn",
	}
}
