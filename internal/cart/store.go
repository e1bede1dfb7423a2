package cart

import (
	"context"
	"strings"
	"sync"

	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/davidmarceau/dishpatch-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one row of the cart: a menu item snapshot, a quantity and the
// customizations chosen when it was added. Snapshot fields are copied at
// add-time and never re-read from the catalog.
type LineItem struct {
	ID                  uuid.UUID
	MenuItemID          string
	Name                string
	Price               decimal.Decimal
	Image               string
	Quantity            int
	RestaurantID        string
	RestaurantName      string
	Customizations      []string
	SpecialInstructions string
}

// LineTotal returns price * quantity for this line.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// NewLineItem carries the catalog snapshot handed to AddItem. Quantity is
// not part of the payload; adds always contribute one unit.
type NewLineItem struct {
	MenuItemID          string
	Name                string
	Price               decimal.Decimal
	Image               string
	RestaurantID        string
	RestaurantName      string
	Customizations      []string
	SpecialInstructions string
}

// ItemUpdate carries the partial fields UpdateItem merges into a line.
// Changing customizations here never re-merges lines; merge happens only
// at add-time.
type ItemUpdate struct {
	Customizations      *[]string
	SpecialInstructions *string
}

// Store holds the pending line items of a single in-progress order.
// All items share one restaurant; mutations are serialized and mirrored
// into the injected persistence best-effort.
type Store struct {
	mu    sync.Mutex
	items []*LineItem

	sessionKey string
	persist    Persistence
	logg       *logger.Logger
}

// StoreOptions configure a session's cart store.
type StoreOptions struct {
	SessionKey  string
	Persistence Persistence
	Logger      *logger.Logger
}

// NewStore builds an empty cart store. Persistence may be nil, in which
// case the cart lives in memory only.
func NewStore(opts StoreOptions) *Store {
	return &Store{
		sessionKey: opts.SessionKey,
		persist:    opts.Persistence,
		logg:       opts.Logger,
	}
}

// CanAdd reports whether an item from the given restaurant may enter the
// cart: the cart is empty or already belongs to that restaurant.
func (s *Store) CanAdd(restaurantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canAddLocked(restaurantID)
}

func (s *Store) canAddLocked(restaurantID string) bool {
	return len(s.items) == 0 || s.items[0].RestaurantID == restaurantID
}

// AddItem appends the candidate or, when an existing line matches its
// (menuItemId, customizations) identity, increments that line's quantity.
// Adds from a different restaurant than the cart's are rejected; the
// caller is expected to prompt for an explicit clear first.
func (s *Store) AddItem(ctx context.Context, candidate NewLineItem) (LineItem, error) {
	if strings.TrimSpace(candidate.MenuItemID) == "" {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "menu item id is required")
	}
	if strings.TrimSpace(candidate.RestaurantID) == "" {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "restaurant id is required")
	}
	if candidate.Price.IsNegative() {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canAddLocked(candidate.RestaurantID) {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeCrossRestaurant, "cannot add items from a different restaurant").
			WithDetails(map[string]any{
				"cart_restaurant_id":      s.items[0].RestaurantID,
				"requested_restaurant_id": candidate.RestaurantID,
			})
	}

	for _, line := range s.items {
		if line.MenuItemID == candidate.MenuItemID && customizationsEqual(line.Customizations, candidate.Customizations) {
			line.Quantity++
			s.mirrorLocked(ctx)
			return copyLine(line), nil
		}
	}

	line := &LineItem{
		ID:                  uuid.New(),
		MenuItemID:          candidate.MenuItemID,
		Name:                candidate.Name,
		Price:               candidate.Price,
		Image:               candidate.Image,
		Quantity:            1,
		RestaurantID:        candidate.RestaurantID,
		RestaurantName:      candidate.RestaurantName,
		Customizations:      copyStrings(candidate.Customizations),
		SpecialInstructions: candidate.SpecialInstructions,
	}
	s.items = append(s.items, line)
	s.mirrorLocked(ctx)
	return copyLine(line), nil
}

// RemoveItem deletes the line if present; removing an absent line is a
// no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, lineID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeLocked(lineID) {
		s.mirrorLocked(ctx)
	}
}

func (s *Store) removeLocked(lineID uuid.UUID) bool {
	for i, line := range s.items {
		if line.ID == lineID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateQuantity sets the line's quantity; a quantity at or below zero
// removes the line. Unknown line ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		if s.removeLocked(lineID) {
			s.mirrorLocked(ctx)
		}
		return
	}

	for _, line := range s.items {
		if line.ID == lineID {
			line.Quantity = quantity
			s.mirrorLocked(ctx)
			return
		}
	}
}

// UpdateItem merges the given partial fields into the line. Unknown line
// ids are ignored.
func (s *Store) UpdateItem(ctx context.Context, lineID uuid.UUID, update ItemUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range s.items {
		if line.ID == lineID {
			if update.Customizations != nil {
				line.Customizations = copyStrings(*update.Customizations)
			}
			if update.SpecialInstructions != nil {
				line.SpecialInstructions = *update.SpecialInstructions
			}
			s.mirrorLocked(ctx)
			return
		}
	}
}

// Clear empties the cart. Idempotent.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return
	}
	s.items = nil
	s.mirrorLocked(ctx)
}

// Items returns the lines in insertion order as defensive copies.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, 0, len(s.items))
	for _, line := range s.items {
		out = append(out, copyLine(line))
	}
	return out
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalItems returns the sum of quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.items {
		total += line.Quantity
	}
	return total
}

// TotalPrice returns the sum of price * quantity across all lines.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, line := range s.items {
		total = total.Add(line.LineTotal())
	}
	return total
}

// RestaurantID returns the owning restaurant and whether the cart has one.
func (s *Store) RestaurantID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return "", false
	}
	return s.items[0].RestaurantID, true
}

// RestaurantName returns the owning restaurant's display name, if any.
func (s *Store) RestaurantName() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return "", false
	}
	return s.items[0].RestaurantName, true
}

// Merge identity is order-sensitive and value-sensitive.
func customizationsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func copyLine(line *LineItem) LineItem {
	out := *line
	out.Customizations = copyStrings(line.Customizations)
	return out
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
