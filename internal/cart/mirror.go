package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Persistence is the injected key-value surface the cart is mirrored into.
// Implementations report absence via the ok return rather than an error.
type Persistence interface {
	Load(ctx context.Context, key string) (payload string, ok bool, err error)
	Save(ctx context.Context, key, payload string) error
	Delete(ctx context.Context, key string) error
}

type snapshot struct {
	Items []lineSnapshot `json:"items"`
}

type lineSnapshot struct {
	ID                  uuid.UUID       `json:"id"`
	MenuItemID          string          `json:"menu_item_id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	Image               string          `json:"image,omitempty"`
	Quantity            int             `json:"quantity"`
	RestaurantID        string          `json:"restaurant_id"`
	RestaurantName      string          `json:"restaurant_name"`
	Customizations      []string        `json:"customizations,omitempty"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// mirrorLocked saves the current cart state best-effort. Failures are
// logged and swallowed; in-memory state stays authoritative for the
// session either way.
func (s *Store) mirrorLocked(ctx context.Context) {
	if s.persist == nil || s.sessionKey == "" {
		return
	}

	snap := snapshot{Items: make([]lineSnapshot, 0, len(s.items))}
	for _, line := range s.items {
		snap.Items = append(snap.Items, lineSnapshot{
			ID:                  line.ID,
			MenuItemID:          line.MenuItemID,
			Name:                line.Name,
			Price:               line.Price,
			Image:               line.Image,
			Quantity:            line.Quantity,
			RestaurantID:        line.RestaurantID,
			RestaurantName:      line.RestaurantName,
			Customizations:      copyStrings(line.Customizations),
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart.snapshot.encode", err)
		}
		return
	}

	if err := s.persist.Save(ctx, s.sessionKey, string(payload)); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart.snapshot.save", err)
		}
	}
}

// restore replaces the cart contents with the persisted snapshot, if one
// exists and decodes. Any failure leaves the cart empty; a stale or
// corrupt snapshot must never block a session.
func (s *Store) restore(ctx context.Context) {
	if s.persist == nil || s.sessionKey == "" {
		return
	}

	payload, ok, err := s.persist.Load(ctx, s.sessionKey)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart.snapshot.load", err)
		}
		return
	}
	if !ok {
		return
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "cart.snapshot.decode", err)
		}
		return
	}

	items := make([]*LineItem, 0, len(snap.Items))
	for _, line := range snap.Items {
		if err := validateRestoredLine(line); err != nil {
			if s.logg != nil {
				s.logg.Error(ctx, "cart.snapshot.invalid", err)
			}
			return
		}
		items = append(items, &LineItem{
			ID:                  line.ID,
			MenuItemID:          line.MenuItemID,
			Name:                line.Name,
			Price:               line.Price,
			Image:               line.Image,
			Quantity:            line.Quantity,
			RestaurantID:        line.RestaurantID,
			RestaurantName:      line.RestaurantName,
			Customizations:      line.Customizations,
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func validateRestoredLine(line lineSnapshot) error {
	if line.ID == uuid.Nil {
		return fmt.Errorf("restored line missing id")
	}
	if line.MenuItemID == "" || line.RestaurantID == "" {
		return fmt.Errorf("restored line %s missing identity fields", line.ID)
	}
	if line.Quantity < 1 {
		return fmt.Errorf("restored line %s has quantity %d", line.ID, line.Quantity)
	}
	if line.Price.IsNegative() {
		return fmt.Errorf("restored line %s has negative price", line.ID)
	}
	return nil
}
