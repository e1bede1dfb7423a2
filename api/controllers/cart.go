package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/davidmarceau/dishpatch-backend/api/middleware"
	"github.com/davidmarceau/dishpatch-backend/api/responses"
	"github.com/davidmarceau/dishpatch-backend/api/validators"
	"github.com/davidmarceau/dishpatch-backend/internal/cart"
	"github.com/davidmarceau/dishpatch-backend/internal/catalog"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/davidmarceau/dishpatch-backend/pkg/logger"
	"github.com/davidmarceau/dishpatch-backend/pkg/metrics"
)

// MenuResolver resolves catalog snapshots for add-to-cart.
type MenuResolver interface {
	GetRestaurant(ctx context.Context, restaurantID string) (*catalog.Restaurant, error)
	GetMenuItem(ctx context.Context, restaurantID, menuItemID string) (*catalog.MenuItem, error)
}

type cartLineResponse struct {
	ID                  string          `json:"id"`
	MenuItemID          string          `json:"menu_item_id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	Image               string          `json:"image,omitempty"`
	Quantity            int             `json:"quantity"`
	Customizations      []string        `json:"customizations,omitempty"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	LineTotal           decimal.Decimal `json:"line_total"`
}

type cartResponse struct {
	Items          []cartLineResponse `json:"items"`
	RestaurantID   *string            `json:"restaurant_id"`
	RestaurantName *string            `json:"restaurant_name"`
	TotalItems     int                `json:"total_items"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
}

func newCartResponse(store *cart.Store) cartResponse {
	items := store.Items()
	lines := make([]cartLineResponse, 0, len(items))
	for _, item := range items {
		lines = append(lines, cartLineResponse{
			ID:                  item.ID.String(),
			MenuItemID:          item.MenuItemID,
			Name:                item.Name,
			Price:               item.Price,
			Image:               item.Image,
			Quantity:            item.Quantity,
			Customizations:      item.Customizations,
			SpecialInstructions: item.SpecialInstructions,
			LineTotal:           item.LineTotal(),
		})
	}

	resp := cartResponse{
		Items:      lines,
		TotalItems: store.TotalItems(),
		Subtotal:   store.TotalPrice(),
	}
	if id, ok := store.RestaurantID(); ok {
		name, _ := store.RestaurantName()
		resp.RestaurantID = &id
		resp.RestaurantName = &name
	}
	return resp
}

// CartGet returns the session's current cart.
func CartGet(carts *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.Get(r.Context(), sessionID)
		responses.WriteSuccess(w, newCartResponse(store))
	}
}

type addItemRequest struct {
	RestaurantID        string   `json:"restaurant_id" validate:"required"`
	MenuItemID          string   `json:"menu_item_id" validate:"required"`
	Customizations      []string `json:"customizations"`
	SpecialInstructions string   `json:"special_instructions" validate:"max=500"`
}

// CartAddItem resolves the menu item against the catalog and adds one
// unit of it to the session's cart.
func CartAddItem(carts *cart.Manager, menu MenuResolver, mets *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		restaurant, err := menu.GetRestaurant(r.Context(), payload.RestaurantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := menu.GetMenuItem(r.Context(), payload.RestaurantID, payload.MenuItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !item.IsAvailable {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeConflict, "menu item is currently unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.Get(r.Context(), sessionID)
		line, err := store.AddItem(r.Context(), cart.NewLineItem{
			MenuItemID:          item.ID,
			Name:                item.Name,
			Price:               item.Price,
			Image:               item.Image,
			RestaurantID:        restaurant.ID,
			RestaurantName:      restaurant.Name,
			Customizations:      payload.Customizations,
			SpecialInstructions: payload.SpecialInstructions,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mets.IncMutation("add")

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"item_id": line.ID.String(),
			"cart":    newCartResponse(store),
		})
	}
}

type updateItemRequest struct {
	Quantity            *int      `json:"quantity" validate:"omitempty,max=99"`
	Customizations      *[]string `json:"customizations"`
	SpecialInstructions *string   `json:"special_instructions" validate:"omitempty,max=500"`
}

// CartUpdateItem applies partial updates to one cart line. A quantity at
// or below zero removes the line.
func CartUpdateItem(carts *cart.Manager, mets *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.Get(r.Context(), sessionID)

		if payload.Customizations != nil || payload.SpecialInstructions != nil {
			store.UpdateItem(r.Context(), lineID, cart.ItemUpdate{
				Customizations:      payload.Customizations,
				SpecialInstructions: payload.SpecialInstructions,
			})
		}
		if payload.Quantity != nil {
			store.UpdateQuantity(r.Context(), lineID, *payload.Quantity)
		}
		mets.IncMutation("update")

		responses.WriteSuccess(w, newCartResponse(store))
	}
}

// CartRemoveItem deletes one line from the session's cart.
func CartRemoveItem(carts *cart.Manager, mets *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := uuid.Parse(chi.URLParam(r, "itemId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.Get(r.Context(), sessionID)
		store.RemoveItem(r.Context(), lineID)
		mets.IncMutation("remove")

		responses.WriteSuccess(w, newCartResponse(store))
	}
}

// CartClear empties the session's cart.
func CartClear(carts *cart.Manager, mets *metrics.CartMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		store := carts.Get(r.Context(), sessionID)
		store.Clear(r.Context())
		mets.IncMutation("clear")

		responses.WriteSuccess(w, newCartResponse(store))
	}
}

// SessionDrop discards the session's cart and its persisted snapshot.
func SessionDrop(carts *cart.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		carts.Drop(r.Context(), sessionID)
		responses.WriteSuccess(w, map[string]string{"status": "dropped"})
	}
}
