package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/davidmarceau/dishpatch-backend/pkg/config"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// Restaurant is the catalog's view of a restaurant, already validated
// upstream. DeliveryFee is the fixed per-restaurant charge applied at
// checkout.
type Restaurant struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Image       string          `json:"image,omitempty"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	IsOpen      bool            `json:"is_open"`
}

// MenuItem is the catalog snapshot copied into the cart at add-time.
type MenuItem struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	IsAvailable  bool            `json:"is_available"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// Client talks to the catalog/restaurant service.
type Client struct {
	http *resty.Client
}

// NewClient builds a catalog client from config.
func NewClient(cfg config.CatalogConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
	}
}

// GetRestaurant fetches the restaurant snapshot, including its delivery fee.
func (c *Client) GetRestaurant(ctx context.Context, restaurantID string) (*Restaurant, error) {
	var restaurant Restaurant
	if err := c.get(ctx, fmt.Sprintf("/restaurants/%s", restaurantID), "restaurant", &restaurant); err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// GetMenuItem fetches one menu item belonging to the restaurant.
func (c *Client) GetMenuItem(ctx context.Context, restaurantID, menuItemID string) (*MenuItem, error) {
	var item MenuItem
	if err := c.get(ctx, fmt.Sprintf("/restaurants/%s/menu/%s", restaurantID, menuItemID), "menu item", &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) get(ctx context.Context, path, noun string, dest any) error {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog unreachable")
	}

	if resp.StatusCode() == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, noun+" not found")
	}
	if resp.StatusCode() != http.StatusOK {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog returned status %d", resp.StatusCode()))
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid catalog response")
	}
	if !env.Success {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("catalog rejected request: %s", env.Error))
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid catalog payload")
	}
	return nil
}
