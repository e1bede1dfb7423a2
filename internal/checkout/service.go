package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/davidmarceau/dishpatch-backend/internal/cart"
	"github.com/davidmarceau/dishpatch-backend/internal/catalog"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/davidmarceau/dishpatch-backend/pkg/logger"
	"github.com/davidmarceau/dishpatch-backend/pkg/metrics"
)

// Submitter hands a composed order to the order service.
type Submitter interface {
	Submit(ctx context.Context, submission *OrderSubmission) (*OrderConfirmation, error)
}

// RestaurantLoader resolves the restaurant that owns a cart.
type RestaurantLoader interface {
	GetRestaurant(ctx context.Context, restaurantID string) (*catalog.Restaurant, error)
}

// CartProvider yields the per-session cart store.
type CartProvider interface {
	Get(ctx context.Context, sessionID string) *cart.Store
}

// Service runs the checkout flow end to end.
type Service interface {
	Execute(ctx context.Context, sessionID string, input CheckoutInput) (*OrderConfirmation, error)
}

type service struct {
	carts     CartProvider
	catalog   RestaurantLoader
	submitter Submitter
	composer  *Composer
	metrics   *metrics.CartMetrics
	logg      *logger.Logger
}

// ServiceParams holds the collaborators for NewService. Metrics may be
// nil when collection is disabled.
type ServiceParams struct {
	Carts     CartProvider
	Catalog   RestaurantLoader
	Submitter Submitter
	Composer  *Composer
	Metrics   *metrics.CartMetrics
	Logger    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart provider is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("restaurant loader is required")
	}
	if params.Submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	if params.Composer == nil {
		return nil, fmt.Errorf("composer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		carts:     params.Carts,
		catalog:   params.Catalog,
		submitter: params.Submitter,
		composer:  params.Composer,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

// Execute composes and submits the session's cart as an order. The cart
// is cleared only after the order service confirms the submission; any
// failure leaves it untouched so the shopper can retry.
func (s *service) Execute(ctx context.Context, sessionID string, input CheckoutInput) (*OrderConfirmation, error) {
	store := s.carts.Get(ctx, sessionID)
	items := store.Items()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot check out an empty cart")
	}

	restaurantID, _ := store.RestaurantID()
	restaurant, err := s.catalog.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving restaurant for checkout")
	}

	submission, err := s.composer.Compose(items, restaurant, input)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	confirmation, err := s.submitter.Submit(ctx, submission)
	if err != nil {
		s.metrics.ObserveCheckout("failure", time.Since(start))
		s.logg.Error(s.logg.WithRestaurantID(ctx, submission.RestaurantID), "order submission failed", err)
		return nil, err
	}
	s.metrics.ObserveCheckout("success", time.Since(start))

	store.Clear(ctx)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":      confirmation.ID,
		"restaurant_id": submission.RestaurantID,
		"total":         submission.Total.String(),
	}), "order submitted")
	return confirmation, nil
}
