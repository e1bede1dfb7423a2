package checkout

import (
	"fmt"
	"time"

	"github.com/davidmarceau/dishpatch-backend/internal/cart"
	"github.com/davidmarceau/dishpatch-backend/internal/catalog"
	"github.com/davidmarceau/dishpatch-backend/pkg/enums"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/davidmarceau/dishpatch-backend/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// CheckoutInput carries the checkout data supplied alongside the cart.
type CheckoutInput struct {
	DeliveryAddress     types.Address
	PaymentMethod       enums.PaymentMethod
	SpecialInstructions string
}

// SubmissionItem is one order line, snapshotted independently of the
// live cart.
type SubmissionItem struct {
	MenuItemID          string          `json:"menu_item_id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	Quantity            int             `json:"quantity"`
	Customizations      []string        `json:"customizations,omitempty"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
}

// OrderSubmission is the immutable payload handed to the order service.
type OrderSubmission struct {
	RestaurantID        string              `json:"restaurant_id"`
	RestaurantName      string              `json:"restaurant_name"`
	Items               []SubmissionItem    `json:"items"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	DeliveryFee         decimal.Decimal     `json:"delivery_fee"`
	Tax                 decimal.Decimal     `json:"tax"`
	Total               decimal.Decimal     `json:"total"`
	DeliveryAddress     types.Address       `json:"delivery_address"`
	PaymentMethod       enums.PaymentMethod `json:"payment_method"`
	SpecialInstructions string              `json:"special_instructions,omitempty"`
}

// OrderConfirmation is the order service's acknowledgement of a
// submission.
type OrderConfirmation struct {
	ID                    string              `json:"id"`
	Status                enums.OrderStatus   `json:"status"`
	PaymentStatus         enums.PaymentStatus `json:"payment_status"`
	EstimatedDeliveryTime *time.Time          `json:"estimated_delivery_time,omitempty"`
}

// Composer assembles order submissions from cart contents. Tax is applied
// on the subtotal and rounded to cents before totalling, so the final
// total is always an exact sum of its three components.
type Composer struct {
	taxRate decimal.Decimal
}

// NewComposer builds a composer with the configured tax rate.
func NewComposer(taxRate decimal.Decimal) (*Composer, error) {
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("tax rate must be in [0, 1), got %s", taxRate)
	}
	return &Composer{taxRate: taxRate}, nil
}

// Compose validates the checkout inputs and derives the submission
// payload. It never mutates the cart; clearing after a confirmed
// submission is the caller's job.
func (c *Composer) Compose(items []cart.LineItem, restaurant *catalog.Restaurant, input CheckoutInput) (*OrderSubmission, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot check out an empty cart")
	}
	if restaurant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant snapshot is required")
	}
	if restaurant.ID != items[0].RestaurantID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant does not match cart contents")
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	lines := make([]SubmissionItem, 0, len(items))
	for _, line := range items {
		subtotal = subtotal.Add(line.LineTotal())
		lines = append(lines, SubmissionItem{
			MenuItemID:          line.MenuItemID,
			Name:                line.Name,
			Price:               line.Price,
			Quantity:            line.Quantity,
			Customizations:      append([]string(nil), line.Customizations...),
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	tax := subtotal.Mul(c.taxRate).Round(2)
	fee := restaurant.DeliveryFee

	return &OrderSubmission{
		RestaurantID:        restaurant.ID,
		RestaurantName:      restaurant.Name,
		Items:               lines,
		Subtotal:            subtotal,
		DeliveryFee:         fee,
		Tax:                 tax,
		Total:               subtotal.Add(fee).Add(tax),
		DeliveryAddress:     input.DeliveryAddress,
		PaymentMethod:       input.PaymentMethod,
		SpecialInstructions: input.SpecialInstructions,
	}, nil
}

func validateInput(input CheckoutInput) error {
	var verr error
	for _, field := range input.DeliveryAddress.MissingFields() {
		verr = multierr.Append(verr, fmt.Errorf("delivery address %s is required", field))
	}
	if !input.PaymentMethod.IsValid() {
		verr = multierr.Append(verr, fmt.Errorf("payment method %q is not supported", input.PaymentMethod))
	}
	if verr == nil {
		return nil
	}

	problems := make([]string, 0)
	for _, err := range multierr.Errors(verr) {
		problems = append(problems, err.Error())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid order input").
		WithDetails(map[string]any{"problems": problems})
}
