package controllers

import (
	"net/http"
	"time"

	"github.com/davidmarceau/dishpatch-backend/api/middleware"
	"github.com/davidmarceau/dishpatch-backend/api/responses"
	"github.com/davidmarceau/dishpatch-backend/api/validators"
	"github.com/davidmarceau/dishpatch-backend/internal/checkout"
	"github.com/davidmarceau/dishpatch-backend/pkg/enums"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/davidmarceau/dishpatch-backend/pkg/logger"
	"github.com/davidmarceau/dishpatch-backend/pkg/types"
)

type checkoutRequest struct {
	DeliveryAddress     types.Address `json:"delivery_address" validate:"required"`
	PaymentMethod       string        `json:"payment_method" validate:"required"`
	SpecialInstructions string        `json:"special_instructions" validate:"max=500"`
}

func (r checkoutRequest) toInput() (checkout.CheckoutInput, error) {
	method, err := enums.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return checkout.CheckoutInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	return checkout.CheckoutInput{
		DeliveryAddress:     r.DeliveryAddress,
		PaymentMethod:       method,
		SpecialInstructions: r.SpecialInstructions,
	}, nil
}

type confirmationResponse struct {
	OrderID               string     `json:"order_id"`
	Status                string     `json:"status"`
	PaymentStatus         string     `json:"payment_status"`
	EstimatedDeliveryTime *time.Time `json:"estimated_delivery_time,omitempty"`
}

// Checkout submits the session's cart as an order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		confirmation, err := svc.Execute(r.Context(), sessionID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, confirmationResponse{
			OrderID:               confirmation.ID,
			Status:                confirmation.Status.String(),
			PaymentStatus:         confirmation.PaymentStatus.String(),
			EstimatedDeliveryTime: confirmation.EstimatedDeliveryTime,
		})
	}
}
