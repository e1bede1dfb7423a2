package orders

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/davidmarceau/dishpatch-backend/internal/checkout"
	"github.com/davidmarceau/dishpatch-backend/pkg/config"
	"github.com/davidmarceau/dishpatch-backend/pkg/enums"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/davidmarceau/dishpatch-backend/pkg/types"
	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.OrdersConfig{BaseURL: server.URL, Timeout: 2 * time.Second})
}

func testSubmission() *checkout.OrderSubmission {
	subtotal := decimal.RequireFromString("24.99")
	fee := decimal.RequireFromString("2.99")
	tax := decimal.RequireFromString("2.00")
	return &checkout.OrderSubmission{
		RestaurantID:   "r1",
		RestaurantName: "Burger Barn",
		Items: []checkout.SubmissionItem{{
			MenuItemID: "m1",
			Name:       "Classic Burger",
			Price:      decimal.RequireFromString("10.99"),
			Quantity:   2,
		}},
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       subtotal.Add(fee).Add(tax),
		DeliveryAddress: types.Address{
			Street: "100 Main St", City: "Austin", State: "TX", ZipCode: "78701",
		},
		PaymentMethod: enums.PaymentMethodCard,
	}
}

func TestSubmitSuccess(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var posted map[string]any
		if err := json.Unmarshal(body, &posted); err != nil {
			t.Errorf("unreadable submission body: %v", err)
		}
		if posted["restaurant_id"] != "r1" {
			t.Errorf("unexpected restaurant_id %v", posted["restaurant_id"])
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"id":"ord-1","status":"pending","payment_status":"paid","estimated_delivery_time":"2026-08-31T18:45:00Z"}}`))
	})

	confirmation, err := client.Submit(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confirmation.ID != "ord-1" {
		t.Fatalf("unexpected order id %q", confirmation.ID)
	}
	if confirmation.Status != enums.OrderStatusPending {
		t.Fatalf("unexpected status %q", confirmation.Status)
	}
	if confirmation.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("unexpected payment status %q", confirmation.PaymentStatus)
	}
	if confirmation.EstimatedDeliveryTime == nil {
		t.Fatal("expected an estimated delivery time")
	}
}

func TestSubmitServerError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Submit(context.Background(), testSubmission())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeOrderSubmission {
		t.Fatalf("expected order submission error, got %v", err)
	}
}

func TestSubmitRejectedEnvelope(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error":"restaurant is closed"}`))
	})

	_, err := client.Submit(context.Background(), testSubmission())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeOrderSubmission {
		t.Fatalf("expected order submission error, got %v", err)
	}
}

func TestSubmitMissingConfirmationID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"status":"pending"}}`))
	})

	_, err := client.Submit(context.Background(), testSubmission())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeOrderSubmission {
		t.Fatalf("expected order submission error, got %v", err)
	}
}
