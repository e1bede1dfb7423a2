package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/davidmarceau/dishpatch-backend/internal/checkout"
	"github.com/davidmarceau/dishpatch-backend/pkg/config"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/go-resty/resty/v2"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// Client submits composed orders to the order service. It implements
// checkout.Submitter.
type Client struct {
	http *resty.Client
}

// NewClient builds an order service client from config.
func NewClient(cfg config.OrdersConfig) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Submit posts the order and decodes the confirmation. A submission is
// attempted exactly once; retry policy belongs to the caller.
func (c *Client) Submit(ctx context.Context, submission *checkout.OrderSubmission) (*checkout.OrderConfirmation, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(submission).
		Post("/orders")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOrderSubmission, err, "order service unreachable")
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return nil, pkgerrors.New(pkgerrors.CodeOrderSubmission,
			fmt.Sprintf("order service returned status %d", resp.StatusCode())).
			WithDetails(map[string]any{"status": resp.StatusCode()})
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOrderSubmission, err, "invalid order service response")
	}
	if !env.Success {
		return nil, pkgerrors.New(pkgerrors.CodeOrderSubmission,
			fmt.Sprintf("order service rejected submission: %s", env.Error))
	}

	var confirmation checkout.OrderConfirmation
	if err := json.Unmarshal(env.Data, &confirmation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOrderSubmission, err, "invalid order confirmation payload")
	}
	if confirmation.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeOrderSubmission, "order confirmation missing id")
	}
	return &confirmation, nil
}
