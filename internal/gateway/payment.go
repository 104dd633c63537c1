package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mediastorehq/storefront-go/pkg/enums"
)

// PaymentURLRequest asks the backend for an external payment handoff URL.
type PaymentURLRequest struct {
	OrderID       string              `json:"order_id"`
	Amount        int64               `json:"amount"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	OrderInfo     string              `json:"order_info"`
}

// PaymentHandoff is the URL the browser must navigate to, plus the method the
// backend actually selected.
type PaymentHandoff struct {
	PaymentURL     string `json:"payment_url"`
	SelectedMethod string `json:"selected_method"`
}

// PaymentGateway covers the payment handoff endpoint.
type PaymentGateway interface {
	CreatePaymentURL(ctx context.Context, req PaymentURLRequest) (*PaymentHandoff, error)
}

type paymentGateway struct {
	client *Client
}

// NewPaymentGateway builds the HTTP payment gateway on the shared client.
func NewPaymentGateway(client *Client) (PaymentGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	return &paymentGateway{client: client}, nil
}

func (g *paymentGateway) CreatePaymentURL(ctx context.Context, req PaymentURLRequest) (*PaymentHandoff, error) {
	var handoff PaymentHandoff
	err := g.client.do(ctx, call{
		op:     "create_payment_url",
		method: http.MethodPost,
		path:   "/payment/create",
		body:   req,
		out:    &handoff,
		fields: map[string]any{
			"order_id":       req.OrderID,
			"amount":         req.Amount,
			"payment_method": req.PaymentMethod,
		},
	})
	if err != nil {
		return nil, err
	}
	return &handoff, nil
}
