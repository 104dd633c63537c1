package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mediastorehq/storefront-go/pkg/enums"
	"github.com/mediastorehq/storefront-go/pkg/pagination"
	"github.com/mediastorehq/storefront-go/pkg/types"
)

// IdempotencyHeader carries the client-generated key for order creation.
const IdempotencyHeader = "Idempotency-Key"

// CreateOrderRequest is the payload for order creation. The cart snapshot is
// resolved server-side from the session; the client only sends shipping data.
type CreateOrderRequest struct {
	SessionID        string             `json:"-"`
	IdempotencyKey   string             `json:"-"`
	RecipientName    string             `json:"recipient_name"`
	Email            string             `json:"email"`
	Phone            string             `json:"phone"`
	Province         string             `json:"province"`
	Address          string             `json:"address"`
	DeliveryType     enums.DeliveryType `json:"delivery_type"`
	RushDeliveryTime *time.Time         `json:"rush_delivery_time,omitempty"`
	RushInstructions *string            `json:"rush_instructions,omitempty"`
}

// OrderPage is one page of an order listing.
type OrderPage struct {
	Orders     []types.OrderSummary `json:"orders"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// OrderGateway covers the order endpoints, including the manager-facing
// pending queue and decisions.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*types.Order, error)
	GetOrder(ctx context.Context, orderID string) (*types.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	ListMyOrders(ctx context.Context, params pagination.Params) (*OrderPage, error)
	ListPendingOrders(ctx context.Context, params pagination.Params) (*OrderPage, error)
	ApproveOrder(ctx context.Context, orderID string) error
	RejectOrder(ctx context.Context, orderID, reason string) error
}

type orderGateway struct {
	client *Client
}

// NewOrderGateway builds the HTTP order gateway on the shared client.
func NewOrderGateway(client *Client) (OrderGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	return &orderGateway{client: client}, nil
}

func (g *orderGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (*types.Order, error) {
	headers := sessionHeaders(req.SessionID)
	if req.IdempotencyKey != "" {
		if headers == nil {
			headers = map[string]string{}
		}
		headers[IdempotencyHeader] = req.IdempotencyKey
	}

	var order types.Order
	err := g.client.do(ctx, call{
		op:      "create_order",
		method:  http.MethodPost,
		path:    "/orders/create",
		headers: headers,
		body:    req,
		out:     &order,
		fields: map[string]any{
			"delivery_type":   req.DeliveryType,
			"province":        req.Province,
			"idempotency_key": req.IdempotencyKey,
		},
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (g *orderGateway) GetOrder(ctx context.Context, orderID string) (*types.Order, error) {
	var order types.Order
	err := g.client.do(ctx, call{
		op:     "get_order",
		method: http.MethodGet,
		path:   "/orders/" + url.PathEscape(orderID),
		out:    &order,
		fields: map[string]any{"order_id": orderID},
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (g *orderGateway) CancelOrder(ctx context.Context, orderID string) error {
	return g.client.do(ctx, call{
		op:     "cancel_order",
		method: http.MethodPost,
		path:   "/orders/cancel/" + url.PathEscape(orderID),
		fields: map[string]any{"order_id": orderID},
	})
}

func (g *orderGateway) ListMyOrders(ctx context.Context, params pagination.Params) (*OrderPage, error) {
	return g.listOrders(ctx, "list_my_orders", "/orders", params)
}

func (g *orderGateway) ListPendingOrders(ctx context.Context, params pagination.Params) (*OrderPage, error) {
	return g.listOrders(ctx, "list_pending_orders", "/orders/pending", params)
}

func (g *orderGateway) listOrders(ctx context.Context, op, path string, params pagination.Params) (*OrderPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pagination.NormalizeLimit(params.Limit)))
	if params.Cursor != "" {
		query.Set("cursor", params.Cursor)
	}

	var page OrderPage
	err := g.client.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   path,
		query:  query,
		out:    &page,
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (g *orderGateway) ApproveOrder(ctx context.Context, orderID string) error {
	return g.client.do(ctx, call{
		op:     "approve_order",
		method: http.MethodPost,
		path:   "/orders/approve/" + url.PathEscape(orderID),
		fields: map[string]any{"order_id": orderID},
	})
}

func (g *orderGateway) RejectOrder(ctx context.Context, orderID, reason string) error {
	return g.client.do(ctx, call{
		op:     "reject_order",
		method: http.MethodPost,
		path:   "/orders/reject/" + url.PathEscape(orderID),
		body:   rejectRequest{Reason: reason},
		fields: map[string]any{"order_id": orderID},
	})
}
