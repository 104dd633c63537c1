package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mediastorehq/storefront-go/pkg/types"
)

// SessionHeader carries the cart session token on every cart request.
const SessionHeader = "X-Cart-Session"

// CartValidation is the backend's verdict on whether the cart is still
// purchasable (stock sufficiency, price staleness).
type CartValidation struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// CartGateway covers the cart endpoints of the storefront backend. Every
// mutation returns the full authoritative cart snapshot.
type CartGateway interface {
	InitializeSession(ctx context.Context) (*types.CartSession, error)
	GetCart(ctx context.Context, sessionID string) (*types.Cart, error)
	AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*types.Cart, error)
	UpdateItem(ctx context.Context, sessionID string, productID int64, quantity int) (*types.Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) (*types.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
	ValidateCart(ctx context.Context, sessionID string) (*CartValidation, error)
	QuoteDeliveryFees(ctx context.Context, sessionID string, dest types.Destination) (*types.DeliveryQuote, error)
}

type cartGateway struct {
	client *Client
}

// NewCartGateway builds the HTTP cart gateway on the shared client.
func NewCartGateway(client *Client) (CartGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	return &cartGateway{client: client}, nil
}

func (g *cartGateway) InitializeSession(ctx context.Context) (*types.CartSession, error) {
	var session types.CartSession
	err := g.client.do(ctx, call{
		op:     "initialize_session",
		method: http.MethodPost,
		path:   "/cart/initialize",
		out:    &session,
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (g *cartGateway) GetCart(ctx context.Context, sessionID string) (*types.Cart, error) {
	var cart types.Cart
	err := g.client.do(ctx, call{
		op:      "get_cart",
		method:  http.MethodGet,
		path:    "/cart",
		headers: sessionHeaders(sessionID),
		out:     &cart,
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

type cartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (g *cartGateway) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) (*types.Cart, error) {
	var cart types.Cart
	err := g.client.do(ctx, call{
		op:      "add_item",
		method:  http.MethodPost,
		path:    "/cart/items",
		headers: sessionHeaders(sessionID),
		body:    cartItemRequest{ProductID: productID, Quantity: quantity},
		out:     &cart,
		fields:  map[string]any{"product_id": productID, "quantity": quantity},
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (g *cartGateway) UpdateItem(ctx context.Context, sessionID string, productID int64, quantity int) (*types.Cart, error) {
	var cart types.Cart
	err := g.client.do(ctx, call{
		op:      "update_item",
		method:  http.MethodPut,
		path:    fmt.Sprintf("/cart/items/%d", productID),
		headers: sessionHeaders(sessionID),
		body:    quantityRequest{Quantity: quantity},
		out:     &cart,
		fields:  map[string]any{"product_id": productID, "quantity": quantity},
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *cartGateway) RemoveItem(ctx context.Context, sessionID string, productID int64) (*types.Cart, error) {
	var cart types.Cart
	err := g.client.do(ctx, call{
		op:      "remove_item",
		method:  http.MethodDelete,
		path:    fmt.Sprintf("/cart/items/%d", productID),
		headers: sessionHeaders(sessionID),
		out:     &cart,
		fields:  map[string]any{"product_id": productID},
	})
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *cartGateway) ClearCart(ctx context.Context, sessionID string) error {
	return g.client.do(ctx, call{
		op:      "clear_cart",
		method:  http.MethodDelete,
		path:    "/cart",
		headers: sessionHeaders(sessionID),
	})
}

func (g *cartGateway) ValidateCart(ctx context.Context, sessionID string) (*CartValidation, error) {
	var result CartValidation
	err := g.client.do(ctx, call{
		op:      "validate_cart",
		method:  http.MethodGet,
		path:    "/cart/validate",
		headers: sessionHeaders(sessionID),
		out:     &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (g *cartGateway) QuoteDeliveryFees(ctx context.Context, sessionID string, dest types.Destination) (*types.DeliveryQuote, error) {
	var quote types.DeliveryQuote
	err := g.client.do(ctx, call{
		op:      "quote_delivery_fees",
		method:  http.MethodPost,
		path:    "/cart/delivery-fees",
		headers: sessionHeaders(sessionID),
		body:    dest,
		out:     &quote,
		fields:  map[string]any{"province": dest.Province, "is_rush_delivery": dest.RushDelivery},
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func sessionHeaders(sessionID string) map[string]string {
	if sessionID == "" {
		return nil
	}
	return map[string]string{SessionHeader: sessionID}
}
