package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediastorehq/storefront-go/pkg/config"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/logger"
	"github.com/mediastorehq/storefront-go/pkg/pagination"
	"github.com/mediastorehq/storefront-go/pkg/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.GatewayConfig{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		Timeout:   5 * time.Second,
		UserAgent: "storefront-go-test",
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), nil)
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsBadConfig(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	_, err := NewClient(config.GatewayConfig{BaseURL: "https://ok.test"}, nil, nil)
	assert.Error(t, err)

	_, err = NewClient(config.GatewayConfig{BaseURL: "ftp://bad.test"}, logg, nil)
	assert.Error(t, err)
}

func TestCartGatewaySendsSessionAndAuthHeaders(t *testing.T) {
	var gotSession, gotAPIKey, gotRequestID string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = r.Header.Get(SessionHeader)
		gotAPIKey = r.Header.Get("X-Api-Key")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(types.Cart{ItemCount: 1, Total: 220000, Items: []types.CartItem{{ProductID: 7, Quantity: 2, UnitPrice: 100000}}})
	}))

	cartGW, err := NewCartGateway(client)
	require.NoError(t, err)

	cart, err := cartGW.GetCart(context.Background(), "sess-42")
	require.NoError(t, err)

	assert.Equal(t, "sess-42", gotSession)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, int64(220000), cart.Total)
	assert.Len(t, cart.Items, 1)
}

func TestCartGatewayMapsErrorStatuses(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusUnprocessableEntity, pkgerrors.CodeStateConflict},
		{http.StatusInternalServerError, pkgerrors.CodeDependency},
	}

	for _, tt := range tests {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
		}))
		cartGW, err := NewCartGateway(client)
		require.NoError(t, err)

		_, err = cartGW.GetCart(context.Background(), "sess")
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, tt.code), "status %d should map to %s, got %v", tt.status, tt.code, err)
	}
}

func TestCartGatewayUnreachableBackendIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // deliberately dead

	client, err := NewClient(config.GatewayConfig{BaseURL: srv.URL, Timeout: time.Second},
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}), nil)
	require.NoError(t, err)

	cartGW, err := NewCartGateway(client)
	require.NoError(t, err)

	_, err = cartGW.GetCart(context.Background(), "sess")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestQuoteDeliveryFeesPostsDestination(t *testing.T) {
	var got types.Destination
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cart/delivery-fees", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(types.DeliveryQuote{StandardFee: 20000, RushFee: 50000})
	}))

	cartGW, err := NewCartGateway(client)
	require.NoError(t, err)

	quote, err := cartGW.QuoteDeliveryFees(context.Background(), "sess", types.Destination{
		Province: "Hanoi", Address: "1 Trang Tien", RushDelivery: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hanoi", got.Province)
	assert.True(t, got.RushDelivery)
	assert.Equal(t, int64(50000), quote.RushFee)
}

func TestCreateOrderCarriesIdempotencyKey(t *testing.T) {
	var gotKey string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(IdempotencyHeader)
		json.NewEncoder(w).Encode(types.Order{ID: "ORD123", TotalAmount: 290000})
	}))

	orderGW, err := NewOrderGateway(client)
	require.NoError(t, err)

	order, err := orderGW.CreateOrder(context.Background(), CreateOrderRequest{
		SessionID:      "sess",
		IdempotencyKey: "key-1",
		RecipientName:  "Nguyen Van A",
		Province:       "Hanoi",
	})
	require.NoError(t, err)

	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "ORD123", order.ID)
}

func TestListPendingOrdersPassesCursor(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/pending", r.URL.Path)
		require.Equal(t, "25", r.URL.Query().Get("limit"))
		require.Equal(t, "abc", r.URL.Query().Get("cursor"))
		json.NewEncoder(w).Encode(OrderPage{
			Orders:     []types.OrderSummary{{ID: "ORD9"}},
			NextCursor: "def",
		})
	}))

	orderGW, err := NewOrderGateway(client)
	require.NoError(t, err)

	page, err := orderGW.ListPendingOrders(context.Background(), pagination.Params{Cursor: "abc"})
	require.NoError(t, err)

	require.Len(t, page.Orders, 1)
	assert.Equal(t, "def", page.NextCursor)
}

func TestGetOrderKeepsEscapedPathSegments(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(types.Order{ID: "ORD/123"})
	}))

	orderGW, err := NewOrderGateway(client)
	require.NoError(t, err)

	order, err := orderGW.GetOrder(context.Background(), "ORD/123")
	require.NoError(t, err)

	assert.Equal(t, "/orders/ORD%2F123", gotPath)
	assert.Equal(t, "ORD/123", order.ID)
}

func TestRejectOrderSendsReason(t *testing.T) {
	var body rejectRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/reject/ORD5", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))

	orderGW, err := NewOrderGateway(client)
	require.NoError(t, err)

	require.NoError(t, orderGW.RejectOrder(context.Background(), "ORD5", "payment mismatch"))
	assert.Equal(t, "payment mismatch", body.Reason)
}

func TestCreatePaymentURL(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/create", r.URL.Path)
		var req PaymentURLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(290000), req.Amount)
		json.NewEncoder(w).Encode(PaymentHandoff{PaymentURL: "https://pay.test/h/1", SelectedMethod: "CREDIT_CARD"})
	}))

	payGW, err := NewPaymentGateway(client)
	require.NoError(t, err)

	handoff, err := payGW.CreatePaymentURL(context.Background(), PaymentURLRequest{
		OrderID: "ORD123", Amount: 290000, OrderInfo: "Payment for media store order ORD123",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/h/1", handoff.PaymentURL)
}
