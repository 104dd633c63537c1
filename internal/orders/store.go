package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mediastorehq/storefront-go/internal/gateway"
	"github.com/mediastorehq/storefront-go/pkg/enums"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/logger"
	"github.com/mediastorehq/storefront-go/pkg/pagination"
	"github.com/mediastorehq/storefront-go/pkg/types"
)

// CreateInput carries everything required to place an order.
type CreateInput struct {
	SessionID        string
	IdempotencyKey   string
	RecipientName    string
	Email            string
	Phone            string
	Province         string
	Address          string
	DeliveryType     enums.DeliveryType
	RushDeliveryTime *time.Time
	RushInstructions *string
}

// Store holds the most recently created or fetched order plus the order list
// relevant to the current actor: the customer's history or, for managers,
// the pending approval queue. Like the cart store it is explicitly
// constructed and injected, never ambient.
type Store struct {
	gw   gateway.OrderGateway
	logg *logger.Logger

	mu         sync.Mutex
	current    *types.Order
	pending    []types.OrderSummary
	history    []types.OrderSummary
	nextCursor string
	lastParams pagination.Params
}

// NewStore builds an order store backed by the provided gateway.
func NewStore(gw gateway.OrderGateway, logg *logger.Logger) (*Store, error) {
	if gw == nil {
		return nil, fmt.Errorf("order gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{gw: gw, logg: logg}, nil
}

// Create places an order and adopts it as the current order.
func (s *Store) Create(ctx context.Context, input CreateInput) (*types.Order, error) {
	if !input.DeliveryType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery type is required")
	}

	order, err := s.gw.CreateOrder(ctx, gateway.CreateOrderRequest{
		SessionID:        input.SessionID,
		IdempotencyKey:   input.IdempotencyKey,
		RecipientName:    input.RecipientName,
		Email:            input.Email,
		Phone:            input.Phone,
		Province:         input.Province,
		Address:          input.Address,
		DeliveryType:     input.DeliveryType,
		RushDeliveryTime: input.RushDeliveryTime,
		RushInstructions: input.RushInstructions,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = order
	s.mu.Unlock()

	s.logg.Info(s.logg.WithOrderID(ctx, order.ID), "order created")
	return order, nil
}

// Get fetches an order's full detail and adopts it as the current order.
func (s *Store) Get(ctx context.Context, orderID string) (*types.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.gw.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = order
	s.mu.Unlock()
	return order, nil
}

// Cancel cancels an order and re-fetches it so the held copy reflects the
// authoritative status.
func (s *Store) Cancel(ctx context.Context, orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := s.gw.CancelOrder(ctx, orderID); err != nil {
		return err
	}
	if _, err := s.Get(ctx, orderID); err != nil {
		s.logg.Warn(s.logg.WithOrderID(ctx, orderID), "canceled order refresh failed")
	}
	return nil
}

// ListHistory loads the customer's own orders.
func (s *Store) ListHistory(ctx context.Context, params pagination.Params) ([]types.OrderSummary, string, error) {
	if err := checkCursor(params.Cursor); err != nil {
		return nil, "", err
	}
	page, err := s.gw.ListMyOrders(ctx, params)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	s.history = page.Orders
	s.mu.Unlock()
	return page.Orders, page.NextCursor, nil
}

// ListPending loads the manager approval queue and remembers the request so
// decisions can refresh the same page.
func (s *Store) ListPending(ctx context.Context, params pagination.Params) ([]types.OrderSummary, string, error) {
	if err := checkCursor(params.Cursor); err != nil {
		return nil, "", err
	}
	page, err := s.gw.ListPendingOrders(ctx, params)
	if err != nil {
		return nil, "", err
	}

	s.mu.Lock()
	s.pending = page.Orders
	s.nextCursor = page.NextCursor
	s.lastParams = params
	s.mu.Unlock()
	return page.Orders, page.NextCursor, nil
}

// Approve approves a pending order. Approval requires a completed payment;
// on success the pending list is re-fetched rather than patched locally.
func (s *Store) Approve(ctx context.Context, orderID string) error {
	summary, err := s.pendingSummary(orderID)
	if err != nil {
		return err
	}
	if !summary.Status.AllowsManagerDecision() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer pending")
	}
	if summary.PaymentStatus != enums.PaymentStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order payment is not completed")
	}

	if err := s.gw.ApproveOrder(ctx, orderID); err != nil {
		return err
	}
	s.refreshPending(ctx)
	return nil
}

// Reject rejects a pending order with a mandatory reason.
func (s *Store) Reject(ctx context.Context, orderID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	summary, err := s.pendingSummary(orderID)
	if err != nil {
		return err
	}
	if !summary.Status.AllowsManagerDecision() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer pending")
	}

	if err := s.gw.RejectOrder(ctx, orderID, reason); err != nil {
		return err
	}
	s.refreshPending(ctx)
	return nil
}

// Current returns the held order, nil when nothing was created or fetched.
func (s *Store) Current() *types.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pending returns the held manager queue page.
func (s *Store) Pending() []types.OrderSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.OrderSummary(nil), s.pending...)
}

// checkCursor rejects malformed page tokens locally instead of spending a
// round trip on a request the backend will refuse.
func checkCursor(value string) error {
	if _, err := pagination.ParseCursor(value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination cursor")
	}
	return nil
}

func (s *Store) pendingSummary(orderID string) (*types.OrderSummary, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pending {
		if s.pending[i].ID == orderID {
			summary := s.pending[i]
			return &summary, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not in pending queue")
}

// refreshPending reloads the same pending page after a decision; divergence
// between optimistic and authoritative state is avoided by never patching
// the list locally.
func (s *Store) refreshPending(ctx context.Context) {
	s.mu.Lock()
	params := s.lastParams
	s.mu.Unlock()

	if _, _, err := s.ListPending(ctx, params); err != nil {
		s.logg.Warn(ctx, "pending orders refresh failed")
	}
}
