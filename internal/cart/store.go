package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/mediastorehq/storefront-go/internal/gateway"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/logger"
	"github.com/mediastorehq/storefront-go/pkg/types"
)

type feeQuoter interface {
	Quote(ctx context.Context, sessionID string, dest types.Destination) (*types.DeliveryQuote, error)
}

// Store is the single source of truth for the current cart and its session
// correlation. It is explicitly constructed and injected, scoped to one
// browser session; it holds no ambient global state.
type Store struct {
	gw     gateway.CartGateway
	quoter feeQuoter
	logg   *logger.Logger

	mu        sync.Mutex
	sessionID string
	cart      *types.Cart
	version   uint64
	lastErr   error
}

// NewStore builds a cart store backed by the provided gateway and fee quoter.
func NewStore(gw gateway.CartGateway, quoter feeQuoter, logg *logger.Logger) (*Store, error) {
	if gw == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if quoter == nil {
		return nil, fmt.Errorf("fee quoter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{gw: gw, quoter: quoter, logg: logg}, nil
}

// InitializeSession obtains a server-side cart session. Safe to call more
// than once: an existing session is kept. Failure is non-fatal for browsing;
// the session stays unset and cart operations will fail recoverably.
func (s *Store) InitializeSession(ctx context.Context) error {
	s.mu.Lock()
	if s.sessionID != "" {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	session, err := s.gw.InitializeSession(ctx)
	if err != nil {
		s.setLastErr(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID == "" {
		s.sessionID = session.SessionID
	}
	s.lastErr = nil
	s.logg.Info(s.logg.WithCartSession(ctx, s.sessionID), "cart session initialized")
	return nil
}

// FetchContents replaces the in-memory cart with the server's snapshot. An
// empty cart is not an error.
func (s *Store) FetchContents(ctx context.Context) error {
	sessionID, err := s.requireSession()
	if err != nil {
		return err
	}
	snapshot, err := s.gw.GetCart(ctx, sessionID)
	if err != nil {
		s.setLastErr(err)
		return err
	}
	s.applySnapshot(snapshot)
	return nil
}

// AddItem sends the delta to the server and adopts the authoritative
// snapshot. Quantity bounds are enforced by the backend, not here, so the
// client and server never disagree on validation rules.
func (s *Store) AddItem(ctx context.Context, productID int64, quantity int) error {
	sessionID, err := s.requireSession()
	if err != nil {
		return err
	}
	snapshot, err := s.gw.AddItem(ctx, sessionID, productID, quantity)
	if err != nil {
		s.setLastErr(err)
		return err
	}
	s.applySnapshot(snapshot)
	return nil
}

// UpdateItemQuantity sets the absolute quantity for a line.
func (s *Store) UpdateItemQuantity(ctx context.Context, productID int64, quantity int) error {
	sessionID, err := s.requireSession()
	if err != nil {
		return err
	}
	snapshot, err := s.gw.UpdateItem(ctx, sessionID, productID, quantity)
	if err != nil {
		s.setLastErr(err)
		return err
	}
	s.applySnapshot(snapshot)
	return nil
}

// RemoveItem drops a line from the cart.
func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	sessionID, err := s.requireSession()
	if err != nil {
		return err
	}
	snapshot, err := s.gw.RemoveItem(ctx, sessionID, productID)
	if err != nil {
		s.setLastErr(err)
		return err
	}
	s.applySnapshot(snapshot)
	return nil
}

// Clear empties the cart remotely and locally. Used after confirmed payment
// and as a manual user action.
func (s *Store) Clear(ctx context.Context) error {
	sessionID, err := s.requireSession()
	if err != nil {
		return err
	}
	if err := s.gw.ClearCart(ctx, sessionID); err != nil {
		s.setLastErr(err)
		return err
	}
	s.applySnapshot(&types.Cart{})
	return nil
}

// Validate asks the server whether the cart is still purchasable. It does not
// mutate cart state.
func (s *Store) Validate(ctx context.Context) (bool, string, error) {
	sessionID, err := s.requireSession()
	if err != nil {
		return false, "", err
	}
	result, err := s.gw.ValidateCart(ctx, sessionID)
	if err != nil {
		s.setLastErr(err)
		return false, "", err
	}
	s.setLastErr(nil)
	return result.IsValid, result.Message, nil
}

// CalculateDeliveryFees delegates to the delivery fee calculator for the
// current session.
func (s *Store) CalculateDeliveryFees(ctx context.Context, dest types.Destination) (*types.DeliveryQuote, error) {
	sessionID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	quote, err := s.quoter.Quote(ctx, sessionID, dest)
	if err != nil {
		s.setLastErr(err)
		return nil, err
	}
	s.setLastErr(nil)
	return quote, nil
}

// Snapshot returns a copy of the current cart; nil when nothing was fetched.
func (s *Store) Snapshot() *types.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// SessionID returns the opaque session token, empty when uninitialized.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Version increments every time a snapshot is applied; callers use it to
// detect whether a response raced with a newer one.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// LastError exposes the transient error state for the UI layer.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) requireSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID == "" {
		err := pkgerrors.New(pkgerrors.CodeStateConflict, "cart session not initialized")
		s.lastErr = err
		return "", err
	}
	return s.sessionID, nil
}

// applySnapshot replaces the whole cart atomically; readers never observe a
// partial merge of old and new fields.
func (s *Store) applySnapshot(snapshot *types.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = snapshot
	s.version++
	s.lastErr = nil
}

func (s *Store) setLastErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}
