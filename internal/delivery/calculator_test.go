package delivery

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/mediastorehq/storefront-go/internal/gateway"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/logger"
	"github.com/mediastorehq/storefront-go/pkg/types"
)

type stubQuoteGateway struct {
	gateway.CartGateway

	quote *types.DeliveryQuote
	err   error
	calls int
	dest  types.Destination
}

func (s *stubQuoteGateway) QuoteDeliveryFees(_ context.Context, _ string, dest types.Destination) (*types.DeliveryQuote, error) {
	s.calls++
	s.dest = dest
	return s.quote, s.err
}

func newTestCalculator(t *testing.T, gw *stubQuoteGateway) *Calculator {
	t.Helper()
	calc, err := NewCalculator(gw, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return calc
}

func TestQuoteRequiresProvince(t *testing.T) {
	t.Parallel()

	gw := &stubQuoteGateway{}
	calc := newTestCalculator(t, gw)

	_, err := calc.Quote(context.Background(), "sess-1", types.Destination{Address: "1 Main St"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatal("gateway must not be called for invalid destination")
	}
}

func TestQuoteRequiresAddress(t *testing.T) {
	t.Parallel()

	gw := &stubQuoteGateway{}
	calc := newTestCalculator(t, gw)

	_, err := calc.Quote(context.Background(), "sess-1", types.Destination{Province: "Hanoi", Address: "   "})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuotePassesThrough(t *testing.T) {
	t.Parallel()

	gw := &stubQuoteGateway{quote: &types.DeliveryQuote{StandardFee: 20000, RushFee: 50000}}
	calc := newTestCalculator(t, gw)

	dest := types.Destination{Province: "Hanoi", Address: "1 Main St", RushDelivery: true}
	quote, err := calc.Quote(context.Background(), "sess-1", dest)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.StandardFee != 20000 || quote.RushFee != 50000 {
		t.Fatalf("unexpected quote %+v", quote)
	}
	if !gw.dest.Equal(dest) {
		t.Fatalf("destination not forwarded: %+v", gw.dest)
	}
}

func TestQuoteErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("route unavailable")
	gw := &stubQuoteGateway{err: boom}
	calc := newTestCalculator(t, gw)

	_, err := calc.Quote(context.Background(), "sess-1", types.Destination{Province: "Hanoi", Address: "1 Main St"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected gateway error, got %v", err)
	}
}
