package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/mediastorehq/storefront-go/internal/gateway"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/logger"
	"github.com/mediastorehq/storefront-go/pkg/types"
)

// Calculator is a pure request/response proxy for delivery-fee quotes. It
// never caches across destinations and never retries; errors propagate to the
// caller, which stays in the shipping step.
type Calculator struct {
	gw   gateway.CartGateway
	logg *logger.Logger
}

// NewCalculator builds the delivery fee calculator proxy.
func NewCalculator(gw gateway.CartGateway, logg *logger.Logger) (*Calculator, error) {
	if gw == nil {
		return nil, fmt.Errorf("cart gateway required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Calculator{gw: gw, logg: logg}, nil
}

// Quote fetches a fresh fee quote for the destination and delivery mode.
func (c *Calculator) Quote(ctx context.Context, sessionID string, dest types.Destination) (*types.DeliveryQuote, error) {
	if strings.TrimSpace(dest.Province) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination province is required")
	}
	if strings.TrimSpace(dest.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination address is required")
	}

	quote, err := c.gw.QuoteDeliveryFees(ctx, sessionID, dest)
	if err != nil {
		return nil, err
	}
	c.logg.Info(c.logg.WithFields(ctx, map[string]any{
		"province":     dest.Province,
		"rush":         dest.RushDelivery,
		"standard_fee": quote.StandardFee,
		"rush_fee":     quote.RushFee,
		"free":         quote.FreeShippingApplied,
	}), "delivery quote fetched")
	return quote, nil
}
