package types

import "strings"

// Destination is the input to a delivery-fee quote.
type Destination struct {
	Province     string `json:"province"`
	Address      string `json:"address"`
	RushDelivery bool   `json:"is_rush_delivery"`
}

// Equal compares destinations the way quote staleness is judged: any change
// to province, address, or delivery mode invalidates a previous quote.
func (d Destination) Equal(other Destination) bool {
	return strings.EqualFold(strings.TrimSpace(d.Province), strings.TrimSpace(other.Province)) &&
		strings.TrimSpace(d.Address) == strings.TrimSpace(other.Address) &&
		d.RushDelivery == other.RushDelivery
}

// DeliveryQuote is the priced result for one destination and delivery mode.
// It is advisory until an order is created.
type DeliveryQuote struct {
	StandardFee         int64 `json:"standard_fee"`
	RushFee             int64 `json:"rush_fee"`
	FreeShippingApplied bool  `json:"free_shipping_applied"`
}

// ShippingFee returns the standard-fee contribution, honoring free shipping
// regardless of the returned numeric value.
func (q *DeliveryQuote) ShippingFee() int64 {
	if q == nil || q.FreeShippingApplied {
		return 0
	}
	return q.StandardFee
}
