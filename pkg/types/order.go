package types

import (
	"time"

	"github.com/mediastorehq/storefront-go/pkg/enums"
)

// Order is a placed order as reported by the backend. The financial breakdown
// is fixed at creation; only the status fields mutate afterwards.
type Order struct {
	ID              string              `json:"order_id"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	ProductsTotal   int64               `json:"products_total"`
	VATAmount       int64               `json:"vat_amount"`
	DeliveryFee     int64               `json:"delivery_fee"`
	RushDeliveryFee int64               `json:"rush_delivery_fee"`
	TotalAmount     int64               `json:"total_amount"`

	RecipientName string             `json:"recipient_name,omitempty"`
	Email         string             `json:"email,omitempty"`
	Phone         string             `json:"phone,omitempty"`
	Province      string             `json:"province,omitempty"`
	Address       string             `json:"address,omitempty"`
	DeliveryType  enums.DeliveryType `json:"delivery_type,omitempty"`

	Items     []CartItem `json:"items,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// OrderSummary is one row of an order listing (customer history or the
// manager pending queue).
type OrderSummary struct {
	ID            string              `json:"order_id"`
	RecipientName string              `json:"recipient_name"`
	TotalAmount   int64               `json:"total_amount"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time           `json:"created_at"`
}
