package types

import "github.com/mediastorehq/storefront-go/pkg/enums"

// CartItem is one line of the server-side cart. UnitPrice is a snapshot taken
// by the server when the item was added; amounts are integer VND.
type CartItem struct {
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Cart is the authoritative cart snapshot returned by the backend. Subtotal
// and Total are always server-computed; the client never derives them from
// the line items.
type Cart struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  int64      `json:"subtotal"`
	Total     int64      `json:"total"` // tax inclusive
}

// IsEmpty reports whether the cart has no purchasable lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Clone returns a deep copy so callers can hold a snapshot without aliasing
// the store's state.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	dup := *c
	dup.Items = append([]CartItem(nil), c.Items...)
	return &dup
}

// CartSession correlates the client to its server-side cart.
type CartSession struct {
	SessionID string         `json:"session_id"`
	CartType  enums.CartType `json:"cart_type"`
}
