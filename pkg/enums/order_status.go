package enums

import "fmt"

// OrderStatus tracks the lifecycle of a placed order.
type OrderStatus string

const (
	OrderStatusPendingProcessing OrderStatus = "PENDING_PROCESSING"
	OrderStatusApproved          OrderStatus = "APPROVED"
	OrderStatusRejected          OrderStatus = "REJECTED"
	OrderStatusShipped           OrderStatus = "SHIPPED"
	OrderStatusDelivered         OrderStatus = "DELIVERED"
	OrderStatusCanceled          OrderStatus = "CANCELED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingProcessing,
	OrderStatusApproved,
	OrderStatusRejected,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// AllowsManagerDecision reports whether approve/reject is still possible.
func (o OrderStatus) AllowsManagerDecision() bool {
	return o == OrderStatusPendingProcessing
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
