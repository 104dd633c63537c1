package enums

import "fmt"

// DeliveryType selects between the shipping modes offered at checkout.
type DeliveryType string

const (
	DeliveryTypeStandard DeliveryType = "STANDARD"
	DeliveryTypeRush     DeliveryType = "RUSH"
)

var validDeliveryTypes = []DeliveryType{
	DeliveryTypeStandard,
	DeliveryTypeRush,
}

// String implements fmt.Stringer.
func (d DeliveryType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryType.
func (d DeliveryType) IsValid() bool {
	for _, candidate := range validDeliveryTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsRush reports whether the rush surcharge applies.
func (d DeliveryType) IsRush() bool {
	return d == DeliveryTypeRush
}

// ParseDeliveryType converts raw input into a DeliveryType.
func ParseDeliveryType(value string) (DeliveryType, error) {
	for _, candidate := range validDeliveryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery type %q", value)
}
