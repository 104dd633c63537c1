package enums

// CartType distinguishes anonymous carts from authenticated ones.
type CartType string

const (
	CartTypeGuest    CartType = "GUEST"
	CartTypeCustomer CartType = "CUSTOMER"
)

// String implements fmt.Stringer.
func (c CartType) String() string {
	return string(c)
}
