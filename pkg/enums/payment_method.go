package enums

// PaymentMethod names the payment instrument passed to the payment gateway.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDomestic   PaymentMethod = "DOMESTIC_CARD"
)

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}
