package enums

// CheckoutStep identifies the current stage of the checkout flow.
type CheckoutStep string

const (
	StepShipping     CheckoutStep = "shipping"
	StepPayment      CheckoutStep = "payment"
	StepConfirmation CheckoutStep = "confirmation"
)

// String implements fmt.Stringer.
func (s CheckoutStep) String() string {
	return string(s)
}

// CanTransitionTo reports whether an in-memory transition to next is allowed.
// Confirmation is terminal; it is entered only through return reconciliation,
// which bypasses this check.
func (s CheckoutStep) CanTransitionTo(next CheckoutStep) bool {
	switch s {
	case StepShipping:
		return next == StepPayment
	case StepPayment:
		return next == StepShipping
	default:
		return false
	}
}
