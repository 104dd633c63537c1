package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediastorehq/storefront-go/internal/gateway"
	"github.com/mediastorehq/storefront-go/internal/orders"
	"github.com/mediastorehq/storefront-go/pkg/config"
	"github.com/mediastorehq/storefront-go/pkg/enums"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/logger"
	"github.com/mediastorehq/storefront-go/pkg/types"
)

type cartSource interface {
	Snapshot() *types.Cart
	SessionID() string
	Validate(ctx context.Context) (bool, string, error)
	Clear(ctx context.Context) error
	CalculateDeliveryFees(ctx context.Context, dest types.Destination) (*types.DeliveryQuote, error)
}

type orderPlacer interface {
	Create(ctx context.Context, input orders.CreateInput) (*types.Order, error)
	Get(ctx context.Context, orderID string) (*types.Order, error)
}

type paymentStarter interface {
	CreatePaymentURL(ctx context.Context, req gateway.PaymentURLRequest) (*gateway.PaymentHandoff, error)
}

// Navigator performs the one-way browser handoff to the external payment
// gateway. Control only returns through return reconciliation.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Orchestrator drives a customer from a validated cart to a confirmed, paid
// order through the shipping → payment → confirmation flow. One instance is
// scoped to one checkout session; re-entering checkout resets it.
type Orchestrator struct {
	cart     cartSource
	orders   orderPlacer
	payments paymentStarter
	nav      Navigator
	payCfg   config.PaymentConfig
	logg     *logger.Logger

	mu        sync.Mutex
	step      enums.CheckoutStep
	epoch     uint64
	validated bool
	draft     *OrderDraft
	quote     *types.DeliveryQuote
	quoteDest *types.Destination
	order     *types.Order
	inFlight  bool
	idemKey   string
	confirmed string
}

// Params collects the orchestrator dependencies.
type Params struct {
	Cart     cartSource
	Orders   orderPlacer
	Payments paymentStarter
	Nav      Navigator
	Payment  config.PaymentConfig
	Logger   *logger.Logger
}

// NewOrchestrator builds a checkout orchestrator with injected collaborators.
func NewOrchestrator(params Params) (*Orchestrator, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Nav == nil {
		return nil, fmt.Errorf("navigator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Orchestrator{
		cart:     params.Cart,
		orders:   params.Orders,
		payments: params.Payments,
		nav:      params.Nav,
		payCfg:   params.Payment,
		logg:     params.Logger,
		step:     enums.StepShipping,
	}, nil
}

// EnterCheckout guards entry into the flow: the cart must be non-empty and
// the server must confirm it is still purchasable. Both failures mean
// "return to cart", not a form render.
func (o *Orchestrator) EnterCheckout(ctx context.Context) error {
	snapshot := o.cart.Snapshot()
	if snapshot.IsEmpty() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty, return to cart")
	}

	valid, message, err := o.cart.Validate(ctx)
	if err != nil {
		return err
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is not purchasable, return to cart").
			WithDetails(message)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.step = enums.StepShipping
	o.epoch++
	o.validated = true
	o.draft = nil
	o.quote = nil
	o.quoteDest = nil
	o.order = nil
	o.inFlight = false
	o.idemKey = ""
	o.confirmed = ""

	o.logg.Info(o.logg.WithCheckoutStep(ctx, o.step.String()), "checkout entered")
	return nil
}

// SubmitShipping validates the form, fetches a fresh delivery quote for the
// just-submitted destination, and only then enters the payment step. On any
// failure the flow stays in shipping with no stale quote.
func (o *Orchestrator) SubmitShipping(ctx context.Context, draft OrderDraft) error {
	o.mu.Lock()
	if !o.validated || o.step != enums.StepShipping {
		o.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "shipping submission not allowed in current step")
	}
	epoch := o.epoch
	o.mu.Unlock()

	if err := draft.Validate(time.Now()); err != nil {
		return err
	}

	quote, err := o.cart.CalculateDeliveryFees(ctx, draft.Destination())
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.epoch != epoch || o.step != enums.StepShipping {
		// A quote that raced with a step change must never be applied.
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout state changed while quoting delivery fees")
	}

	dest := draft.Destination()
	o.draft = &draft
	o.quote = quote
	o.quoteDest = &dest
	o.step = enums.StepPayment
	o.epoch++

	o.logg.Info(o.logg.WithCheckoutStep(ctx, o.step.String()), "shipping submitted")
	return nil
}

// EditShipping returns from payment to shipping and discards the delivery
// quote, forcing a fresh fetch on the next submission. The draft is kept to
// prefill the form. Refused while payment initiation is in flight: the order
// being created belongs to the shipping data as submitted.
func (o *Orchestrator) EditShipping() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight {
		return pkgerrors.New(pkgerrors.CodeConflict, "cannot edit shipping while payment initiation is in progress")
	}
	if !o.step.CanTransitionTo(enums.StepShipping) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot edit shipping in current step")
	}
	o.step = enums.StepShipping
	o.epoch++
	o.quote = nil
	o.quoteDest = nil
	return nil
}

// GrandTotal recomputes the payable amount from the current cart snapshot
// and quote. Without a quote (before any shipping submission) it is the
// cart's tax-inclusive total alone.
func (o *Orchestrator) GrandTotal() int64 {
	snapshot := o.cart.Snapshot()

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.grandTotalLocked(snapshot)
}

func (o *Orchestrator) grandTotalLocked(snapshot *types.Cart) int64 {
	var total int64
	if snapshot != nil {
		total = snapshot.Total
	}
	if o.quote == nil {
		return total
	}
	total += o.quote.ShippingFee()
	if o.quoteDest != nil && o.quoteDest.RushDelivery {
		total += o.quote.RushFee
	}
	return total
}

// ProceedToPayment creates the order, requests the payment handoff URL, and
// navigates away. The single-flight guard rejects a second invocation while
// a create or URL request is pending, so one click sequence never creates
// two orders. When an order already exists (a previous URL request failed),
// only the payment URL request is retried. Results resolved after the flow
// moved on (re-entry, reconciliation) are discarded instead of applied.
func (o *Orchestrator) ProceedToPayment(ctx context.Context) error {
	o.mu.Lock()
	if o.step != enums.StepPayment {
		o.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment can only start from the payment step")
	}
	if o.inFlight {
		o.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, "payment initiation already in progress")
	}

	snapshot := o.cart.Snapshot()
	if o.draft == nil || snapshot.IsEmpty() {
		o.mu.Unlock()
		// Reaching payment without a draft or cart is a bug in the caller,
		// not a user-facing failure path.
		return pkgerrors.New(pkgerrors.CodeInternal, "order draft or cart missing at payment step")
	}

	o.inFlight = true
	if o.idemKey == "" {
		o.idemKey = uuid.NewString()
	}
	epoch := o.epoch
	draft := *o.draft
	idemKey := o.idemKey
	order := o.order
	o.mu.Unlock()

	if order == nil {
		created, err := o.orders.Create(ctx, draft.toCreateInput(o.cart.SessionID(), idemKey))
		if err != nil {
			o.endFlight()
			// Draft stays intact; the user retries from the payment step.
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		o.mu.Lock()
		if o.epoch != epoch || o.step != enums.StepPayment {
			// The flow moved on while the create was in flight; the result
			// must not be applied and the handoff must not happen.
			o.inFlight = false
			o.mu.Unlock()
			o.logg.Warn(o.logg.WithOrderID(ctx, created.ID), "discarding order creation result, checkout state changed")
			return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout state changed while creating the order")
		}
		o.order = created
		o.mu.Unlock()
		order = created
	}

	handoff, err := o.payments.CreatePaymentURL(ctx, gateway.PaymentURLRequest{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		PaymentMethod: enums.PaymentMethod(o.payCfg.Method),
		OrderInfo:     o.payCfg.OrderInfo(order.ID),
	})
	if err != nil {
		o.endFlight()
		// The order exists but is unpaid. Retrying must not recreate it;
		// RetryPaymentURL repeats only this request.
		return pkgerrors.Wrap(pkgerrors.CodeInconsistentState, err,
			"order created but payment initiation failed")
	}

	o.mu.Lock()
	if o.epoch != epoch || o.step != enums.StepPayment {
		o.inFlight = false
		o.mu.Unlock()
		o.logg.Warn(o.logg.WithOrderID(ctx, order.ID), "discarding payment handoff, checkout state changed")
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout state changed while starting payment")
	}
	o.mu.Unlock()

	if err := o.nav.Navigate(ctx, handoff.PaymentURL); err != nil {
		o.endFlight()
		return pkgerrors.Wrap(pkgerrors.CodeInconsistentState, err, "payment handoff navigation failed")
	}

	o.endFlight()
	o.logg.Info(o.logg.WithOrderID(ctx, order.ID), "handed off to payment gateway")
	return nil
}

// RetryPaymentURL retries the payment handoff for an already-created order.
func (o *Orchestrator) RetryPaymentURL(ctx context.Context) error {
	o.mu.Lock()
	if o.order == nil {
		o.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no created order to retry")
	}
	o.mu.Unlock()
	return o.ProceedToPayment(ctx)
}

// Reconcile interprets the return from the payment gateway. A success status
// with an order identifier is the only way into the confirmation step; it
// clears the cart regardless of prior in-memory state. Anything else is
// "not yet confirmed", never a hard failure, since the gateway may still
// confirm out of band.
func (o *Orchestrator) Reconcile(ctx context.Context, params ReturnParams) error {
	if !params.Confirmed() {
		return pkgerrors.New(pkgerrors.CodeUnconfirmed, "payment return not confirmed").
			WithDetails(map[string]string{"status": params.Status, "order_id": params.OrderID})
	}

	o.mu.Lock()
	o.step = enums.StepConfirmation
	o.epoch++
	o.inFlight = false
	o.confirmed = params.OrderID
	o.draft = nil
	o.quote = nil
	o.quoteDest = nil
	o.mu.Unlock()

	ctx = o.logg.WithOrderID(ctx, params.OrderID)
	if err := o.cart.Clear(ctx); err != nil {
		o.logg.Warn(ctx, "cart clear after payment confirmation failed")
	}

	// Best-effort refresh for the confirmation view; confirmation itself
	// rests on the redirect contract, not on this fetch.
	if order, err := o.orders.Get(ctx, params.OrderID); err == nil {
		o.mu.Lock()
		o.order = order
		o.mu.Unlock()
	} else {
		o.logg.Warn(ctx, "confirmed order refresh failed")
	}

	o.logg.Info(ctx, "checkout confirmed")
	return nil
}

// Step reports the current checkout step.
func (o *Orchestrator) Step() enums.CheckoutStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// Draft returns a copy of the held order draft, nil before shipping was
// submitted.
func (o *Orchestrator) Draft() *OrderDraft {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.draft == nil {
		return nil
	}
	draft := *o.draft
	return &draft
}

// Quote returns a copy of the current delivery quote, nil when none applies.
func (o *Orchestrator) Quote() *types.DeliveryQuote {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.quote == nil {
		return nil
	}
	quote := *o.quote
	return &quote
}

// Order returns the created order, nil before order creation.
func (o *Orchestrator) Order() *types.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.order
}

// ConfirmedOrderID returns the order identifier from return reconciliation.
func (o *Orchestrator) ConfirmedOrderID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.confirmed
}

func (o *Orchestrator) endFlight() {
	o.mu.Lock()
	o.inFlight = false
	o.mu.Unlock()
}
