package checkout

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/mediastorehq/storefront-go/internal/orders"
	"github.com/mediastorehq/storefront-go/pkg/enums"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// OrderDraft merges the shipping-form input with the delivery mode. It lives
// only in orchestrator memory between the shipping and payment steps and is
// discarded once an order is created or the flow is abandoned.
type OrderDraft struct {
	RecipientName    string             `json:"recipient_name" validate:"required"`
	Email            string             `json:"email" validate:"required,email"`
	Phone            string             `json:"phone" validate:"required,min=8"`
	Province         string             `json:"province" validate:"required"`
	Address          string             `json:"address" validate:"required"`
	DeliveryType     enums.DeliveryType `json:"delivery_type" validate:"required,oneof=STANDARD RUSH"`
	RushDeliveryTime *time.Time         `json:"rush_delivery_time,omitempty"`
	RushInstructions *string            `json:"rush_instructions,omitempty"`
}

// Validate checks the draft against the shipping-form rules. All field
// problems are reported together rather than one at a time.
func (d OrderDraft) Validate(now time.Time) error {
	var combined error

	if err := validate.Struct(d); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range errs {
				combined = multierr.Append(combined, fmt.Errorf("%s %s", fieldErr.Field(), validationMessage(fieldErr)))
			}
		} else {
			combined = multierr.Append(combined, err)
		}
	}

	if !d.DeliveryType.IsRush() {
		if d.RushDeliveryTime != nil || d.RushInstructions != nil {
			combined = multierr.Append(combined, fmt.Errorf("rush fields require rush delivery"))
		}
	} else if d.RushDeliveryTime != nil && d.RushDeliveryTime.Before(now) {
		combined = multierr.Append(combined, fmt.Errorf("rush_delivery_time must be in the future"))
	}

	if combined == nil {
		return nil
	}

	details := make([]string, 0, len(multierr.Errors(combined)))
	for _, item := range multierr.Errors(combined) {
		details = append(details, item.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, combined, "shipping details invalid").WithDetails(details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}

// Destination derives the fee-quote key from the draft. Any change to it
// invalidates a previously fetched quote.
func (d OrderDraft) Destination() types.Destination {
	return types.Destination{
		Province:     d.Province,
		Address:      d.Address,
		RushDelivery: d.DeliveryType.IsRush(),
	}
}

func (d OrderDraft) toCreateInput(sessionID, idempotencyKey string) orders.CreateInput {
	return orders.CreateInput{
		SessionID:        sessionID,
		IdempotencyKey:   idempotencyKey,
		RecipientName:    d.RecipientName,
		Email:            d.Email,
		Phone:            d.Phone,
		Province:         d.Province,
		Address:          d.Address,
		DeliveryType:     d.DeliveryType,
		RushDeliveryTime: d.RushDeliveryTime,
		RushInstructions: d.RushInstructions,
	}
}
