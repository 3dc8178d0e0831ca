package order

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentPaid              PaymentStatus = "PAID"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

type FulfillmentStatus string

const (
	FulfillmentUnfulfilled        FulfillmentStatus = "UNFULFILLED"
	FulfillmentPartiallyFulfilled FulfillmentStatus = "PARTIALLY_FULFILLED"
	FulfillmentFulfilled          FulfillmentStatus = "FULFILLED"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// Allowed order-status edges. CANCELLED and REFUNDED are terminal.
var orderTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// Allowed payment-status edges. FAILED may retry back to PENDING.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:           {PaymentPaid, PaymentFailed},
	PaymentPaid:              {PaymentRefunded, PaymentPartiallyRefunded},
	PaymentFailed:            {PaymentPending},
	PaymentRefunded:          {},
	PaymentPartiallyRefunded: {PaymentRefunded},
}

// CanTransition reports whether the order-status edge from->to is allowed.
// A same-status transition is a permitted no-op.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether the payment-status edge from->to is
// allowed. A same-status transition is a permitted no-op.
func CanTransitionPayment(from, to PaymentStatus) bool {
	if from == to {
		return true
	}
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates an order-status edge. It has no side effect; the
// caller applies the new status.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// StatusFromPayment derives the order status implied by a payment status.
// Used only when a status update carries a new payment status and no
// explicit order status.
func StatusFromPayment(p PaymentStatus) Status {
	switch p {
	case PaymentPaid:
		return StatusConfirmed
	case PaymentRefunded:
		return StatusRefunded
	default: // FAILED and everything else fall back to PENDING
		return StatusPending
	}
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded, PaymentPartiallyRefunded:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

func ParseFulfillmentStatus(s string) (FulfillmentStatus, error) {
	switch FulfillmentStatus(s) {
	case FulfillmentUnfulfilled, FulfillmentPartiallyFulfilled, FulfillmentFulfilled:
		return FulfillmentStatus(s), nil
	}
	return "", fmt.Errorf("unknown fulfillment status %q", s)
}

// StatusChange is one status-update request against an order. Nil fields
// are left untouched. When PaymentStatus is set and Status is not, the
// order status is derived from the payment status.
type StatusChange struct {
	Status            *Status
	PaymentStatus     *PaymentStatus
	FulfillmentStatus *FulfillmentStatus
}

// ApplyStatusChange mutates o according to the change, enforcing both
// transition tables. Lifecycle timestamps are stamped at most once:
// re-entering a status never overwrites an existing timestamp.
// An explicitly requested order status always wins over derivation.
func ApplyStatusChange(o *Order, ch StatusChange, now time.Time) error {
	if ch.PaymentStatus != nil {
		next := *ch.PaymentStatus
		if !CanTransitionPayment(o.PaymentStatus, next) {
			return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, o.PaymentStatus, next)
		}
		o.PaymentStatus = next
		if next == PaymentPaid && o.PaidAt == nil {
			o.PaidAt = &now
		}
		if ch.Status == nil {
			// derivation fires only when no explicit order status is supplied,
			// and only along an allowed edge
			if derived := StatusFromPayment(next); CanTransition(o.Status, derived) {
				applyOrderStatus(o, derived, now)
			}
		}
	}

	if ch.Status != nil {
		next := *ch.Status
		if !CanTransition(o.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
		}
		applyOrderStatus(o, next, now)
	}

	if ch.FulfillmentStatus != nil {
		// fulfillment is tracked but not transition-guarded
		o.FulfillmentStatus = *ch.FulfillmentStatus
	}
	return nil
}

func applyOrderStatus(o *Order, next Status, now time.Time) {
	o.Status = next
	switch next {
	case StatusShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &now
		}
	case StatusDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	case StatusCancelled:
		if o.CancelledAt == nil {
			o.CancelledAt = &now
		}
	}
}
