// Package payment provides the pluggable payment-provider abstraction,
// the record of payment attempts, and the processing service on top.
package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/order"
)

var (
	ErrNotFound      = errors.New("payment not found")
	ErrUnknownMethod = errors.New("no provider for payment method")
	ErrAlreadyPaid   = errors.New("order is already paid")
)

type InitiateOptions struct {
	ReturnURL string
	CancelURL string
}

type InitiateResult struct {
	TransactionID string
	Status        order.PaymentStatus // PENDING, PAID or FAILED
	RedirectURL   string
}

type VerifyResult struct {
	Success bool
	Status  order.PaymentStatus
}

// Provider is a payment gateway integration. Implementations must be
// swappable without changing call sites.
type Provider interface {
	Initiate(ctx context.Context, orderID string, amount decimal.Decimal, opts InitiateOptions) (InitiateResult, error)
	Verify(ctx context.Context, transactionID string, rawCallback []byte) (VerifyResult, error)
}

// Registry maps payment method names to providers. It is built once at
// startup and read-only afterwards.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

func (r *Registry) Register(method string, p Provider) *Registry {
	r.providers[method] = p
	return r
}

// Lookup returns the provider for a method, or false for unknown methods.
// Offline methods have no provider by design.
func (r *Registry) Lookup(method string) (Provider, bool) {
	p, ok := r.providers[method]
	return p, ok
}

// IsOffline reports whether the method settles without a gateway
// (marked PAID immediately, no provider involved).
func IsOffline(method string) bool {
	return method == order.MethodCashOnDelivery || method == order.MethodBankTransfer
}
