package payment

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/order"
)

// MockProvider simulates a gateway: a fixed short delay, a small random
// initiation failure rate, and verifications that always succeed.
// Placeholder for a real integration.
type MockProvider struct {
	Delay    time.Duration
	FailRate float64 // 0..1, probability that Initiate returns FAILED
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Delay: 50 * time.Millisecond, FailRate: 0.05}
}

func (m *MockProvider) wait(ctx context.Context) error {
	select {
	case <-time.After(m.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockProvider) Initiate(ctx context.Context, orderID string, amount decimal.Decimal, opts InitiateOptions) (InitiateResult, error) {
	if err := m.wait(ctx); err != nil {
		return InitiateResult{}, err
	}
	res := InitiateResult{
		TransactionID: "MOCK-" + uuid.NewString(),
		Status:        order.PaymentPending,
	}
	if rand.Float64() < m.FailRate {
		res.Status = order.PaymentFailed
		return res, nil
	}
	if opts.ReturnURL != "" {
		res.RedirectURL = "https://mock-gateway.example/pay/" + res.TransactionID
	}
	return res, nil
}

func (m *MockProvider) Verify(ctx context.Context, transactionID string, rawCallback []byte) (VerifyResult, error) {
	if err := m.wait(ctx); err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{Success: true, Status: order.PaymentPaid}, nil
}
