package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/order"
)

// stubOrders keeps one order in memory and applies status changes through
// the real state machine.
type stubOrders struct {
	order *order.Order
}

func (s *stubOrders) Create(ctx context.Context, in order.CreateInput) (*order.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrders) GetByID(ctx context.Context, id string) (*order.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, order.ErrNotFound
	}
	cp := *s.order
	return &cp, nil
}

func (s *stubOrders) ListByUser(ctx context.Context, userID string, limit, offset int) ([]order.Order, error) {
	return nil, nil
}

func (s *stubOrders) List(ctx context.Context, q order.Query) ([]order.Order, error) {
	return nil, nil
}

func (s *stubOrders) UpdateStatus(ctx context.Context, id string, ch order.StatusChange) (*order.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, order.ErrNotFound
	}
	if err := order.ApplyStatusChange(s.order, ch, time.Now().UTC()); err != nil {
		return nil, err
	}
	cp := *s.order
	return &cp, nil
}

func (s *stubOrders) Cancel(ctx context.Context, id string, actor order.Actor) (*order.Order, error) {
	return nil, errors.New("not implemented")
}

// stubPayments records attempts in memory.
type stubPayments struct {
	rows []*Payment
}

func (s *stubPayments) Create(ctx context.Context, p *Payment) error {
	cp := *p
	cp.CreatedAt = time.Now()
	s.rows = append(s.rows, &cp)
	p.CreatedAt = cp.CreatedAt
	return nil
}

func (s *stubPayments) GetByTransactionID(ctx context.Context, txnID string) (*Payment, error) {
	for _, p := range s.rows {
		if p.TransactionID == txnID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubPayments) UpdateStatus(ctx context.Context, id string, status order.PaymentStatus, gatewayResponse string, processedAt *time.Time) error {
	for _, p := range s.rows {
		if p.ID == id {
			p.Status = status
			if gatewayResponse != "" {
				p.GatewayResponse = gatewayResponse
			}
			if processedAt != nil {
				p.ProcessedAt = processedAt
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *stubPayments) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	var out []Payment
	for _, p := range s.rows {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func newTestOrder() *order.Order {
	return &order.Order{
		ID:            "o-1",
		UserID:        "u-1",
		Total:         decimal.RequireFromString("255.00"),
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentPending,
		PaymentMethod: "MOCK",
	}
}

func TestProcess_OfflineMethodPaysImmediately(t *testing.T) {
	orders := &stubOrders{order: newTestOrder()}
	payments := &stubPayments{}
	svc := NewService(payments, orders, NewRegistry())

	p, o, err := svc.Process(context.Background(), ProcessRequest{OrderID: "o-1", Method: order.MethodCashOnDelivery},
		order.Actor{ID: "u-1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Status != order.PaymentPaid {
		t.Fatalf("payment status = %s, want PAID", p.Status)
	}
	if p.ProcessedAt == nil {
		t.Fatal("processed_at not set")
	}
	if o.PaymentStatus != order.PaymentPaid {
		t.Fatalf("order payment status = %s, want PAID", o.PaymentStatus)
	}
	// derivation: payment PAID with no explicit order status -> CONFIRMED
	if o.Status != order.StatusConfirmed {
		t.Fatalf("order status = %s, want CONFIRMED", o.Status)
	}
	if o.PaidAt == nil {
		t.Fatal("paid_at not set")
	}
	if len(payments.rows) != 1 {
		t.Fatalf("recorded %d attempts, want 1", len(payments.rows))
	}
}

func TestProcess_UnknownMethod(t *testing.T) {
	orders := &stubOrders{order: newTestOrder()}
	svc := NewService(&stubPayments{}, orders, NewRegistry())

	_, _, err := svc.Process(context.Background(), ProcessRequest{OrderID: "o-1", Method: "STRIPE"},
		order.Actor{ID: "u-1"})
	if !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("err = %v, want ErrUnknownMethod", err)
	}
}

func TestProcess_GatewaySuccess(t *testing.T) {
	orders := &stubOrders{order: newTestOrder()}
	payments := &stubPayments{}
	reg := NewRegistry().Register("MOCK", &MockProvider{Delay: time.Millisecond, FailRate: 0})
	svc := NewService(payments, orders, reg)

	p, o, err := svc.Process(context.Background(), ProcessRequest{OrderID: "o-1", Method: "MOCK"},
		order.Actor{ID: "u-1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Status != order.PaymentPaid {
		t.Fatalf("payment status = %s, want PAID", p.Status)
	}
	if o.Status != order.StatusConfirmed {
		t.Fatalf("order status = %s, want CONFIRMED", o.Status)
	}
}

func TestProcess_GatewayDeclineRecordsFailedAttempt(t *testing.T) {
	orders := &stubOrders{order: newTestOrder()}
	payments := &stubPayments{}
	reg := NewRegistry().Register("MOCK", &MockProvider{Delay: time.Millisecond, FailRate: 1})
	svc := NewService(payments, orders, reg)

	p, o, err := svc.Process(context.Background(), ProcessRequest{OrderID: "o-1", Method: "MOCK"},
		order.Actor{ID: "u-1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Status != order.PaymentFailed {
		t.Fatalf("payment status = %s, want FAILED", p.Status)
	}
	if o.PaymentStatus != order.PaymentFailed {
		t.Fatalf("order payment status = %s, want FAILED", o.PaymentStatus)
	}
	if o.Status != order.StatusPending {
		t.Fatalf("order status = %s, want PENDING", o.Status)
	}
}

func TestProcess_TimeoutIsFailedInitiation(t *testing.T) {
	orders := &stubOrders{order: newTestOrder()}
	payments := &stubPayments{}
	reg := NewRegistry().Register("MOCK", &MockProvider{Delay: time.Second, FailRate: 0})
	svc := NewService(payments, orders, reg)
	svc.timeout = 5 * time.Millisecond

	p, _, err := svc.Process(context.Background(), ProcessRequest{OrderID: "o-1", Method: "MOCK"},
		order.Actor{ID: "u-1"})
	if err != nil {
		t.Fatalf("timeout must not surface as an error, got %v", err)
	}
	if p.Status != order.PaymentFailed {
		t.Fatalf("payment status = %s, want FAILED", p.Status)
	}
}

func TestProcess_ForbiddenForOtherUser(t *testing.T) {
	orders := &stubOrders{order: newTestOrder()}
	svc := NewService(&stubPayments{}, orders, NewRegistry())

	_, _, err := svc.Process(context.Background(), ProcessRequest{OrderID: "o-1", Method: order.MethodCashOnDelivery},
		order.Actor{ID: "someone-else"})
	if !errors.Is(err, order.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	// admins may process any order
	_, _, err = svc.Process(context.Background(), ProcessRequest{OrderID: "o-1", Method: order.MethodCashOnDelivery},
		order.Actor{ID: "someone-else", Admin: true})
	if err != nil {
		t.Fatalf("admin process failed: %v", err)
	}
}

func TestProcess_AlreadyPaid(t *testing.T) {
	o := newTestOrder()
	o.PaymentStatus = order.PaymentPaid
	svc := NewService(&stubPayments{}, &stubOrders{order: o}, NewRegistry())

	_, _, err := svc.Process(context.Background(), ProcessRequest{OrderID: "o-1", Method: order.MethodCashOnDelivery},
		order.Actor{ID: "u-1"})
	if !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("err = %v, want ErrAlreadyPaid", err)
	}
}

func TestInitiateAndWebhook(t *testing.T) {
	orders := &stubOrders{order: newTestOrder()}
	payments := &stubPayments{}
	reg := NewRegistry().Register("MOCK", &MockProvider{Delay: time.Millisecond, FailRate: 0})
	svc := NewService(payments, orders, reg)

	p, err := svc.Initiate(context.Background(), InitiateRequest{
		OrderID:   "o-1",
		Method:    "MOCK",
		ReturnURL: "https://shop.example/return",
	}, order.Actor{ID: "u-1"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Status != order.PaymentPending {
		t.Fatalf("payment status = %s, want PENDING", p.Status)
	}
	if p.RedirectURL == "" {
		t.Fatal("redirect url missing")
	}

	got, err := svc.HandleWebhook(context.Background(), "MOCK", p.TransactionID, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("webhook err: %v", err)
	}
	if got.Status != order.PaymentPaid {
		t.Fatalf("payment status after webhook = %s, want PAID", got.Status)
	}
	if orders.order.Status != order.StatusConfirmed {
		t.Fatalf("order status after webhook = %s, want CONFIRMED", orders.order.Status)
	}
}

func TestHandleWebhook_UnknownTransaction(t *testing.T) {
	svc := NewService(&stubPayments{}, &stubOrders{order: newTestOrder()}, NewRegistry())

	_, err := svc.HandleWebhook(context.Background(), "MOCK", "nope", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
