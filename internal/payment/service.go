package payment

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mcampos87/comercio-api/internal/order"
)

// Service runs payment attempts against orders, recording every attempt
// and feeding the outcome back into the order state machine.
type Service struct {
	payments Repository
	orders   order.Repository
	registry *Registry
	timeout  time.Duration
}

func NewService(payments Repository, orders order.Repository, registry *Registry) *Service {
	return &Service{payments: payments, orders: orders, registry: registry, timeout: 10 * time.Second}
}

func (s *Service) loadOrder(ctx context.Context, orderID string, actor order.Actor) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && o.UserID != actor.ID {
		return nil, order.ErrForbidden
	}
	if o.PaymentStatus == order.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	return o, nil
}

// markOrder pushes the payment outcome into the order. The order status
// is derived from the payment status (no explicit status supplied).
func (s *Service) markOrder(ctx context.Context, orderID string, st order.PaymentStatus) (*order.Order, error) {
	return s.orders.UpdateStatus(ctx, orderID, order.StatusChange{PaymentStatus: &st})
}

func (s *Service) record(ctx context.Context, o *order.Order, method string, st order.PaymentStatus, txnID, gatewayResponse string) (*Payment, error) {
	p := &Payment{
		ID:              uuid.NewString(),
		OrderID:         o.ID,
		Amount:          o.Total,
		Method:          method,
		Status:          st,
		TransactionID:   txnID,
		GatewayResponse: gatewayResponse,
	}
	if st == order.PaymentPaid || st == order.PaymentFailed {
		now := time.Now().UTC()
		p.ProcessedAt = &now
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Process settles a payment synchronously. Offline methods bypass the
// provider registry and are marked PAID immediately; gateway methods go
// through initiate+verify under a timeout. A timed-out or errored
// initiation is a FAILED attempt, not a crash.
func (s *Service) Process(ctx context.Context, in ProcessRequest, actor order.Actor) (*Payment, *order.Order, error) {
	o, err := s.loadOrder(ctx, in.OrderID, actor)
	if err != nil {
		return nil, nil, err
	}
	method := in.Method
	if method == "" {
		method = o.PaymentMethod
	}

	if IsOffline(method) {
		p, err := s.record(ctx, o, method, order.PaymentPaid, "OFFLINE-"+uuid.NewString(), "")
		if err != nil {
			return nil, nil, err
		}
		updated, err := s.markOrder(ctx, o.ID, order.PaymentPaid)
		if err != nil {
			return nil, nil, err
		}
		return p, updated, nil
	}

	provider, ok := s.registry.Lookup(method)
	if !ok {
		return nil, nil, ErrUnknownMethod
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := provider.Initiate(cctx, o.ID, o.Total, InitiateOptions{})
	if err != nil {
		log.Printf("[payment] initiate failed order=%s method=%s err=%v", o.ID, method, err)
		return s.fail(ctx, o, method, "", err.Error())
	}
	if res.Status == order.PaymentFailed {
		return s.fail(ctx, o, method, res.TransactionID, "gateway declined initiation")
	}

	vres, err := provider.Verify(cctx, res.TransactionID, nil)
	if err != nil {
		log.Printf("[payment] verify failed order=%s txn=%s err=%v", o.ID, res.TransactionID, err)
		return s.fail(ctx, o, method, res.TransactionID, err.Error())
	}
	if !vres.Success {
		return s.fail(ctx, o, method, res.TransactionID, "gateway rejected payment")
	}

	p, err := s.record(ctx, o, method, order.PaymentPaid, res.TransactionID, "")
	if err != nil {
		return nil, nil, err
	}
	updated, err := s.markOrder(ctx, o.ID, order.PaymentPaid)
	if err != nil {
		return nil, nil, err
	}
	return p, updated, nil
}

func (s *Service) fail(ctx context.Context, o *order.Order, method, txnID, reason string) (*Payment, *order.Order, error) {
	p, err := s.record(ctx, o, method, order.PaymentFailed, txnID, reason)
	if err != nil {
		return nil, nil, err
	}
	updated, err := s.markOrder(ctx, o.ID, order.PaymentFailed)
	if err != nil {
		return nil, nil, err
	}
	return p, updated, nil
}

// Initiate starts a redirect payment flow and records the PENDING attempt.
func (s *Service) Initiate(ctx context.Context, in InitiateRequest, actor order.Actor) (*Payment, error) {
	o, err := s.loadOrder(ctx, in.OrderID, actor)
	if err != nil {
		return nil, err
	}
	if IsOffline(in.Method) {
		// offline methods settle through Process, there is nothing to redirect to
		return nil, ErrUnknownMethod
	}
	provider, ok := s.registry.Lookup(in.Method)
	if !ok {
		return nil, ErrUnknownMethod
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := provider.Initiate(cctx, o.ID, o.Total, InitiateOptions{ReturnURL: in.ReturnURL, CancelURL: in.CancelURL})
	if err != nil {
		p, _, ferr := s.fail(ctx, o, in.Method, "", err.Error())
		if ferr != nil {
			return nil, ferr
		}
		return p, nil
	}
	if res.Status == order.PaymentFailed {
		p, _, ferr := s.fail(ctx, o, in.Method, res.TransactionID, "gateway declined initiation")
		if ferr != nil {
			return nil, ferr
		}
		return p, nil
	}

	p, err := s.record(ctx, o, in.Method, order.PaymentPending, res.TransactionID, "")
	if err != nil {
		return nil, err
	}
	p.RedirectURL = res.RedirectURL
	return p, nil
}

// HandleWebhook verifies a gateway callback and applies the outcome to
// the recorded attempt and its order.
func (s *Service) HandleWebhook(ctx context.Context, providerName, transactionID string, raw []byte) (*Payment, error) {
	p, err := s.payments.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	provider, ok := s.registry.Lookup(providerName)
	if !ok {
		if provider, ok = s.registry.Lookup(p.Method); !ok {
			return nil, ErrUnknownMethod
		}
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now().UTC()
	vres, err := provider.Verify(cctx, transactionID, raw)
	if err != nil || !vres.Success {
		if uerr := s.payments.UpdateStatus(ctx, p.ID, order.PaymentFailed, string(raw), &now); uerr != nil {
			return nil, uerr
		}
		p.Status = order.PaymentFailed
		if _, uerr := s.markOrder(ctx, p.OrderID, order.PaymentFailed); uerr != nil {
			return nil, uerr
		}
		return p, nil
	}

	if err := s.payments.UpdateStatus(ctx, p.ID, order.PaymentPaid, string(raw), &now); err != nil {
		return nil, err
	}
	p.Status = order.PaymentPaid
	p.ProcessedAt = &now
	if _, err := s.markOrder(ctx, p.OrderID, order.PaymentPaid); err != nil {
		return nil, err
	}
	return p, nil
}
