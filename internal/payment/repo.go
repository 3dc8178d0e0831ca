package payment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/order"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByTransactionID(ctx context.Context, txnID string) (*Payment, error)
	UpdateStatus(ctx context.Context, id string, status order.PaymentStatus, gatewayResponse string, processedAt *time.Time) error
	ListByOrder(ctx context.Context, orderID string) ([]Payment, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, p *Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO payments (id, order_id, amount, method, status, transaction_id, gateway_response, processed_at, created_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,''),$8,NOW())
		RETURNING created_at
	`, p.ID, p.OrderID, p.Amount, p.Method, p.Status, p.TransactionID, p.GatewayResponse, p.ProcessedAt).Scan(&p.CreatedAt)
}

const paymentCols = `id, order_id, amount::text, method, status, COALESCE(transaction_id,''),
	COALESCE(gateway_response,''), processed_at, created_at`

func scanPayment(row interface{ Scan(...any) error }) (*Payment, error) {
	var p Payment
	var amount string
	if err := row.Scan(&p.ID, &p.OrderID, &amount, &p.Method, &p.Status,
		&p.TransactionID, &p.GatewayResponse, &p.ProcessedAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Amount, _ = decimal.NewFromString(amount)
	return &p, nil
}

func (r *PGRepo) GetByTransactionID(ctx context.Context, txnID string) (*Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanPayment(r.db.QueryRow(ctx, `
		SELECT `+paymentCols+` FROM payments WHERE transaction_id=$1
	`, txnID))
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status order.PaymentStatus, gatewayResponse string, processedAt *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status = $2,
		    gateway_response = COALESCE(NULLIF($3,''), gateway_response),
		    processed_at = COALESCE($4, processed_at)
		WHERE id = $1
	`, id, status, gatewayResponse, processedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+paymentCols+` FROM payments WHERE order_id=$1 ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
