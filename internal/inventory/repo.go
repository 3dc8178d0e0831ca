// Package inventory maintains the append-only stock movement ledger and
// the atomic stock adjustment operations over it.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrNotTracked = errors.New("product does not track inventory")
	ErrBadOp      = errors.New("unknown adjustment operation")
)

type Repository interface {
	Adjust(ctx context.Context, a Adjustment) (*Movement, int, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]Movement, error)
}

// Adjustment describes a manual stock change.
type Adjustment struct {
	ProductID string
	Operation string // OpIncrease | OpDecrease | OpSet
	Quantity  int
	Type      string // MovementAdjustment | MovementRestock | MovementReturn
	Reason    string
	ActorID   string
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Adjust applies a manual stock change and appends the matching movement
// row in a single transaction. Decrease floors at zero; set records the
// difference against the current value. Returns the movement and the
// resulting stock level.
func (r *PGRepo) Adjust(ctx context.Context, a Adjustment) (*Movement, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if a.Quantity < 0 {
		return nil, 0, fmt.Errorf("%w: negative quantity", ErrBadOp)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stock int
	var tracked bool
	err = tx.QueryRow(ctx, `
		SELECT stock, track_inventory FROM products WHERE id=$1 FOR UPDATE
	`, a.ProductID).Scan(&stock, &tracked)
	if err != nil {
		return nil, 0, ErrNotFound
	}
	if !tracked {
		return nil, 0, ErrNotTracked
	}

	var delta int
	switch a.Operation {
	case OpIncrease:
		delta = a.Quantity
	case OpDecrease:
		delta = -a.Quantity
		if stock+delta < 0 {
			delta = -stock // floor at zero
		}
	case OpSet:
		delta = a.Quantity - stock
	default:
		return nil, 0, ErrBadOp
	}
	newStock := stock + delta

	m := &Movement{
		ID:        uuid.NewString(),
		ProductID: a.ProductID,
		Delta:     delta,
		Type:      a.Type,
		Reason:    a.Reason,
		ActorID:   a.ActorID,
	}
	if m.Type == "" {
		m.Type = MovementAdjustment
	}
	if err := AppendMovement(ctx, tx, m); err != nil {
		return nil, 0, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = $2,
		    status = CASE
		               WHEN $2 = 0 THEN 'out_of_stock'
		               WHEN status = 'out_of_stock' AND $2 > 0 THEN 'active'
		               ELSE status
		             END,
		    updated_at = NOW()
		WHERE id = $1
	`, a.ProductID, newStock); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return m, newStock, nil
}

// AppendMovement writes one ledger row inside the caller's transaction.
// The order workflow shares this with its own SALE/RETURN entries.
func AppendMovement(ctx context.Context, tx pgx.Tx, m *Movement) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO inventory_movements (id, product_id, delta, type, reason, reference, actor_id, created_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,'')::uuid,NOW())
	`, m.ID, m.ProductID, m.Delta, m.Type, m.Reason, m.Reference, m.ActorID)
	return err
}

func (r *PGRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]Movement, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, delta, type, COALESCE(reason,''), COALESCE(reference,''),
		       COALESCE(actor_id::text,''), created_at
		FROM inventory_movements
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.Type, &m.Reason, &m.Reference, &m.ActorID, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
