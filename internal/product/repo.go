// Package product provides the repository interface and PostgreSQL
// implementation for managing catalog products.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrAlreadyExist = errors.New("product already exists")
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product, updatePrice bool) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productCols = `id, name, sku, description, image_url, category_id, price::text, cost::text,
	stock, track_inventory, status, sales_count, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	var price, cost string
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.ImageURL, &p.CategoryID,
		&price, &cost, &p.Stock, &p.TrackInventory, &p.Status, &p.SalesCount,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Price, _ = decimal.NewFromString(price)
	p.Cost, _ = decimal.NewFromString(cost)
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, sku, description, image_url, category_id, price, cost,
		                      stock, track_inventory, status, sales_count, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8,$9,$10,$11,0,NOW(),NOW())
	`, p.ID, p.Name, p.SKU, p.Description, p.ImageURL, p.CategoryID,
		p.Price, p.Cost, p.Stock, p.TrackInventory, p.Status)
	if err != nil {
		// sku carries a UNIQUE constraint
		return ErrAlreadyExist
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productCols+` FROM products WHERE id=$1
	`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *PGRepo) GetManyByIDs(ctx context.Context, ids []string) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+` FROM products WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+`
		FROM products
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%' OR sku ILIKE '%'||$1||'%')
		  AND ($2 = '' OR category_id::text = $2)
		  AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, search, q.CategoryID, q.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update changes catalog fields. Stock and sales_count are owned by the
// order and inventory transactions and are never written here.
func (r *PGRepo) Update(ctx context.Context, p *Product, updatePrice bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if updatePrice {
		tag, err := r.db.Exec(ctx, `
			UPDATE products
			SET name        = COALESCE(NULLIF($2,''), name),
			    description = COALESCE(NULLIF($3,''), description),
			    image_url   = COALESCE(NULLIF($4,''), image_url),
			    category_id = COALESCE(NULLIF($5,'')::uuid, category_id),
			    status      = COALESCE(NULLIF($6,''), status),
			    price       = $7,
			    cost        = $8,
			    updated_at  = NOW()
			WHERE id = $1
		`, p.ID, p.Name, p.Description, p.ImageURL, p.CategoryID, p.Status, p.Price, p.Cost)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name        = COALESCE(NULLIF($2,''), name),
		    description = COALESCE(NULLIF($3,''), description),
		    image_url   = COALESCE(NULLIF($4,''), image_url),
		    category_id = COALESCE(NULLIF($5,'')::uuid, category_id),
		    status      = COALESCE(NULLIF($6,''), status),
		    updated_at  = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.ImageURL, p.CategoryID, p.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
