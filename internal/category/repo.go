package category

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("category not found")
	ErrAlreadyExist = errors.New("category already exists")
)

type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, activeOnly bool) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO categories (id, name, slug, description, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
	`, c.ID, c.Name, c.Slug, c.Description, c.Active)
	if err != nil {
		// slug carries a UNIQUE constraint
		return ErrAlreadyExist
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, description, active, created_at, updated_at
		FROM categories WHERE id=$1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *PGRepo) List(ctx context.Context, activeOnly bool) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, description, active, created_at, updated_at
		FROM categories
		WHERE ($1 = false OR active)
		ORDER BY name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE categories
		SET name        = COALESCE(NULLIF($2,''), name),
		    slug        = COALESCE(NULLIF($3,''), slug),
		    description = COALESCE(NULLIF($4,''), description),
		    active      = $5,
		    updated_at  = NOW()
		WHERE id = $1
	`, c.ID, c.Name, c.Slug, c.Description, c.Active)
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

	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
