package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrAlreadyExist = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, error)
	Update(ctx context.Context, u *User) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, total_orders, total_spent, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,0,0,NOW(),NOW())
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role)
	if err != nil {
		// email carries a UNIQUE constraint
		return ErrAlreadyExist
	}
	return nil
}

const userCols = `id, name, email, password_hash, role, total_orders, total_spent::text, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var spent string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.TotalOrders, &spent, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.TotalSpent, _ = decimal.NewFromString(spent)
	return &u, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, email))
	if err != nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+userCols+` FROM users
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET name  = COALESCE(NULLIF($2,''), name),
		    email = COALESCE(NULLIF($3,''), email),
		    updated_at = NOW()
		WHERE id = $1
	`, u.ID, u.Name, u.Email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
