package notification

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("notification not found")

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, n *Notification) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, read, created_at)
		VALUES ($1,$2,$3,$4,$5,false,NOW())
		RETURNING created_at
	`, n.ID, n.UserID, n.Type, n.Title, n.Message).Scan(&n.CreatedAt)
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, title, message, read, created_at
		FROM notifications
		WHERE user_id = $1 AND ($2 = false OR read = false)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PGRepo) MarkRead(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
