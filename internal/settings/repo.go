// Package settings stores externally configurable values (tax rate,
// shipping costs) that the order workflow reads instead of hard-coding.
package settings

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("setting not found")

// Well-known keys.
const (
	KeyTaxRate               = "tax_rate"
	KeyFreeShippingThreshold = "free_shipping_threshold"
	KeyShippingCost          = "shipping_cost"
)

// Defaults applied when a key has never been persisted.
var defaults = map[string]string{
	KeyTaxRate:               "0.15",
	KeyFreeShippingThreshold: "500",
	KeyShippingCost:          "25",
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pricing bundles the values the order-total computation needs.
type Pricing struct {
	TaxRate               decimal.Decimal `json:"tax_rate"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	ShippingCost          decimal.Decimal `json:"shipping_cost"`
}

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	GetDecimal(ctx context.Context, key string) (decimal.Decimal, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]Setting, error)
	LoadPricing(ctx context.Context) (Pricing, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var v string
	err := r.db.QueryRow(ctx, `SELECT value FROM settings WHERE key=$1`, key).Scan(&v)
	if err != nil {
		if def, ok := defaults[key]; ok {
			return def, nil
		}
		return "", ErrNotFound
	}
	return v, nil
}

func (r *PGRepo) GetDecimal(ctx context.Context, key string) (decimal.Decimal, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (r *PGRepo) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1,$2,NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	return err
}

func (r *PGRepo) List(ctx context.Context) ([]Setting, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byKey := map[string]Setting{}
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		byKey[s.Key] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// surface defaults for keys never persisted
	for k, v := range defaults {
		if _, ok := byKey[k]; !ok {
			byKey[k] = Setting{Key: k, Value: v}
		}
	}
	out := make([]Setting, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *PGRepo) LoadPricing(ctx context.Context) (Pricing, error) {
	var p Pricing
	var err error
	if p.TaxRate, err = r.GetDecimal(ctx, KeyTaxRate); err != nil {
		return p, err
	}
	if p.FreeShippingThreshold, err = r.GetDecimal(ctx, KeyFreeShippingThreshold); err != nil {
		return p, err
	}
	if p.ShippingCost, err = r.GetDecimal(ctx, KeyShippingCost); err != nil {
		return p, err
	}
	return p, nil
}

// DefaultPricing returns the built-in pricing values, used when no
// settings store is reachable.
func DefaultPricing() Pricing {
	tax, _ := decimal.NewFromString(defaults[KeyTaxRate])
	threshold, _ := decimal.NewFromString(defaults[KeyFreeShippingThreshold])
	cost, _ := decimal.NewFromString(defaults[KeyShippingCost])
	return Pricing{TaxRate: tax, FreeShippingThreshold: threshold, ShippingCost: cost}
}
