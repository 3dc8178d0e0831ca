// Package dashboard serves read-only rollups over orders, users and
// products. Pure queries, no writes.
package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Stats struct {
	TotalOrders    int               `json:"total_orders"`
	TotalRevenue   decimal.Decimal   `json:"total_revenue"`
	TotalUsers     int               `json:"total_users"`
	TotalProducts  int               `json:"total_products"`
	OrdersByStatus map[string]int    `json:"orders_by_status"`
	RevenueTrend   []DayRevenue      `json:"revenue_trend"`
	TopProducts    []ProductRollup   `json:"top_products"`
	LowStock       []LowStockProduct `json:"low_stock"`
}

type DayRevenue struct {
	Day     time.Time       `json:"day"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductRollup struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	SalesCount int    `json:"sales_count"`
}

type LowStockProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

type Repository interface {
	Stats(ctx context.Context, trendDays, lowStockBelow int) (*Stats, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Stats(ctx context.Context, trendDays, lowStockBelow int) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if trendDays <= 0 || trendDays > 90 {
		trendDays = 7
	}
	if lowStockBelow <= 0 {
		lowStockBelow = 5
	}

	s := &Stats{OrdersByStatus: map[string]int{}}

	var revenue string
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total) FILTER (WHERE status NOT IN ('CANCELLED','REFUNDED')), 0)::text
		FROM orders
	`).Scan(&s.TotalOrders, &revenue)
	if err != nil {
		return nil, err
	}
	s.TotalRevenue, _ = decimal.NewFromString(revenue)

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&s.TotalUsers); err != nil {
		return nil, err
	}
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&s.TotalProducts); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		s.OrdersByStatus[status] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day, COUNT(*),
		       COALESCE(SUM(total) FILTER (WHERE status NOT IN ('CANCELLED','REFUNDED')), 0)::text
		FROM orders
		WHERE created_at >= NOW() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day
	`, trendDays)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var d DayRevenue
		var rev string
		if err := rows.Scan(&d.Day, &d.Orders, &rev); err != nil {
			rows.Close()
			return nil, err
		}
		d.Revenue, _ = decimal.NewFromString(rev)
		s.RevenueTrend = append(s.RevenueTrend, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, name, sales_count FROM products
		WHERE sales_count > 0
		ORDER BY sales_count DESC LIMIT 5
	`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p ProductRollup
		if err := rows.Scan(&p.ProductID, &p.Name, &p.SalesCount); err != nil {
			rows.Close()
			return nil, err
		}
		s.TopProducts = append(s.TopProducts, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, name, stock FROM products
		WHERE track_inventory AND stock < $1 AND status <> 'discontinued'
		ORDER BY stock ASC LIMIT 20
	`, lowStockBelow)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Stock); err != nil {
			rows.Close()
			return nil, err
		}
		s.LowStock = append(s.LowStock, p)
	}
	rows.Close()
	return s, rows.Err()
}
