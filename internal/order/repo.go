// Package order implements the order lifecycle: transactional creation,
// cancellation, and state-machine-guarded status updates.
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/inventory"
	"github.com/mcampos87/comercio-api/internal/settings"
)

// Actor identifies who performs an operation on an order.
type Actor struct {
	ID    string
	Admin bool
}

// Query are admin list filters.
type Query struct {
	Status string
	Limit  int
	Offset int
}

// CreateInput is a validated order creation command.
type CreateInput struct {
	UserID  string
	Req     CreateRequest
	Pricing settings.Pricing
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
	List(ctx context.Context, q Query) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, ch StatusChange) (*Order, error)
	Cancel(ctx context.Context, id string, actor Actor) (*Order, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderCols = `id, number, user_id, customer_name, customer_email, COALESCE(customer_phone,''),
	shipping_address, shipping_city, shipping_country, COALESCE(postal_code,''),
	subtotal::text, tax::text, shipping_cost::text, discount::text, total::text,
	status, payment_status, fulfillment_status, payment_method, COALESCE(notes,''),
	paid_at, shipped_at, delivered_at, cancelled_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var sub, tax, ship, disc, total string
	if err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingCountry, &o.PostalCode,
		&sub, &tax, &ship, &disc, &total,
		&o.Status, &o.PaymentStatus, &o.FulfillmentStatus, &o.PaymentMethod, &o.Notes,
		&o.PaidAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Subtotal, _ = decimal.NewFromString(sub)
	o.Tax, _ = decimal.NewFromString(tax)
	o.ShippingCost, _ = decimal.NewFromString(ship)
	o.Discount, _ = decimal.NewFromString(disc)
	o.Total, _ = decimal.NewFromString(total)
	return &o, nil
}

// lockedProduct is the snapshot taken under FOR UPDATE during creation.
type lockedProduct struct {
	ID       string
	Name     string
	SKU      string
	ImageURL string
	Price    decimal.Decimal
	Stock    int
	Tracked  bool
}

// Create runs the whole order workflow in one transaction: resolve user
// and products (row-locked), re-verify stock, compute totals, persist the
// order with its items, decrement stock and append SALE movements, and
// update the user aggregates. Any failure rolls everything back.
func (r *PGRepo) Create(ctx context.Context, in CreateInput) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userExists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, in.UserID).Scan(&userExists); err != nil {
		return nil, err
	}
	if !userExists {
		return nil, ErrUserNotFound
	}

	// total quantity per product; lines may repeat a product
	required := map[string]int{}
	ids := make([]string, 0, len(in.Req.Items))
	for _, it := range in.Req.Items {
		if _, seen := required[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		required[it.ProductID] += it.Quantity
	}

	// lock products in a stable order
	rows, err := tx.Query(ctx, `
		SELECT id, name, sku, COALESCE(image_url,''), price::text, stock, track_inventory
		FROM products WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, err
	}
	products := map[string]lockedProduct{}
	for rows.Next() {
		var p lockedProduct
		var price string
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.ImageURL, &price, &p.Stock, &p.Tracked); err != nil {
			rows.Close()
			return nil, err
		}
		p.Price, _ = decimal.NewFromString(price)
		products[p.ID] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, ErrProductNotFound
	}

	// stock re-verified here, under the row locks
	for _, id := range ids {
		p := products[id]
		if p.Tracked && p.Stock < required[id] {
			return nil, &StockError{ProductName: p.Name, Available: p.Stock, Requested: required[id]}
		}
	}

	lines := make([]Line, 0, len(in.Req.Items))
	for _, it := range in.Req.Items {
		lines = append(lines, Line{Price: products[it.ProductID].Price, Quantity: it.Quantity})
	}
	totals := ComputeTotals(lines, in.Pricing)

	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return nil, err
	}

	o := &Order{
		ID:                uuid.NewString(),
		Number:            FormatNumber(count + 1),
		UserID:            in.UserID,
		CustomerName:      in.Req.CustomerName,
		CustomerEmail:     in.Req.CustomerEmail,
		CustomerPhone:     in.Req.CustomerPhone,
		ShippingAddress:   in.Req.ShippingAddress,
		ShippingCity:      in.Req.ShippingCity,
		ShippingCountry:   in.Req.ShippingCountry,
		PostalCode:        in.Req.PostalCode,
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		ShippingCost:      totals.ShippingCost,
		Discount:          totals.Discount,
		Total:             totals.Total,
		Status:            StatusPending,
		PaymentStatus:     PaymentPending,
		FulfillmentStatus: FulfillmentUnfulfilled,
		PaymentMethod:     in.Req.PaymentMethod,
		Notes:             in.Req.Notes,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, number, user_id, customer_name, customer_email, customer_phone,
		                    shipping_address, shipping_city, shipping_country, postal_code,
		                    subtotal, tax, shipping_cost, discount, total,
		                    status, payment_status, fulfillment_status, payment_method, notes,
		                    created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8,$9,NULLIF($10,''),
		        $11,$12,$13,$14,$15,$16,$17,$18,$19,NULLIF($20,''),NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.Number, o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.ShippingAddress, o.ShippingCity, o.ShippingCountry, o.PostalCode,
		o.Subtotal, o.Tax, o.ShippingCost, o.Discount, o.Total,
		o.Status, o.PaymentStatus, o.FulfillmentStatus, o.PaymentMethod, o.Notes,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, reqItem := range in.Req.Items {
		p := products[reqItem.ProductID]
		it := Item{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			SKU:         p.SKU,
			ImageURL:    p.ImageURL,
			Price:       p.Price,
			Quantity:    reqItem.Quantity,
			Subtotal:    LineSubtotal(Line{Price: p.Price, Quantity: reqItem.Quantity}),
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, sku, image_url, price, quantity, subtotal)
			VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8,$9)
		`, it.ID, it.OrderID, it.ProductID, it.ProductName, it.SKU, it.ImageURL, it.Price, it.Quantity, it.Subtotal); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}

	for _, id := range ids {
		p := products[id]
		if !p.Tracked {
			continue
		}
		qty := required[id]
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock - $2,
			    sales_count = sales_count + $2,
			    status = CASE WHEN stock - $2 = 0 THEN 'out_of_stock' ELSE status END,
			    updated_at = NOW()
			WHERE id = $1
		`, id, qty); err != nil {
			return nil, err
		}
		if err := inventory.AppendMovement(ctx, tx, &inventory.Movement{
			ID:        uuid.NewString(),
			ProductID: id,
			Delta:     -qty,
			Type:      inventory.MovementSale,
			Reference: o.ID,
			ActorID:   in.UserID,
		}); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users
		SET total_orders = total_orders + 1,
		    total_spent  = total_spent + $2,
		    updated_at   = NOW()
		WHERE id = $1
	`, in.UserID, o.Total); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	items, err := r.getItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *PGRepo) getItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, sku, COALESCE(image_url,''),
		       price::text, quantity, subtotal::text
		FROM order_items WHERE order_id=$1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var price, sub string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.SKU, &it.ImageURL,
			&price, &it.Quantity, &sub); err != nil {
			return nil, err
		}
		it.Price, _ = decimal.NewFromString(price)
		it.Subtotal, _ = decimal.NewFromString(sub)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+orderCols+` FROM orders WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Order, error) {
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
	rows, err := r.db.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, q.Status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// UpdateStatus applies a status change through the state machine inside a
// transaction, persisting the lifecycle timestamps it stamps.
func (r *PGRepo) UpdateStatus(ctx context.Context, id string, ch StatusChange) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, ErrNotFound
	}

	if err := ApplyStatusChange(o, ch, time.Now().UTC()); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, fulfillment_status = $4,
		    paid_at = $5, shipped_at = $6, delivered_at = $7, cancelled_at = $8,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, o.ID, o.Status, o.PaymentStatus, o.FulfillmentStatus,
		o.PaidAt, o.ShippedAt, o.DeliveredAt, o.CancelledAt).Scan(&o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel reverses an order in one transaction: restores stock and sales
// counters for tracked items, appends offsetting RETURN movements, and
// moves the order to CANCELLED. Only PENDING and CONFIRMED orders cancel.
func (r *PGRepo) Cancel(ctx context.Context, id string, actor Actor) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, ErrNotFound
	}
	if !actor.Admin && o.UserID != actor.ID {
		return nil, ErrForbidden
	}
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return nil, ErrNotCancellable
	}

	itemRows, err := tx.Query(ctx, `
		SELECT oi.product_id, oi.quantity, p.track_inventory
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.product_id
		FOR UPDATE OF p
	`, id)
	if err != nil {
		return nil, err
	}
	type returnLine struct {
		productID string
		qty       int
		tracked   bool
	}
	var lines []returnLine
	for itemRows.Next() {
		var l returnLine
		if err := itemRows.Scan(&l.productID, &l.qty, &l.tracked); err != nil {
			itemRows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	for _, l := range lines {
		if !l.tracked {
			continue
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock + $2,
			    sales_count = GREATEST(sales_count - $2, 0),
			    status = CASE WHEN status = 'out_of_stock' AND stock + $2 > 0 THEN 'active' ELSE status END,
			    updated_at = NOW()
			WHERE id = $1
		`, l.productID, l.qty); err != nil {
			return nil, err
		}
		if err := inventory.AppendMovement(ctx, tx, &inventory.Movement{
			ID:        uuid.NewString(),
			ProductID: l.productID,
			Delta:     l.qty,
			Type:      inventory.MovementReturn,
			Reason:    "Order cancelled",
			Reference: o.ID,
			ActorID:   actor.ID,
		}); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	applyOrderStatus(o, StatusCancelled, now)
	err = tx.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, cancelled_at = COALESCE(cancelled_at, $3), updated_at = NOW()
		WHERE id = $1
		RETURNING cancelled_at, updated_at
	`, o.ID, o.Status, now).Scan(&o.CancelledAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}
