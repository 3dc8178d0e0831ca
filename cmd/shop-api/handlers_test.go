package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/httpx"
	"github.com/mcampos87/comercio-api/internal/inventory"
	"github.com/mcampos87/comercio-api/internal/notification"
	"github.com/mcampos87/comercio-api/internal/order"
	"github.com/mcampos87/comercio-api/internal/payment"
	"github.com/mcampos87/comercio-api/internal/settings"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

//
// ---------- STUBS ----------
//

// asUser injects the auth context the way RequireAuth would.
func asUser(id string, admin bool) gin.HandlerFunc {
	role := "customer"
	if admin {
		role = "admin"
	}
	return func(c *gin.Context) {
		c.Set(httpx.CtxUserID, id)
		c.Set(httpx.CtxRole, role)
		c.Next()
	}
}

type memProduct struct {
	name    string
	price   decimal.Decimal
	stock   int
	tracked bool
}

// memOrders implements order.Repository in memory, mirroring the
// transactional workflow: stock check, totals, decrement, restore.
type memOrders struct {
	products map[string]*memProduct
	orders   map[string]*order.Order
	seq      int64
}

func newMemOrders() *memOrders {
	return &memOrders{products: map[string]*memProduct{}, orders: map[string]*order.Order{}}
}

func (m *memOrders) addProduct(price string, stock int) string {
	id := uuid.NewString()
	d, _ := decimal.NewFromString(price)
	m.products[id] = &memProduct{name: "Prod-" + id[:8], price: d, stock: stock, tracked: true}
	return id
}

func (m *memOrders) Create(ctx context.Context, in order.CreateInput) (*order.Order, error) {
	required := map[string]int{}
	for _, it := range in.Req.Items {
		required[it.ProductID] += it.Quantity
	}
	var lines []order.Line
	for _, it := range in.Req.Items {
		p, ok := m.products[it.ProductID]
		if !ok {
			return nil, order.ErrProductNotFound
		}
		if p.tracked && p.stock < required[it.ProductID] {
			return nil, &order.StockError{ProductName: p.name, Available: p.stock, Requested: required[it.ProductID]}
		}
		lines = append(lines, order.Line{Price: p.price, Quantity: it.Quantity})
	}
	totals := order.ComputeTotals(lines, in.Pricing)

	m.seq++
	o := &order.Order{
		ID:                uuid.NewString(),
		Number:            order.FormatNumber(m.seq),
		UserID:            in.UserID,
		CustomerName:      in.Req.CustomerName,
		CustomerEmail:     in.Req.CustomerEmail,
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		ShippingCost:      totals.ShippingCost,
		Discount:          totals.Discount,
		Total:             totals.Total,
		Status:            order.StatusPending,
		PaymentStatus:     order.PaymentPending,
		FulfillmentStatus: order.FulfillmentUnfulfilled,
		PaymentMethod:     in.Req.PaymentMethod,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	for _, it := range in.Req.Items {
		p := m.products[it.ProductID]
		o.Items = append(o.Items, order.Item{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Price:     p.price,
			Quantity:  it.Quantity,
			Subtotal:  order.LineSubtotal(order.Line{Price: p.price, Quantity: it.Quantity}),
		})
	}
	for id, qty := range required {
		if p := m.products[id]; p.tracked {
			p.stock -= qty
		}
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *memOrders) GetByID(ctx context.Context, id string) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) ListByUser(ctx context.Context, userID string, limit, offset int) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) List(ctx context.Context, q order.Query) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.orders {
		if q.Status == "" || string(o.Status) == q.Status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) UpdateStatus(ctx context.Context, id string, ch order.StatusChange) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if err := order.ApplyStatusChange(o, ch, time.Now().UTC()); err != nil {
		return nil, err
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) Cancel(ctx context.Context, id string, actor order.Actor) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if !actor.Admin && o.UserID != actor.ID {
		return nil, order.ErrForbidden
	}
	if o.Status != order.StatusPending && o.Status != order.StatusConfirmed {
		return nil, order.ErrNotCancellable
	}
	for _, it := range o.Items {
		if p, ok := m.products[it.ProductID]; ok && p.tracked {
			p.stock += it.Quantity
		}
	}
	if err := order.ApplyStatusChange(o, order.StatusChange{Status: ptrStatus(order.StatusCancelled)}, time.Now().UTC()); err != nil {
		return nil, err
	}
	cp := *o
	return &cp, nil
}

func ptrStatus(s order.Status) *order.Status { return &s }

// memSettings serves the built-in pricing defaults plus overrides.
type memSettings struct {
	values map[string]string
}

func newMemSettings() *memSettings { return &memSettings{values: map[string]string{}} }

func (m *memSettings) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	switch key {
	case settings.KeyTaxRate:
		return "0.15", nil
	case settings.KeyFreeShippingThreshold:
		return "500", nil
	case settings.KeyShippingCost:
		return "25", nil
	}
	return "", settings.ErrNotFound
}

func (m *memSettings) GetDecimal(ctx context.Context, key string) (decimal.Decimal, error) {
	raw, err := m.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(raw)
}

func (m *memSettings) Set(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memSettings) List(ctx context.Context) ([]settings.Setting, error) {
	out := []settings.Setting{}
	for k, v := range m.values {
		out = append(out, settings.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (m *memSettings) LoadPricing(ctx context.Context) (settings.Pricing, error) {
	var p settings.Pricing
	var err error
	if p.TaxRate, err = m.GetDecimal(ctx, settings.KeyTaxRate); err != nil {
		return p, err
	}
	if p.FreeShippingThreshold, err = m.GetDecimal(ctx, settings.KeyFreeShippingThreshold); err != nil {
		return p, err
	}
	if p.ShippingCost, err = m.GetDecimal(ctx, settings.KeyShippingCost); err != nil {
		return p, err
	}
	return p, nil
}

type memNotifications struct {
	rows []notification.Notification
}

func (m *memNotifications) Create(ctx context.Context, n *notification.Notification) error {
	n.CreatedAt = time.Now().UTC()
	m.rows = append(m.rows, *n)
	return nil
}

func (m *memNotifications) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]notification.Notification, error) {
	var out []notification.Notification
	for _, n := range m.rows {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotifications) MarkRead(ctx context.Context, id, userID string) error {
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == userID {
			m.rows[i].Read = true
			return nil
		}
	}
	return notification.ErrNotFound
}

// memInventory tracks stock per product with a movement log.
type memInventory struct {
	stock     map[string]int
	movements []inventory.Movement
}

func newMemInventory() *memInventory { return &memInventory{stock: map[string]int{}} }

func (m *memInventory) Adjust(ctx context.Context, adj inventory.Adjustment) (*inventory.Movement, int, error) {
	cur, ok := m.stock[adj.ProductID]
	if !ok {
		return nil, 0, inventory.ErrNotFound
	}
	var next int
	switch adj.Operation {
	case inventory.OpIncrease:
		next = cur + adj.Quantity
	case inventory.OpDecrease:
		next = cur - adj.Quantity
		if next < 0 {
			next = 0
		}
	case inventory.OpSet:
		next = adj.Quantity
	default:
		return nil, 0, inventory.ErrBadOp
	}
	m.stock[adj.ProductID] = next
	mv := inventory.Movement{
		ID:        uuid.NewString(),
		ProductID: adj.ProductID,
		Delta:     next - cur,
		Type:      adj.Type,
		Reason:    adj.Reason,
		ActorID:   adj.ActorID,
		CreatedAt: time.Now().UTC(),
	}
	m.movements = append(m.movements, mv)
	return &mv, next, nil
}

func (m *memInventory) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]inventory.Movement, error) {
	var out []inventory.Movement
	for _, mv := range m.movements {
		if mv.ProductID == productID {
			out = append(out, mv)
		}
	}
	return out, nil
}

// memPayments implements payment.Repository in memory.
type memPayments struct {
	rows map[string]*payment.Payment
}

func newMemPayments() *memPayments { return &memPayments{rows: map[string]*payment.Payment{}} }

func (m *memPayments) Create(ctx context.Context, p *payment.Payment) error {
	p.CreatedAt = time.Now().UTC()
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPayments) GetByTransactionID(ctx context.Context, txnID string) (*payment.Payment, error) {
	for _, p := range m.rows {
		if p.TransactionID == txnID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, payment.ErrNotFound
}

func (m *memPayments) UpdateStatus(ctx context.Context, id string, status order.PaymentStatus, gatewayResponse string, processedAt *time.Time) error {
	p, ok := m.rows[id]
	if !ok {
		return payment.ErrNotFound
	}
	p.Status = status
	if gatewayResponse != "" {
		p.GatewayResponse = gatewayResponse
	}
	if processedAt != nil {
		p.ProcessedAt = processedAt
	}
	return nil
}

func (m *memPayments) ListByOrder(ctx context.Context, orderID string) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range m.rows {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func orderBody(productID string, qty int) string {
	return fmt.Sprintf(`{
		"items":[{"product_id":%q,"quantity":%d}],
		"customer_name":"Ana Torres",
		"customer_email":"ana@example.com",
		"shipping_address":"Av. Reforma 123",
		"shipping_city":"CDMX",
		"shipping_country":"MX",
		"payment_method":"CASH_ON_DELIVERY"
	}`, productID, qty)
}

func doJSON(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, url, rd)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestCreateOrder_TotalsAndStock(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	prodID := repo.addProduct("100.00", 5)
	uid := uuid.NewString()
	notes := &memNotifications{}

	r := gin.New()
	r.POST("/orders", asUser(uid, false), createOrderHandler(repo, newMemSettings(), notification.NewNotifier(notes)))

	w := doJSON(r, http.MethodPost, "/orders", orderBody(prodID, 2))
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool        `json:"success"`
		Data    order.Order `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	// subtotal 200 + tax 30 + shipping 25 = 255
	if got := resp.Data.Total.StringFixed(2); got != "255.00" {
		t.Fatalf("total=%s, expected 255.00", got)
	}
	if resp.Data.Status != order.StatusPending || resp.Data.PaymentStatus != order.PaymentPending {
		t.Fatalf("new order statuses = %s/%s", resp.Data.Status, resp.Data.PaymentStatus)
	}
	if repo.products[prodID].stock != 3 {
		t.Fatalf("stock=%d, expected 3", repo.products[prodID].stock)
	}
	if len(notes.rows) != 1 || notes.rows[0].Type != notification.TypeOrderCreated {
		t.Fatalf("expected one order-created notification, got %+v", notes.rows)
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	prodID := repo.addProduct("10.00", 1)

	r := gin.New()
	r.POST("/orders", asUser(uuid.NewString(), false), createOrderHandler(repo, newMemSettings(), nil))

	w := doJSON(r, http.MethodPost, "/orders", orderBody(prodID, 2))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	if repo.products[prodID].stock != 1 {
		t.Fatalf("stock changed on failed order: %d", repo.products[prodID].stock)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.POST("/orders", asUser(uuid.NewString(), false), createOrderHandler(newMemOrders(), newMemSettings(), nil))

	w := doJSON(r, http.MethodPost, "/orders", `{"items":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool              `json:"success"`
		Errors  map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp.Errors["items"] == "" || resp.Errors["customer_name"] == "" {
		t.Fatalf("missing validation errors: %+v", resp.Errors)
	}
}

func TestGetOrder_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	prodID := repo.addProduct("10.00", 5)
	owner := uuid.NewString()
	o, err := repo.Create(context.Background(), order.CreateInput{
		UserID:  owner,
		Req:     order.CreateRequest{Items: []order.CreateItem{{ProductID: prodID, Quantity: 1}}, PaymentMethod: "MOCK"},
		Pricing: settings.DefaultPricing(),
	})
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.GET("/orders/:id", asUser(uuid.NewString(), false), getOrderHandler(repo))
	if w := doJSON(r, http.MethodGet, "/orders/"+o.ID, ""); w.Code != http.StatusForbidden {
		t.Fatalf("stranger got status=%d (expected 403)", w.Code)
	}

	r2 := gin.New()
	r2.GET("/orders/:id", asUser(uuid.NewString(), true), getOrderHandler(repo))
	if w := doJSON(r2, http.MethodGet, "/orders/"+o.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("admin got status=%d (expected 200)", w.Code)
	}
}

func TestUpdateOrderStatus_DerivesFromPayment(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	prodID := repo.addProduct("10.00", 5)
	o, err := repo.Create(context.Background(), order.CreateInput{
		UserID:  uuid.NewString(),
		Req:     order.CreateRequest{Items: []order.CreateItem{{ProductID: prodID, Quantity: 1}}, PaymentMethod: "MOCK"},
		Pricing: settings.DefaultPricing(),
	})
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.PATCH("/orders/:id/status", asUser(uuid.NewString(), true), updateOrderStatusHandler(repo, nil))

	w := doJSON(r, http.MethodPatch, "/orders/"+o.ID+"/status", `{"payment_status":"PAID"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := repo.orders[o.ID]
	if got.PaymentStatus != order.PaymentPaid || got.Status != order.StatusConfirmed {
		t.Fatalf("statuses=%s/%s, expected CONFIRMED/PAID", got.Status, got.PaymentStatus)
	}
	if got.PaidAt == nil {
		t.Fatal("paid_at not stamped")
	}
}

func TestUpdateOrderStatus_InvalidTransition(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	prodID := repo.addProduct("10.00", 5)
	o, err := repo.Create(context.Background(), order.CreateInput{
		UserID:  uuid.NewString(),
		Req:     order.CreateRequest{Items: []order.CreateItem{{ProductID: prodID, Quantity: 1}}, PaymentMethod: "MOCK"},
		Pricing: settings.DefaultPricing(),
	})
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.PATCH("/orders/:id/status", asUser(uuid.NewString(), true), updateOrderStatusHandler(repo, nil))

	// PENDING -> SHIPPED skips CONFIRMED and PROCESSING
	if w := doJSON(r, http.MethodPatch, "/orders/"+o.ID+"/status", `{"status":"SHIPPED"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodPatch, "/orders/"+o.ID+"/status", `{"status":"wtf"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status gave %d (expected 400)", w.Code)
	}
	if w := doJSON(r, http.MethodPatch, "/orders/"+o.ID+"/status", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("empty change gave %d (expected 400)", w.Code)
	}
}

func TestCancelOrder_RestoresStockOnce(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	prodID := repo.addProduct("10.00", 5)
	owner := uuid.NewString()
	o, err := repo.Create(context.Background(), order.CreateInput{
		UserID:  owner,
		Req:     order.CreateRequest{Items: []order.CreateItem{{ProductID: prodID, Quantity: 2}}, PaymentMethod: "MOCK"},
		Pricing: settings.DefaultPricing(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if repo.products[prodID].stock != 3 {
		t.Fatalf("pre-cancel stock=%d", repo.products[prodID].stock)
	}

	r := gin.New()
	r.POST("/orders/:id/cancel", asUser(owner, false), cancelOrderHandler(repo, nil))

	if w := doJSON(r, http.MethodPost, "/orders/"+o.ID+"/cancel", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.products[prodID].stock != 5 {
		t.Fatalf("stock=%d after cancel, expected 5", repo.products[prodID].stock)
	}
	if repo.orders[o.ID].Status != order.StatusCancelled {
		t.Fatalf("status=%s, expected CANCELLED", repo.orders[o.ID].Status)
	}

	// a cancelled order cannot cancel again, stock must not double-restore
	if w := doJSON(r, http.MethodPost, "/orders/"+o.ID+"/cancel", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("second cancel gave %d (expected 400)", w.Code)
	}
	if repo.products[prodID].stock != 5 {
		t.Fatalf("stock=%d after second cancel", repo.products[prodID].stock)
	}
}

func TestProcessPayment_OfflineMethod(t *testing.T) {
	t.Parallel()

	repo := newMemOrders()
	prodID := repo.addProduct("10.00", 5)
	owner := uuid.NewString()
	o, err := repo.Create(context.Background(), order.CreateInput{
		UserID:  owner,
		Req:     order.CreateRequest{Items: []order.CreateItem{{ProductID: prodID, Quantity: 1}}, PaymentMethod: order.MethodCashOnDelivery},
		Pricing: settings.DefaultPricing(),
	})
	if err != nil {
		t.Fatal(err)
	}

	svc := payment.NewService(newMemPayments(), repo, payment.NewRegistry())
	r := gin.New()
	r.POST("/payments/process", asUser(owner, false), processPaymentHandler(svc))

	w := doJSON(r, http.MethodPost, "/payments/process", fmt.Sprintf(`{"order_id":%q}`, o.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := repo.orders[o.ID]
	if got.PaymentStatus != order.PaymentPaid || got.Status != order.StatusConfirmed {
		t.Fatalf("statuses=%s/%s, expected CONFIRMED/PAID", got.Status, got.PaymentStatus)
	}

	// paying again must be rejected
	if w := doJSON(r, http.MethodPost, "/payments/process", fmt.Sprintf(`{"order_id":%q}`, o.ID)); w.Code != http.StatusBadRequest {
		t.Fatalf("second payment gave %d (expected 400)", w.Code)
	}
}

func TestPaymentWebhook_RequiresTransactionID(t *testing.T) {
	t.Parallel()

	svc := payment.NewService(newMemPayments(), newMemOrders(), payment.NewRegistry())
	r := gin.New()
	r.POST("/payments/webhook/:provider", paymentWebhookHandler(svc))

	if w := doJSON(r, http.MethodPost, "/payments/webhook/MOCK", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d (expected 400)", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/payments/webhook/MOCK", `{"transaction_id":"nope"}`); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d (expected 404 for unknown txn)", w.Code)
	}
}

func TestAdjustStock(t *testing.T) {
	t.Parallel()

	inv := newMemInventory()
	prodID := uuid.NewString()
	inv.stock[prodID] = 3

	r := gin.New()
	r.PATCH("/inventory/:productId/stock", asUser(uuid.NewString(), true), adjustStockHandler(inv))

	w := doJSON(r, http.MethodPatch, "/inventory/"+prodID+"/stock",
		`{"operation":"increase","quantity":5,"type":"RESTOCK","reason":"supplier delivery"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if inv.stock[prodID] != 8 {
		t.Fatalf("stock=%d, expected 8", inv.stock[prodID])
	}
	if len(inv.movements) != 1 || inv.movements[0].Delta != 5 {
		t.Fatalf("movement not recorded: %+v", inv.movements)
	}

	if w := doJSON(r, http.MethodPatch, "/inventory/"+prodID+"/stock", `{"operation":"halve","quantity":2}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad operation gave %d (expected 400)", w.Code)
	}
	if w := doJSON(r, http.MethodPatch, "/inventory/"+prodID+"/stock", `{"operation":"increase","quantity":0}`); w.Code != http.StatusBadRequest {
		t.Fatalf("zero quantity gave %d (expected 400)", w.Code)
	}
}

func TestPutSetting_ValidatesPricingKeys(t *testing.T) {
	t.Parallel()

	st := newMemSettings()
	r := gin.New()
	r.PUT("/settings/:key", asUser(uuid.NewString(), true), putSettingHandler(st))

	if w := doJSON(r, http.MethodPut, "/settings/tax_rate", `{"value":"abc"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("non-decimal tax rate gave %d (expected 400)", w.Code)
	}
	if w := doJSON(r, http.MethodPut, "/settings/tax_rate", `{"value":"-1"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("negative tax rate gave %d (expected 400)", w.Code)
	}
	if w := doJSON(r, http.MethodPut, "/settings/tax_rate", `{"value":"0.19"}`); w.Code != http.StatusOK {
		t.Fatalf("valid tax rate gave %d (expected 200)", w.Code)
	}
	if st.values["tax_rate"] != "0.19" {
		t.Fatalf("value not stored: %q", st.values["tax_rate"])
	}
	// free-form keys are stored as-is
	if w := doJSON(r, http.MethodPut, "/settings/store_name", `{"value":"Comercio"}`); w.Code != http.StatusOK {
		t.Fatalf("free-form key gave %d (expected 200)", w.Code)
	}
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	t.Parallel()

	uid := uuid.NewString()
	notes := &memNotifications{}
	n := &notification.Notification{ID: uuid.NewString(), UserID: uid, Type: notification.TypeOrderStatus, Title: "t", Message: "m"}
	if err := notes.Create(context.Background(), n); err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.GET("/notifications", asUser(uid, false), listNotificationsHandler(notes))
	r.PATCH("/notifications/:id/read", asUser(uid, false), markNotificationReadHandler(notes))

	w := doJSON(r, http.MethodGet, "/notifications?unread=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Items []notification.Notification `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(resp.Data.Items) != 1 {
		t.Fatalf("items=%d, expected 1", len(resp.Data.Items))
	}

	if w := doJSON(r, http.MethodPatch, "/notifications/"+n.ID+"/read", ""); w.Code != http.StatusOK {
		t.Fatalf("mark read gave %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/notifications?unread=true", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	} else {
		resp.Data.Items = nil
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if len(resp.Data.Items) != 0 {
			t.Fatalf("unread after mark-read: %+v", resp.Data.Items)
		}
	}

	// another user's notification cannot be marked read
	r2 := gin.New()
	r2.PATCH("/notifications/:id/read", asUser(uuid.NewString(), false), markNotificationReadHandler(notes))
	if w := doJSON(r2, http.MethodPatch, "/notifications/"+n.ID+"/read", ""); w.Code != http.StatusNotFound {
		t.Fatalf("foreign mark-read gave %d (expected 404)", w.Code)
	}
}
