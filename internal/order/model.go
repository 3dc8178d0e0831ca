package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offline payment methods settle without a gateway provider.
const (
	MethodCashOnDelivery = "CASH_ON_DELIVERY"
	MethodBankTransfer   = "BANK_TRANSFER"
)

type Order struct {
	ID     string `json:"id"`
	Number string `json:"number"` // e.g. ORD-000042
	UserID string `json:"user_id"`

	// Customer and shipping fields are snapshotted at creation.
	CustomerName    string `json:"customer_name"`
	CustomerEmail   string `json:"customer_email"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	ShippingAddress string `json:"shipping_address"`
	ShippingCity    string `json:"shipping_city"`
	ShippingCountry string `json:"shipping_country"`
	PostalCode      string `json:"postal_code,omitempty"`

	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`

	Status            Status            `json:"status"`
	PaymentStatus     PaymentStatus     `json:"payment_status"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	PaymentMethod     string            `json:"payment_method"`
	Notes             string            `json:"notes,omitempty"`

	PaidAt      *time.Time `json:"paid_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Items []Item `json:"items,omitempty"`
}

// Item snapshots the product at order time. Owned exclusively by one order.
type Item struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	ImageURL    string          `json:"image_url,omitempty"`
	Price       decimal.Decimal `json:"price"` // unit price at order time
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}
