package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcampos87/comercio-api/internal/order"
)

// Payment is one payment attempt against an order. An order may carry
// several attempts; at most one reaches PAID under normal flow.
type Payment struct {
	ID              string              `json:"id"`
	OrderID         string              `json:"order_id"`
	Amount          decimal.Decimal     `json:"amount"`
	Method          string              `json:"method"`
	Status          order.PaymentStatus `json:"status"`
	TransactionID   string              `json:"transaction_id,omitempty"`
	GatewayResponse string              `json:"gateway_response,omitempty"`
	RedirectURL     string              `json:"redirect_url,omitempty"`
	ProcessedAt     *time.Time          `json:"processed_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ProcessRequest payload of a synchronous payment attempt.
// swagger:model ProcessPaymentRequest
type ProcessRequest struct {
	OrderID string `json:"order_id" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Method  string `json:"method"   example:"CASH_ON_DELIVERY"`
}

// InitiateRequest payload of a redirect-flow initiation.
// swagger:model InitiatePaymentRequest
type InitiateRequest struct {
	OrderID   string `json:"order_id"`
	Method    string `json:"method"     example:"MOCK"`
	ReturnURL string `json:"return_url" example:"https://shop.example/checkout/return"`
	CancelURL string `json:"cancel_url" example:"https://shop.example/checkout/cancel"`
}

// WebhookRequest payload of a gateway callback.
// swagger:model PaymentWebhookRequest
type WebhookRequest struct {
	TransactionID string `json:"transaction_id"`
}
