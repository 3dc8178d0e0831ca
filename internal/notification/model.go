package notification

import "time"

// Notification types.
const (
	TypeOrderCreated  = "ORDER_CREATED"
	TypeOrderStatus   = "ORDER_STATUS"
	TypePaymentResult = "PAYMENT_RESULT"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
