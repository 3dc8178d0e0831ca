package inventory

import "time"

// Movement types.
const (
	MovementSale       = "SALE"
	MovementReturn     = "RETURN"
	MovementRestock    = "RESTOCK"
	MovementAdjustment = "ADJUSTMENT"
)

// Adjustment operations.
const (
	OpIncrease = "increase"
	OpDecrease = "decrease"
	OpSet      = "set"
)

// Movement is an append-only audit record of a stock quantity change.
// Rows are never updated or deleted.
type Movement struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Delta     int       `json:"delta"` // signed quantity change
	Type      string    `json:"type"`
	Reason    string    `json:"reason,omitempty"`
	Reference string    `json:"reference,omitempty"` // e.g. order id
	ActorID   string    `json:"actor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdjustStockRequest payload for stock adjustment.
// swagger:model AdjustStockRequest
type AdjustStockRequest struct {
	Operation string `json:"operation" example:"increase"` // increase | decrease | set
	Quantity  int    `json:"quantity"  example:"5"`
	Type      string `json:"type"      example:"RESTOCK"` // ADJUSTMENT | RESTOCK | RETURN
	Reason    string `json:"reason"    example:"supplier delivery"`
}
