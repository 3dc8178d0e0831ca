package user

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	// Aggregates maintained transactionally by the order workflow.
	TotalOrders int             `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RegisterRequest payload for account creation.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Name     string `json:"name"     example:"Ana Torres"`
	Email    string `json:"email"    example:"ana@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
}

// LoginRequest payload for authentication.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"    example:"ana@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
}

// UpdateProfileRequest payload of partial profile update.
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
