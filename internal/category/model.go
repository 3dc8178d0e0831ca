package category

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCategoryRequest payload of creation.
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	Name        string `json:"name"        example:"Keyboards"`
	Slug        string `json:"slug"        example:"keyboards"`
	Description string `json:"description" example:"Mechanical and membrane keyboards"`
}
