package order

// CreateItem payload of one order line.
// swagger:model CreateItem
type CreateItem struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"2"`
}

// CreateRequest payload of order creation.
// swagger:model CreateOrderRequest
type CreateRequest struct {
	Items           []CreateItem `json:"items"`
	CustomerName    string       `json:"customer_name"    example:"Ana Torres"`
	CustomerEmail   string       `json:"customer_email"   example:"ana@example.com"`
	CustomerPhone   string       `json:"customer_phone"`
	ShippingAddress string       `json:"shipping_address" example:"Av. Reforma 123"`
	ShippingCity    string       `json:"shipping_city"    example:"CDMX"`
	ShippingCountry string       `json:"shipping_country" example:"MX"`
	PostalCode      string       `json:"postal_code"`
	PaymentMethod   string       `json:"payment_method"   example:"CASH_ON_DELIVERY"`
	Notes           string       `json:"notes"`
}

// UpdateStatusRequest payload of a status update. Omitted fields are left
// untouched; when only payment_status is present the order status is derived.
// swagger:model UpdateOrderStatusRequest
type UpdateStatusRequest struct {
	Status            string `json:"status"             example:"CONFIRMED"`
	PaymentStatus     string `json:"payment_status"     example:"PAID"`
	FulfillmentStatus string `json:"fulfillment_status" example:"FULFILLED"`
}
