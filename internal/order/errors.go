package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrNotCancellable  = errors.New("order cannot be cancelled in its current status")
	ErrForbidden       = errors.New("order belongs to another user")
)

// StockError reports a line whose requested quantity exceeds the
// available stock.
type StockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}
