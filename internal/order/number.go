package order

import "fmt"

// FormatNumber renders the sequential order number: ORD- plus the
// zero-padded sequence value.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("ORD-%06d", seq)
}
