package checkout

import "fmt"

// RejectReason enumerates why a cart was turned away before any money moved.
type RejectReason string

const (
	ReasonEmptyCart         RejectReason = "EmptyCart"
	ReasonUnknownProduct    RejectReason = "UnknownProduct"
	ReasonPriceMismatch     RejectReason = "PriceMismatch"
	ReasonInvalidQuantity   RejectReason = "InvalidQuantity"
	ReasonInsufficientStock RejectReason = "InsufficientStockPrecheck"
	ReasonCurrencyMismatch  RejectReason = "CurrencyMismatch"
	ReasonInvalidNonce      RejectReason = "InvalidNonce"
)

// CartRejectedError carries the first validation rule the cart broke.
// Validation is all-or-nothing, so one bad line rejects the whole cart.
type CartRejectedError struct {
	Reason    RejectReason
	ProductID string
}

func (e *CartRejectedError) Error() string {
	if e.ProductID == "" {
		return fmt.Sprintf("cart rejected: %s", e.Reason)
	}
	return fmt.Sprintf("cart rejected: %s (product %s)", e.Reason, e.ProductID)
}

// InsufficientStockError names the first line that could not be reserved.
// All decrements applied before it have been compensated.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}
