package domain

import "time"

type OrderStatus string

const (
	StatusNotProcessed OrderStatus = "NotProcessed"
	StatusProcessing   OrderStatus = "Processing"
	StatusShipped      OrderStatus = "Shipped"
	StatusDelivered    OrderStatus = "Delivered"
	StatusCancelled    OrderStatus = "Cancelled"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusNotProcessed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a settled checkout. Lines are a snapshot taken at checkout time so
// the order survives later product edits or deletes. Only Status and UpdatedAt
// change after creation.
type Order struct {
	ID            string      `json:"id"`
	BuyerID       string      `json:"buyerId"`
	Lines         []OrderLine `json:"lines"`
	AmountCents   int64       `json:"amountCents"`
	Currency      string      `json:"currency"`
	TransactionID string      `json:"transactionId"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type OrderLine struct {
	ProductID      string `json:"productId"`
	SKU            string `json:"sku,omitempty"`
	Name           string `json:"name,omitempty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}
