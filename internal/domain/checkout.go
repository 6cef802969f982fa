package domain

// CartLine is a client-submitted cart entry. The claimed price is untrusted
// input and is only ever compared against the catalog, never charged.
type CartLine struct {
	ProductID             string `json:"productId"`
	ClaimedUnitPriceCents int64  `json:"priceCents"`
	Quantity              int    `json:"quantity"`
}

// ValidatedLine is a cart line after server-side verification. Its unit price
// comes from the catalog, so downstream code cannot reach the client's value.
type ValidatedLine struct {
	ProductID      string
	SKU            string
	Name           string
	UnitPriceCents int64
	Currency       string
	Quantity       int
}

// Settlement is the payment gateway's result for one charge attempt.
type Settlement struct {
	Success        bool   `json:"success"`
	TransactionID  string `json:"transactionId,omitempty"`
	GatewayMessage string `json:"gatewayMessage,omitempty"`
	AmountCents    int64  `json:"amountCents"`
}
