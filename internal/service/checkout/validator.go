package checkout

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// validateCart reconciles the client-submitted cart against the catalog and
// returns server-trusted lines. The claimed price must match the catalog
// exactly; the client cannot negotiate. The stock check here is only a
// pre-check. The authoritative guard is the conditional decrement during
// reservation, since stock can move between the two.
func validateCart(ctx context.Context, catalog catalogRepo, cart []domain.CartLine) ([]domain.ValidatedLine, error) {
	if len(cart) == 0 {
		return nil, &CartRejectedError{Reason: ReasonEmptyCart}
	}

	currency := ""
	validated := make([]domain.ValidatedLine, 0, len(cart))
	for _, line := range cart {
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return nil, &CartRejectedError{Reason: ReasonInvalidQuantity, ProductID: line.ProductID}
		}

		product, err := catalog.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &CartRejectedError{Reason: ReasonUnknownProduct, ProductID: line.ProductID}
			}
			return nil, err
		}
		if line.ClaimedUnitPriceCents != product.PriceCents {
			return nil, &CartRejectedError{Reason: ReasonPriceMismatch, ProductID: line.ProductID}
		}
		if qty > product.StockQuantity {
			return nil, &CartRejectedError{Reason: ReasonInsufficientStock, ProductID: line.ProductID}
		}
		if currency == "" {
			currency = product.Currency
		} else if product.Currency != currency {
			return nil, &CartRejectedError{Reason: ReasonCurrencyMismatch, ProductID: line.ProductID}
		}

		validated = append(validated, domain.ValidatedLine{
			ProductID:      product.ID,
			SKU:            product.SKU,
			Name:           product.Name,
			UnitPriceCents: product.PriceCents,
			Currency:       product.Currency,
			Quantity:       qty,
		})
	}
	return validated, nil
}

// chargeTotal sums the validated lines in minor units. Pure; it never sees
// the client's claimed prices.
func chargeTotal(lines []domain.ValidatedLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.UnitPriceCents * int64(line.Quantity)
	}
	return total
}
