package checkout

import (
	"context"
	"sort"

	"storefront/internal/domain"
)

// reserve decrements stock for every line or for none. Lines are processed in
// ascending product id order so two checkouts racing over overlapping carts
// contend in the same order. On the first failed decrement every decrement
// already applied in this attempt is incremented back, in reverse order.
func (s *Service) reserve(ctx context.Context, lines []domain.ValidatedLine) error {
	ordered := make([]domain.ValidatedLine, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	applied := make([]domain.ValidatedLine, 0, len(ordered))
	for _, line := range ordered {
		if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.compensate(ctx, applied, line.ProductID)
			return &InsufficientStockError{ProductID: line.ProductID}
		}
		applied = append(applied, line)
	}
	return nil
}

func (s *Service) compensate(ctx context.Context, applied []domain.ValidatedLine, failedID string) {
	for i := len(applied) - 1; i >= 0; i-- {
		line := applied[i]
		if err := s.products.IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			// Stock is now short by line.Quantity with no order to show for
			// it. Operators fix this from the log line.
			s.logger.Printf("checkout: RECONCILE stock compensation failed product_id=%s qty=%d failed_line=%s error=%v",
				line.ProductID, line.Quantity, failedID, err)
		}
	}
}
