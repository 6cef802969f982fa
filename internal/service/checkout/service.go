package checkout

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/payment"
)

// State is a terminal state of one checkout attempt.
type State string

const (
	StateSettled         State = "Settled"
	StateRejected        State = "Rejected"
	StateDeclined        State = "Declined"
	StateOutOfStock      State = "OutOfStock"
	StateRecordingFailed State = "RecordingFailed"
)

// Result is what a checkout attempt resolves to. Exactly one of the terminal
// states is set; TransactionID is carried on every state reached after a
// successful settlement so a charge is never silently orphaned.
type Result struct {
	State          State
	OrderID        string
	TransactionID  string
	Reason         RejectReason
	ProductID      string
	GatewayMessage string
}

type catalogRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

type orderRepo interface {
	Create(ctx context.Context, order domain.Order) (*domain.Order, error)
}

// Service drives the settlement pipeline: validate, charge, reserve, record.
// Ordering is deliberate. Charging before reserving means no stock is held
// for payments that never complete; the price is that a reservation failure
// after settlement leaves a charge to reverse out-of-band, which is why those
// paths always log the transaction id.
type Service struct {
	products catalogRepo
	orders   orderRepo
	gateway  payment.Gateway
	nonces   payment.NonceGuard
	producer *events.Producer
	metrics  *metrics.Checkout

	chargeTimeout time.Duration
	logger        *log.Logger
}

func New(products catalogRepo, orders orderRepo, gateway payment.Gateway, nonces payment.NonceGuard, producer *events.Producer, m *metrics.Checkout, chargeTimeout time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if nonces == nil {
		nonces = payment.NewMemoryNonceGuard()
	}
	if chargeTimeout <= 0 {
		chargeTimeout = 15 * time.Second
	}
	return &Service{
		products:      products,
		orders:        orders,
		gateway:       gateway,
		nonces:        nonces,
		producer:      producer,
		metrics:       m,
		chargeTimeout: chargeTimeout,
		logger:        logger,
	}
}

// Input is one checkout attempt as submitted by an authenticated buyer.
type Input struct {
	Nonce string            `json:"nonce"`
	Cart  []domain.CartLine `json:"cart"`
}

// PlaceOrder runs the checkout pipeline. The returned error is reserved for
// infrastructure failures during validation, before any side effect; every
// outcome after that point is expressed as a Result state.
func (s *Service) PlaceOrder(ctx context.Context, buyerID string, in Input) (*Result, error) {
	start := time.Now()
	result, err := s.placeOrder(ctx, buyerID, in)
	if s.metrics != nil {
		s.metrics.Duration.Observe(time.Since(start).Seconds())
		if result != nil {
			s.metrics.Outcomes.WithLabelValues(string(result.State)).Inc()
		}
	}
	return result, err
}

func (s *Service) placeOrder(ctx context.Context, buyerID string, in Input) (*Result, error) {
	lines, err := validateCart(ctx, s.products, in.Cart)
	if err != nil {
		var rejected *CartRejectedError
		if errors.As(err, &rejected) {
			return &Result{State: StateRejected, Reason: rejected.Reason, ProductID: rejected.ProductID}, nil
		}
		return nil, err
	}

	nonce := strings.TrimSpace(in.Nonce)
	if nonce == "" {
		return &Result{State: StateRejected, Reason: ReasonInvalidNonce}, nil
	}
	first, err := s.nonces.FirstUse(ctx, nonce)
	if err != nil {
		// Without the guard a replay could double-charge; refuse instead.
		s.logger.Printf("checkout: nonce guard error buyer_id=%s error=%v", buyerID, err)
		return &Result{State: StateRejected, Reason: ReasonInvalidNonce}, nil
	}
	if !first {
		return &Result{State: StateRejected, Reason: ReasonInvalidNonce}, nil
	}

	total := chargeTotal(lines)

	chargeCtx, cancel := context.WithTimeout(ctx, s.chargeTimeout)
	settlement, err := s.gateway.Charge(chargeCtx, total, nonce)
	cancel()
	if err != nil {
		return nil, err
	}
	if !settlement.Success {
		s.logger.Printf("checkout: declined buyer_id=%s amount_cents=%d message=%q", buyerID, total, settlement.GatewayMessage)
		return &Result{State: StateDeclined, GatewayMessage: settlement.GatewayMessage}, nil
	}

	if err := s.reserve(ctx, lines); err != nil {
		var short *InsufficientStockError
		productID := ""
		if errors.As(err, &short) {
			productID = short.ProductID
		}
		// Money moved, stock did not. The transaction id in this log line is
		// what an operator needs to refund the charge.
		s.logger.Printf("checkout: RECONCILE settled without stock buyer_id=%s transaction_id=%s product_id=%s amount_cents=%d",
			buyerID, settlement.TransactionID, productID, total)
		return &Result{State: StateOutOfStock, ProductID: productID, TransactionID: settlement.TransactionID}, nil
	}

	order, err := s.orders.Create(ctx, buildOrder(buyerID, lines, total, settlement))
	if err != nil {
		s.logger.Printf("checkout: RECONCILE order persist failed buyer_id=%s transaction_id=%s amount_cents=%d error=%v",
			buyerID, settlement.TransactionID, total, err)
		return &Result{State: StateRecordingFailed, TransactionID: settlement.TransactionID}, nil
	}

	s.producer.OrderPlaced(ctx, *order)
	s.logger.Printf("checkout: settled buyer_id=%s order_id=%s transaction_id=%s amount_cents=%d", buyerID, order.ID, order.TransactionID, total)
	return &Result{State: StateSettled, OrderID: order.ID, TransactionID: order.TransactionID}, nil
}

func buildOrder(buyerID string, lines []domain.ValidatedLine, total int64, settlement domain.Settlement) domain.Order {
	currency := ""
	orderLines := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		currency = line.Currency
		orderLines = append(orderLines, domain.OrderLine{
			ProductID:      line.ProductID,
			SKU:            line.SKU,
			Name:           line.Name,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}
	return domain.Order{
		BuyerID:       buyerID,
		Lines:         orderLines,
		AmountCents:   total,
		Currency:      currency,
		TransactionID: settlement.TransactionID,
		Status:        domain.StatusNotProcessed,
	}
}
