package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type stubCatalog struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func newStubCatalog(products ...domain.Product) *stubCatalog {
	c := &stubCatalog{products: make(map[string]*domain.Product)}
	for _, p := range products {
		clone := p
		c.products[p.ID] = &clone
	}
	return c
}

func (c *stubCatalog) GetByID(_ context.Context, id string) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (c *stubCatalog) DecrementStock(_ context.Context, id string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.StockQuantity < qty {
		return productrepo.ErrInsufficientStock
	}
	p.StockQuantity -= qty
	return nil
}

func (c *stubCatalog) IncrementStock(_ context.Context, id string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.StockQuantity += qty
	return nil
}

func (c *stubCatalog) stock(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products[id].StockQuantity
}

type spyGateway struct {
	mu       sync.Mutex
	calls    int
	result   domain.Settlement
	err      error
	onCharge func()
}

func (g *spyGateway) Charge(_ context.Context, amountCents int64, _ string) (domain.Settlement, error) {
	g.mu.Lock()
	g.calls++
	hook := g.onCharge
	g.mu.Unlock()
	if hook != nil {
		hook()
	}
	if g.err != nil {
		return domain.Settlement{}, g.err
	}
	result := g.result
	result.AmountCents = amountCents
	return result, nil
}

func (g *spyGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type stubOrders struct {
	mu      sync.Mutex
	created []domain.Order
	err     error
}

func (o *stubOrders) Create(_ context.Context, order domain.Order) (*domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return nil, o.err
	}
	out := order
	out.ID = fmt.Sprintf("o-%d", len(o.created)+1)
	o.created = append(o.created, out)
	return &out, nil
}

func (o *stubOrders) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.created)
}

func newService(catalog *stubCatalog, orders *stubOrders, gateway *spyGateway) *Service {
	return New(catalog, orders, gateway, nil, nil, nil, 0, nil)
}

func TestPlaceOrderSettled(t *testing.T) {
	catalog := newStubCatalog(domain.Product{ID: "p1", SKU: "SKU1", Name: "P1", PriceCents: 5000, Currency: "USD", StockQuantity: 3})
	orders := &stubOrders{}
	gateway := &spyGateway{result: domain.Settlement{Success: true, TransactionID: "txn-1"}}
	svc := newService(catalog, orders, gateway)

	result, err := svc.PlaceOrder(context.Background(), "buyer", Input{
		Nonce: "tok-ok",
		Cart:  []domain.CartLine{{ProductID: "p1", ClaimedUnitPriceCents: 5000, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateSettled || result.OrderID != "o-1" || result.TransactionID != "txn-1" {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := catalog.stock("p1"); got != 2 {
		t.Fatalf("expected stock 2, got %d", got)
	}
	if orders.count() != 1 {
		t.Fatalf("expected one order, got %d", orders.count())
	}
	order := orders.created[0]
	if order.Status != domain.StatusNotProcessed || order.AmountCents != 5000 || order.Currency != "USD" {
		t.Fatalf("unexpected order %+v", order)
	}
	if len(order.Lines) != 1 || order.Lines[0].UnitPriceCents != 5000 {
		t.Fatalf("unexpected lines %+v", order.Lines)
	}
}

func TestPlaceOrderQuantityDefaultsToOne(t *testing.T) {
	catalog := newStubCatalog(domain.Product{ID: "p1", PriceCents: 100, Currency: "USD", StockQuantity: 2})
	orders := &stubOrders{}
	gateway := &spyGateway{result: domain.Settlement{Success: true, TransactionID: "txn-1"}}
	svc := newService(catalog, orders, gateway)

	result, err := svc.PlaceOrder(context.Background(), "buyer", Input{
		Nonce: "tok",
		Cart:  []domain.CartLine{{ProductID: "p1", ClaimedUnitPriceCents: 100}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateSettled {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := catalog.stock("p1"); got != 1 {
		t.Fatalf("expected qty to default to 1, stock is %d", got)
	}
	if orders.created[0].AmountCents != 100 {
		t.Fatalf("expected amount 100, got %d", orders.created[0].AmountCents)
	}
}

func TestPlaceOrderPriceMismatch(t *testing.T) {
	catalog := newStubCatalog(domain.Product{ID: "p1", PriceCents: 6000, Currency: "USD", StockQuantity: 3})
	orders := &stubOrders{}
	gateway := &spyGateway{result: domain.Settlement{Success: true, TransactionID: "txn-1"}}
	svc := newService(catalog, orders, gateway)

	result, err := svc.PlaceOrder(context.Background(), "buyer", Input{
		Nonce: "tok",
		Cart:  []domain.CartLine{{ProductID: "p1", ClaimedUnitPriceCents: 5000, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateRejected || result.Reason != ReasonPriceMismatch || result.ProductID != "p1" {
		t.Fatalf("unexpected result %+v", result)
	}
	if gateway.callCount() != 0 {
		t.Fatalf("gateway must not be called on rejection, calls=%d", gateway.callCount())
	}
	if got := catalog.stock("p1"); got != 3 {
		t.Fatalf("stock must be unchanged, got %d", got)
	}
	if orders.count() != 0 {
		t.Fatalf("no order may exist, got %d", orders.count())
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	svc := newService(newStubCatalog(), &stubOrders{}, &spyGateway{})

	result, err := svc.PlaceOrder(context.Background(), "buyer", Input{
		Nonce: "tok",
		Cart:  []domain.CartLine{{ProductID: "ghost", ClaimedUnitPriceCents: 100, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateRejected || result.Reason != ReasonUnknownProduct {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc := newService(newStubCatalog(), &stubOrders{}, &spyGateway{})

	result, err := svc.PlaceOrder(context.Background(), "buyer", Input{Nonce: "tok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateRejected || result.Reason != ReasonEmptyCart {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestPlaceOrderStockPrecheck(t *testing.T) {
	catalog := newStubCatalog(domain.Product{ID: "p1", PriceCents: 100, Currency: "USD", StockQuantity: 3})
	gateway := &spyGateway{}
	svc := newService(catalog, &stubOrders{}, gateway)

	result, err := svc.PlaceOrder(context.Background(), "buyer", Input{
		Nonce: "tok",
		Cart:  []domain.CartLine{{ProductID: "p1", ClaimedUnitPriceCents: 100, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateRejected || result.Reason != ReasonInsufficientStock {
		t.Fatalf("unexpected result %+v", result)
	}
	if gateway.callCount() != 0 {
		t.Fatalf("gateway must not be called, calls=%d", gateway.callCount())
	}
}

func TestPlaceOrderDeclined(t *testing.T) {
	catalog := newStubCatalog(domain.Product{ID: "p1", PriceCents: 100, Currency: "USD", StockQuantity: 3})
	orders := &stubOrders{}
	gateway := &spyGateway{result: domain.Settlement{Success: false, GatewayMessage: "card declined"}}
	svc := newService(catalog, orders, gateway)

	result, err := svc.PlaceOrder(context.Background(), "buyer", Input{
		Nonce: "tok",
		Cart:  []domain.CartLine{{ProductID: "p1", ClaimedUnitPriceCents: 100, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateDeclined || result.GatewayMessage != "card declined" {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := catalog.stock("p1"); got != 3 {
		t.Fatalf("stock must be unchanged, got %d", got)
	}
	if orders.count() != 0 {
		t.Fatalf("no order may exist after a decline, got %d", orders.count())
	}
}

func TestPlaceOrderReservationFailureCompensates(t *testing.T) {
	catalog := newStubCatalog(
		domain.Product{ID: "p1", PriceCents: 100, Currency: "USD", StockQuantity: 5},
		domain.Product{ID: "p2", PriceCents: 200, Currency: "USD", StockQuantity: 1},
	)
	orders := &stubOrders{}
	gateway := &spyGateway{result: domain.Settlement{Success: true, TransactionID: "txn-9"}}
	// A concurrent sale exhausts p2 while the charge round-trip is in flight,
	// after the pre-check has already passed.
	gateway.onCharge = func() {
		if err := catalog.DecrementStock(context.Background(), "p2", 1); err != nil {
			t.Errorf("drain p2: %v", err)
		}
	}
	svc := newService(catalog, orders, gateway)

	result, err := svc.PlaceOrder(context.Background(), "buyer", Input{
		Nonce: "tok",
		Cart: []domain.CartLine{
			{ProductID: "p1", ClaimedUnitPriceCents: 100, Quantity: 2},
			{ProductID: "p2", ClaimedUnitPriceCents: 200, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateOutOfStock || result.ProductID != "p2" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.TransactionID != "txn-9" {
		t.Fatalf("transaction id must be preserved for reconciliation, got %q", result.TransactionID)
	}
	if got := catalog.stock("p1"); got != 5 {
		t.Fatalf("p1 decrement must be compensated, stock=%d", got)
	}
	if got := catalog.stock("p2"); got != 0 {
		t.Fatalf("p2 stock owned by the concurrent sale, stock=%d", got)
	}
	if orders.count() != 0 {
		t.Fatalf("no order may exist, got %d", orders.count())
	}
}

func TestPlaceOrderRecordingFailed(t *testing.T) {
	catalog := newStubCatalog(domain.Product{ID: "p1", PriceCents: 100, Currency: "USD", StockQuantity: 3})
	orders := &stubOrders{err: errors.New("store down")}
	gateway := &spyGateway{result: domain.Settlement{Success: true, TransactionID: "txn-5"}}
	svc := newService(catalog, orders, gateway)

	result, err := svc.PlaceOrder(context.Background(), "buyer", Input{
		Nonce: "tok",
		Cart:  []domain.CartLine{{ProductID: "p1", ClaimedUnitPriceCents: 100, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StateRecordingFailed || result.TransactionID != "txn-5" {
		t.Fatalf("unexpected result %+v", result)
	}
	// Money moved and stock was reserved; this state is for reconciliation,
	// not rollback.
	if got := catalog.stock("p1"); got != 2 {
		t.Fatalf("expected reserved stock kept, got %d", got)
	}
}

func TestPlaceOrderNonceReplay(t *testing.T) {
	catalog := newStubCatalog(domain.Product{ID: "p1", PriceCents: 100, Currency: "USD", StockQuantity: 5})
	orders := &stubOrders{}
	gateway := &spyGateway{result: domain.Settlement{Success: true, TransactionID: "txn-1"}}
	svc := newService(catalog, orders, gateway)

	in := Input{Nonce: "tok-once", Cart: []domain.CartLine{{ProductID: "p1", ClaimedUnitPriceCents: 100, Quantity: 1}}}
	first, err := svc.PlaceOrder(context.Background(), "buyer", in)
	if err != nil || first.State != StateSettled {
		t.Fatalf("first attempt: %+v err=%v", first, err)
	}

	second, err := svc.PlaceOrder(context.Background(), "buyer", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.State != StateRejected || second.Reason != ReasonInvalidNonce {
		t.Fatalf("replayed nonce must be rejected, got %+v", second)
	}
	if gateway.callCount() != 1 {
		t.Fatalf("gateway must not see the replay, calls=%d", gateway.callCount())
	}
}

func TestPlaceOrderIdempotentRejection(t *testing.T) {
	catalog := newStubCatalog(domain.Product{ID: "p1", PriceCents: 6000, Currency: "USD", StockQuantity: 3})
	orders := &stubOrders{}
	gateway := &spyGateway{}
	svc := newService(catalog, orders, gateway)

	in := Input{Nonce: "tok", Cart: []domain.CartLine{{ProductID: "p1", ClaimedUnitPriceCents: 5000, Quantity: 1}}}
	for i := 0; i < 2; i++ {
		result, err := svc.PlaceOrder(context.Background(), "buyer", in)
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		if result.State != StateRejected || result.Reason != ReasonPriceMismatch {
			t.Fatalf("attempt %d: unexpected result %+v", i, result)
		}
	}
	if gateway.callCount() != 0 || orders.count() != 0 || catalog.stock("p1") != 3 {
		t.Fatalf("rejection must leave no side effects: calls=%d orders=%d stock=%d",
			gateway.callCount(), orders.count(), catalog.stock("p1"))
	}
}

func TestPlaceOrderConcurrentNoOversell(t *testing.T) {
	const stock = 3
	const attempts = 10

	catalog := newStubCatalog(domain.Product{ID: "p1", PriceCents: 100, Currency: "USD", StockQuantity: stock})
	orders := &stubOrders{}
	gateway := &spyGateway{result: domain.Settlement{Success: true, TransactionID: "txn"}}
	svc := newService(catalog, orders, gateway)

	var wg sync.WaitGroup
	results := make([]*Result, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.PlaceOrder(context.Background(), "buyer", Input{
				Nonce: fmt.Sprintf("tok-%d", i),
				Cart:  []domain.CartLine{{ProductID: "p1", ClaimedUnitPriceCents: 100, Quantity: 1}},
			})
			if err != nil {
				t.Errorf("attempt %d: %v", i, err)
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	settled := 0
	for _, result := range results {
		if result == nil {
			continue
		}
		switch result.State {
		case StateSettled:
			settled++
		case StateRejected, StateOutOfStock:
		default:
			t.Fatalf("unexpected state %+v", result)
		}
	}
	if settled != stock {
		t.Fatalf("expected exactly %d settled checkouts, got %d", stock, settled)
	}
	if got := catalog.stock("p1"); got != 0 {
		t.Fatalf("expected stock drained to 0, got %d", got)
	}
	if orders.count() != settled {
		t.Fatalf("orders (%d) must match settled checkouts (%d)", orders.count(), settled)
	}
}

func TestChargeTotal(t *testing.T) {
	lines := []domain.ValidatedLine{
		{ProductID: "p1", UnitPriceCents: 1999, Quantity: 2},
		{ProductID: "p2", UnitPriceCents: 500, Quantity: 3},
	}
	if got := chargeTotal(lines); got != 2*1999+3*500 {
		t.Fatalf("unexpected total %d", got)
	}
}

func TestValidateCartCurrencyMismatch(t *testing.T) {
	catalog := newStubCatalog(
		domain.Product{ID: "p1", PriceCents: 100, Currency: "USD", StockQuantity: 5},
		domain.Product{ID: "p2", PriceCents: 100, Currency: "EUR", StockQuantity: 5},
	)
	_, err := validateCart(context.Background(), catalog, []domain.CartLine{
		{ProductID: "p1", ClaimedUnitPriceCents: 100, Quantity: 1},
		{ProductID: "p2", ClaimedUnitPriceCents: 100, Quantity: 1},
	})
	var rejected *CartRejectedError
	if !errors.As(err, &rejected) || rejected.Reason != ReasonCurrencyMismatch {
		t.Fatalf("expected currency mismatch, got %v", err)
	}
}

func TestValidateCartNegativeQuantity(t *testing.T) {
	catalog := newStubCatalog(domain.Product{ID: "p1", PriceCents: 100, Currency: "USD", StockQuantity: 5})
	_, err := validateCart(context.Background(), catalog, []domain.CartLine{
		{ProductID: "p1", ClaimedUnitPriceCents: 100, Quantity: -1},
	})
	var rejected *CartRejectedError
	if !errors.As(err, &rejected) || rejected.Reason != ReasonInvalidQuantity {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}
