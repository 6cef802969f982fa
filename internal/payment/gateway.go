package payment

import (
	"context"
	"io"
	"log"

	"storefront/internal/domain"
)

// Gateway settles a charge for the given amount using a one-time client token.
// Implementations must request settlement, not mere authorization. Transport
// failures and explicit declines both come back as Settlement{Success: false};
// the error return is reserved for programming mistakes (nil client etc).
type Gateway interface {
	Charge(ctx context.Context, amountCents int64, nonce string) (domain.Settlement, error)
}

// ChargeRequest is what the external settlement API consumes.
type ChargeRequest struct {
	AmountCents         int64  `json:"amountCents"`
	PaymentMethodToken  string `json:"paymentMethodNonce"`
	SubmitForSettlement bool   `json:"submitForSettlement"`
}

// SettlementClient is the callback-style surface of the external gateway SDK.
// Settle must invoke done exactly once, from any goroutine.
type SettlementClient interface {
	Settle(req ChargeRequest, done func(domain.Settlement, error))
}

// Adapter turns the callback-style SettlementClient into one blocking call so
// the checkout pipeline can treat payment as a single awaited step with a
// deadline. A ctx timeout is indistinguishable from a decline to the caller.
type Adapter struct {
	client SettlementClient
	logger *log.Logger
}

func NewAdapter(client SettlementClient, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Adapter{client: client, logger: logger}
}

type settleReply struct {
	result domain.Settlement
	err    error
}

func (a *Adapter) Charge(ctx context.Context, amountCents int64, nonce string) (domain.Settlement, error) {
	// Buffered so a late callback after timeout doesn't leak a goroutine.
	replyCh := make(chan settleReply, 1)
	a.client.Settle(ChargeRequest{
		AmountCents:         amountCents,
		PaymentMethodToken:  nonce,
		SubmitForSettlement: true,
	}, func(result domain.Settlement, err error) {
		replyCh <- settleReply{result: result, err: err}
	})

	select {
	case reply := <-replyCh:
		if reply.err != nil {
			a.logger.Printf("payment: gateway error amount_cents=%d error=%v", amountCents, reply.err)
			return domain.Settlement{Success: false, GatewayMessage: "payment gateway unavailable", AmountCents: amountCents}, nil
		}
		result := reply.result
		result.AmountCents = amountCents
		return result, nil
	case <-ctx.Done():
		a.logger.Printf("payment: gateway timeout amount_cents=%d error=%v", amountCents, ctx.Err())
		return domain.Settlement{Success: false, GatewayMessage: "payment gateway timeout", AmountCents: amountCents}, nil
	}
}
