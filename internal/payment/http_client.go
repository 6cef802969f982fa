package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/domain"
)

// HTTPClient talks to the external settlement endpoint. It satisfies
// SettlementClient by running the request on its own goroutine and delivering
// the outcome through the callback, matching the vendor SDK's async shape.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type gatewayResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Message       string `json:"message"`
}

func (c *HTTPClient) Settle(req ChargeRequest, done func(domain.Settlement, error)) {
	go func() {
		result, err := c.post(req)
		done(result, err)
	}()
}

func (c *HTTPClient) post(req ChargeRequest) (domain.Settlement, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.Settlement{}, err
	}
	resp, err := c.client.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return domain.Settlement{}, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Settlement{}, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return domain.Settlement{}, fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	var out gatewayResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return domain.Settlement{}, fmt.Errorf("decode gateway response: %w", err)
	}
	return domain.Settlement{
		Success:        out.Success,
		TransactionID:  out.TransactionID,
		GatewayMessage: out.Message,
	}, nil
}
