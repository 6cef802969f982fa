package events

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"storefront/internal/domain"
)

const TopicOrderPlaced = "order.placed"

// Envelope wraps every published event.
type Envelope struct {
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderPlacedPayload is emitted once per settled checkout.
type OrderPlacedPayload struct {
	OrderID     string             `json:"orderId"`
	BuyerID     string             `json:"buyerId"`
	AmountCents int64              `json:"amountCents"`
	Currency    string             `json:"currency"`
	Lines       []domain.OrderLine `json:"lines"`
}

// Producer publishes order events to Kafka. A nil Producer is valid and drops
// everything, so callers don't branch on whether brokers are configured.
type Producer struct {
	writer *kafka.Writer
	logger *log.Logger
}

// NewProducer returns nil when brokersCSV is empty.
func NewProducer(brokersCSV string, logger *log.Logger) *Producer {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        TopicOrderPlaced,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
		logger: logger,
	}
}

// OrderPlaced publishes the event keyed by order id. Best effort: failures are
// logged and swallowed so event delivery never affects a settled checkout.
func (p *Producer) OrderPlaced(ctx context.Context, order domain.Order) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(OrderPlacedPayload{
		OrderID:     order.ID,
		BuyerID:     order.BuyerID,
		AmountCents: order.AmountCents,
		Currency:    order.Currency,
		Lines:       order.Lines,
	})
	if err != nil {
		p.logger.Printf("events: marshal order_id=%s error=%v", order.ID, err)
		return
	}
	env, err := json.Marshal(Envelope{
		EventID:    uuid.NewString(),
		EventType:  TopicOrderPlaced,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		p.logger.Printf("events: marshal envelope order_id=%s error=%v", order.ID, err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(order.ID), Value: env}); err != nil {
		p.logger.Printf("events: publish order_id=%s error=%v", order.ID, err)
	}
}

// Close flushes the underlying writer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
