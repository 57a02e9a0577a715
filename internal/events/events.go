// Package events publishes domain notifications about orders and payments.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/vasiliy-maslov/marketfresh/internal/config"
)

const (
	TopicOrderCreated     = "order-created"
	TopicPaymentSucceeded = "payment-succeeded"
)

type Event struct {
	Topic string
	// Key selects the partition, so events of one aggregate stay ordered.
	Key     uuid.UUID
	Payload any
}

type OrderCreated struct {
	OrderID    uuid.UUID `json:"orderId"`
	CartID     uuid.UUID `json:"cartId"`
	TotalCents int64     `json:"totalCents"`
	CreatedAt  time.Time `json:"createdAt"`
}

type PaymentSucceeded struct {
	PaymentIntentID uuid.UUID `json:"paymentIntentId"`
	OrderID         uuid.UUID `json:"orderId"`
	Provider        string    `json:"provider"`
}

func NewOrderCreated(p OrderCreated) Event {
	return Event{Topic: TopicOrderCreated, Key: p.OrderID, Payload: p}
}

func NewPaymentSucceeded(p PaymentSucceeded) Event {
	return Event{Topic: TopicPaymentSucceeded, Key: p.OrderID, Payload: p}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// New returns a Kafka publisher when brokers are configured and a no-op publisher otherwise.
func New(cfg config.KafkaConfig) Publisher {
	if !cfg.Enabled() {
		log.Info().Msg("Kafka brokers not configured, domain events disabled")
		return NopPublisher{}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	log.Info().Strs("brokers", cfg.Brokers).Msg("Kafka publisher initialized")
	return NewKafkaPublisher(w)
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := p.message(e)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: failed to write message to %s: %w", e.Topic, err)
	}

	return nil
}

func (p *KafkaPublisher) message(e Event) (kafka.Message, error) {
	value, err := json.Marshal(e.Payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("events: failed to encode %s payload: %w", e.Topic, err)
	}

	return kafka.Message{
		Topic: e.Topic,
		Key:   []byte(e.Key.String()),
		Value: value,
		Time:  p.now(),
	}, nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// PublishBestEffort publishes e and only logs a failure. Callers use it after the state
// change it describes is already committed.
func PublishBestEffort(ctx context.Context, p Publisher, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		log.Warn().Err(err).Str("topic", e.Topic).Stringer("key", e.Key).Msg("events: failed to publish event")
	}
}
