package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mehdighelich1379/Heart-Disease/pkg/events"
	pkgkafka "github.com/mehdighelich1379/Heart-Disease/pkg/kafka"
)

// Header names set on every assessment message.
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
	HeaderTenantID  = "tenant_id"
)

// MessageProducer is the part of pkg/kafka.Producer used here.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher writes assessment events to a single topic. The assessment ID is
// the message key, which keeps one assessment's events in order.
type Publisher struct {
	producer MessageProducer
	logger   *slog.Logger
	topic    string
}

// NewPublisher returns a Publisher for topic.
func NewPublisher(producer MessageProducer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{producer: producer, topic: topic, logger: logger}
}

// Publish encodes all events first and sends them as one batch, so an
// encoding failure sends nothing.
func (p *Publisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	batch := make([]pkgkafka.Message, len(domainEvents))
	types := make([]string, len(domainEvents))
	for i, evt := range domainEvents {
		msg, err := encodeEvent(evt)
		if err != nil {
			return err
		}
		batch[i], types[i] = msg, evt.EventType()
	}

	p.logger.DebugContext(ctx, "sending assessment events",
		slog.String("topic", p.topic),
		slog.String("aggregate_id", domainEvents[0].AggregateID().String()),
		slog.Any("event_types", types),
	)

	if err := p.producer.Publish(ctx, p.topic, batch...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

func encodeEvent(evt events.DomainEvent) (pkgkafka.Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return pkgkafka.Message{}, fmt.Errorf("failed to encode %s event: %w", evt.EventType(), err)
	}
	return pkgkafka.Message{
		Key:   []byte(evt.AggregateID().String()),
		Value: payload,
		Headers: map[string]string{
			HeaderEventType: evt.EventType(),
			HeaderEventID:   evt.EventID().String(),
			HeaderTenantID:  evt.TenantID().String(),
		},
	}, nil
}
