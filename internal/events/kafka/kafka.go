package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/JMURv/session-keeper/internal/config"
	md "github.com/JMURv/session-keeper/internal/models"
	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	writeTimeout = 5 * time.Second
	// batchTimeout caps how long a lone event waits for batch-mates before it is flushed.
	batchTimeout = 10 * time.Millisecond
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w writer
}

func New(conf config.Config) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(conf.Kafka.Brokers...),
			Topic:                  conf.Kafka.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           writeTimeout,
			BatchTimeout:           batchTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish writes e keyed by user id so a user's events stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, e *md.SecurityEvent) error {
	const op = "events.Publish.kafka"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	err = p.w.WriteMessages(
		ctx, kafka.Message{
			Key:   []byte(e.UserID.String()),
			Value: data,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(e.Type)},
			},
		},
	)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Debug("failed to publish event", zap.String("op", op), zap.String("type", e.Type), zap.Error(err))
		return fmt.Errorf("kafka: write failed: %w", err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}

// Noop drops every event. Used when KAFKA_ENABLED is false.
type Noop struct{}

func (Noop) Publish(context.Context, *md.SecurityEvent) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
