// Package amqp queues outgoing mail on a RabbitMQ exchange for an external
// mailer to deliver.
package amqp

import (
	"context"
	"fmt"
	"time"

	"github.com/JMURv/session-keeper/internal/config"
	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

type MailJob struct {
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	QueuedAt time.Time `json:"queuedAt"`
}

type Publisher struct {
	conn       *amqp091.Connection
	ch         channel
	exchange   string
	routingKey string
}

func New(conf config.Config) (*Publisher, error) {
	conn, err := amqp091.Dial(conf.Notify.AMQPURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		conf.Notify.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:       conn,
		ch:         ch,
		exchange:   conf.Notify.Exchange,
		routingKey: conf.Notify.RoutingKey,
	}, nil
}

func (p *Publisher) Send(ctx context.Context, to, subject, body string) error {
	const op = "notify.Send.amqp"
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	payload, err := json.Marshal(
		&MailJob{
			To:       to,
			Subject:  subject,
			Body:     body,
			QueuedAt: time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to marshal mail job: %w", err)
	}

	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		},
	)
	if err != nil {
		span.SetTag(config.ErrorSpanTag, true)
		zap.L().Error("failed to publish mail job", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("failed to publish mail job: %w", err)
	}

	zap.L().Debug("mail job queued", zap.String("op", op), zap.String("routing_key", p.routingKey))
	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			zap.L().Error("failed to close RabbitMQ channel", zap.Error(err))
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}
