package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glimte/afterdo-go/callbacks"
	"github.com/glimte/afterdo-go/contracts"
	"github.com/glimte/afterdo-go/internal/reliability"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultExchange is the topic exchange events are published to
	DefaultExchange = "afterdo.events"
	// DefaultRoutingKeyPrefix starts every routing key
	DefaultRoutingKeyPrefix = "afterdo"
)

// Channel is the part of *amqp.Channel the publisher uses
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// EventPublisher publishes an InvocationEvent for every callback run it is
// registered as
type EventPublisher struct {
	channel        Channel
	conn           *amqp.Connection
	exchange       string
	prefix         string
	publishTimeout time.Duration
	retryPolicy    reliability.RetryPolicy
	logger         *slog.Logger
}

// PublisherOption configures the publisher
type PublisherOption func(*EventPublisher)

// WithExchange sets the exchange events are published to
func WithExchange(exchange string) PublisherOption {
	return func(p *EventPublisher) {
		p.exchange = exchange
	}
}

// WithRoutingKeyPrefix sets the first segment of routing keys
func WithRoutingKeyPrefix(prefix string) PublisherOption {
	return func(p *EventPublisher) {
		p.prefix = prefix
	}
}

// WithPublishTimeout sets the publish timeout used when the context has no deadline
func WithPublishTimeout(timeout time.Duration) PublisherOption {
	return func(p *EventPublisher) {
		p.publishTimeout = timeout
	}
}

// WithPublishRetries retries failed publishes with exponential backoff
func WithPublishRetries(retries int) PublisherOption {
	return func(p *EventPublisher) {
		p.retryPolicy = reliability.NewExponentialBackoff(100*time.Millisecond, 2*time.Second, 2.0, retries)
	}
}

// WithRetryPolicy sets the policy failed publishes are retried with
func WithRetryPolicy(policy reliability.RetryPolicy) PublisherOption {
	return func(p *EventPublisher) {
		if policy != nil {
			p.retryPolicy = policy
		}
	}
}

// WithPublisherLogger sets the logger
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *EventPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewEventPublisher creates a publisher on an open channel
func NewEventPublisher(channel Channel, options ...PublisherOption) *EventPublisher {
	p := &EventPublisher{
		channel:        channel,
		exchange:       DefaultExchange,
		prefix:         DefaultRoutingKeyPrefix,
		publishTimeout: 5 * time.Second,
		retryPolicy:    reliability.NoRetry,
		logger:         slog.Default(),
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// Dial connects to the broker at url, declares the exchange as a durable
// topic exchange and returns a publisher owning the connection
func Dial(url string, options ...PublisherOption) (*EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Err: err}
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, &ConnectionError{Op: "open channel", Err: err}
	}

	p := NewEventPublisher(ch, options...)
	p.conn = conn

	if err := ch.ExchangeDeclare(
		p.exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		p.Close()
		return nil, &ConnectionError{Op: "declare exchange " + p.exchange, Err: err}
	}

	p.logger.Info("event publisher connected", "exchange", p.exchange)
	return p, nil
}

// Publish sends evt to the exchange under its routing key
func (p *EventPublisher) Publish(ctx context.Context, evt *contracts.InvocationEvent) error {
	if err := evt.Validate(); err != nil {
		return err
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.publishTimeout)
		defer cancel()
	}

	env, err := contracts.NewEnvelope(evt, nil)
	if err != nil {
		return err
	}
	body, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	routingKey := evt.RoutingKey(p.prefix)
	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     evt.ID,
		CorrelationId: evt.CorrelationID,
		Timestamp:     evt.Timestamp,
		Type:          evt.Type,
		Body:          body,
	}

	attempts := 0
	err = reliability.Retry(ctx, p.retryPolicy, func() error {
		attempts++
		return p.channel.PublishWithContext(
			ctx,
			p.exchange,
			routingKey,
			false, // mandatory
			false, // immediate
			msg,
		)
	})
	if err != nil {
		p.logger.Error("failed to publish invocation event",
			"exchange", p.exchange,
			"routingKey", routingKey,
			"attempts", attempts,
			"error", err,
		)
		return &PublishError{
			Exchange:   p.exchange,
			RoutingKey: routingKey,
			Attempts:   attempts,
			Err:        err,
			Timestamp:  time.Now(),
		}
	}

	p.logger.Debug("published invocation event",
		"exchange", p.exchange,
		"routingKey", routingKey,
		"eventId", evt.ID,
		"invocationId", evt.CorrelationID,
	)
	return nil
}

// Callback returns a callback publishing an event for every run. Register
// it with Capability.Before or Capability.After. A failed publish fails the
// callback.
func (p *EventPublisher) Callback() callbacks.Func {
	return func(pl *callbacks.Payload) error {
		return p.Publish(context.Background(), contracts.NewInvocationEvent(pl))
	}
}

// Close closes the channel and, for publishers created with Dial, the connection
func (p *EventPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
