// Package amqp consumes auction and file events from the RabbitMQ topic
// exchange and turns them into order commands.
//
// Every delivery is settled exactly once: acknowledged on success, rejected
// without requeue (dead-lettered) when the failure is permanent or the
// attempts are exhausted, and requeued otherwise.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/metrics"
	"orderflow/internal/pkg/rabbit"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultPrefetch    = 10
	DefaultMaxAttempts = 3
)

var errUnroutable = errs.BadRequest("no handler for routing key")

type Config struct {
	Exchange string
	Queue    string
	Prefetch int
}

type dialer interface {
	Dial(ctx context.Context) (*amqp.Connection, error)
}

type Consumer struct {
	cfg      Config
	dialer   dialer
	handlers map[string]Handler
	attempts *AttemptCounter
	metrics  *metrics.ConsumerMetrics
	log      *logger.Logger
}

func NewConsumer(
	cfg Config,
	dialer dialer,
	attempts *AttemptCounter,
	consumerMetrics *metrics.ConsumerMetrics,
	log *logger.Logger,
) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = DefaultPrefetch
	}
	if attempts == nil {
		attempts = NewAttemptCounter(nil, 0, DefaultMaxAttempts)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{
		cfg:      cfg,
		dialer:   dialer,
		handlers: map[string]Handler{},
		attempts: attempts,
		metrics:  consumerMetrics,
		log:      log,
	}
}

// Handle binds routingKey to the queue and routes its messages to h.
// Register every handler before Run.
func (c *Consumer) Handle(routingKey string, h Handler) {
	c.handlers[routingKey] = h
}

func (c *Consumer) routingKeys() []string {
	keys := make([]string, 0, len(c.handlers))
	for k := range c.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Run consumes until ctx is done. A lost connection is redialed; Run fails
// when the dialer gives up.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		conn, err := c.dialer.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		err = c.consume(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return nil
		}
		c.log.Error(ctx, "rabbitmq consumer interrupted, reconnecting", err)
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	deliveries, err := c.setup(ch)
	if err != nil {
		return err
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	c.log.Info(c.log.WithFields(ctx, map[string]any{
		"exchange":     c.cfg.Exchange,
		"queue":        c.cfg.Queue,
		"routing_keys": c.routingKeys(),
		"prefetch":     c.cfg.Prefetch,
		"max_attempts": c.attempts.MaxAttempts(),
	}), "consumer is running")

	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.Process(ctx, d)
		}
	}
}

func (c *Consumer) setup(ch *amqp.Channel) (<-chan amqp.Delivery, error) {
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}
	if err := rabbit.DeclareExchange(ch, c.cfg.Exchange); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", c.cfg.Exchange, err)
	}

	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}

	for _, key := range c.routingKeys() {
		if err = ch.QueueBind(q.Name, key, c.cfg.Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", q.Name, err)
	}
	return deliveries, nil
}

type envelope struct {
	Payload json.RawMessage `json:"payload"`
}

// Process handles one delivery and settles it. It returns the outcome
// recorded in the metrics.
func (c *Consumer) Process(ctx context.Context, d amqp.Delivery) string {
	started := time.Now()
	ctx = c.log.WithFields(ctx, map[string]any{
		"routing_key":  d.RoutingKey,
		"message_id":   d.MessageId,
		"delivery_tag": d.DeliveryTag,
		"redelivered":  d.Redelivered,
	})
	c.log.Debug(ctx, "processing message")

	outcome := c.settle(ctx, d, c.dispatch(ctx, d))
	c.metrics.Observe(d.RoutingKey, outcome, time.Since(started))
	return outcome
}

func (c *Consumer) dispatch(ctx context.Context, d amqp.Delivery) error {
	h, ok := c.handlers[d.RoutingKey]
	if !ok {
		return errUnroutable
	}

	var body envelope
	if err := json.Unmarshal(d.Body, &body); err != nil {
		return errs.Wrap(errs.KindBadRequest, err, "message body is not a json envelope")
	}
	if len(body.Payload) == 0 || string(body.Payload) == "null" {
		return errs.BadRequest("message has no payload")
	}

	return h.Handle(ctx, body.Payload)
}

func (c *Consumer) settle(ctx context.Context, d amqp.Delivery, handleErr error) string {
	if handleErr == nil {
		if err := d.Ack(false); err != nil {
			c.log.Error(ctx, "ack failed", err)
		}
		c.attempts.Forget(ctx, d)
		c.log.Info(ctx, "message processed successfully")
		return metrics.OutcomeAcked
	}

	attempt, err := c.attempts.Failed(ctx, d)
	if err != nil {
		c.log.Error(ctx, "attempt counter unavailable", err)
	}
	ctx = c.log.WithField(ctx, "attempt", attempt)

	if !errs.IsTransient(handleErr) || attempt >= c.attempts.MaxAttempts() {
		if err = d.Reject(false); err != nil {
			c.log.Error(ctx, "reject failed", err)
		}
		c.attempts.Forget(ctx, d)
		c.log.Error(ctx, "message rejected permanently", handleErr)
		return metrics.OutcomeDropped
	}

	if err = d.Reject(true); err != nil {
		c.log.Error(ctx, "requeue failed", err)
	}
	c.log.Warn(c.log.WithField(ctx, "error", handleErr.Error()), "message requeued for retry")
	return metrics.OutcomeRequeued
}
