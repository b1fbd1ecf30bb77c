// Package rabbit opens RabbitMQ connections with a bounded exponential
// backoff and declares the topic exchange shared by consumers and publishers.
package rabbit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

const ExchangeKind = amqp.ExchangeTopic

const defaultDialTimeout = 2 * time.Second

// RetryPolicy bounds reconnect attempts. Delays grow exponentially from
// BaseDelay up to MaxDelay.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		exp.InitialInterval = p.BaseDelay
	}
	if p.MaxDelay > 0 {
		exp.MaxInterval = p.MaxDelay
	}
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Dialer opens connections to one broker.
type Dialer struct {
	url    string
	policy RetryPolicy
	log    *logger.Logger
}

func NewDialer(url string, policy RetryPolicy, log *logger.Logger) *Dialer {
	if log == nil {
		log = logger.Nop()
	}
	return &Dialer{url: url, policy: policy, log: log}
}

// Dial connects, retrying with backoff until the policy is exhausted or ctx
// is done. A malformed URL fails immediately.
func (d *Dialer) Dial(ctx context.Context) (*amqp.Connection, error) {
	if _, err := amqp.ParseURI(d.url); err != nil {
		return nil, fmt.Errorf("rabbitmq url: %w", err)
	}

	var conn *amqp.Connection
	attempt := 0
	operation := func() error {
		attempt++
		c, err := amqp.Dial(d.url)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	notify := func(err error, next time.Duration) {
		d.log.Error(d.log.WithFields(ctx, map[string]any{
			"attempt":  attempt,
			"attempts": d.policy.Attempts,
			"retry_in": next.String(),
		}), "rabbitmq connection failed", err)
	}

	if err := backoff.RetryNotify(operation, d.policy.backOff(ctx), notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(ctxErr, err)
		}
		return nil, fmt.Errorf("rabbitmq unreachable after %d attempts: %w", attempt, err)
	}

	d.log.Info(ctx, "rabbitmq connected")
	return conn, nil
}

// DialOnce makes a single connection attempt. The TCP connect and the AMQP
// handshake are both bounded by timeout.
func (d *Dialer) DialOnce(timeout time.Duration) (*amqp.Connection, error) {
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return amqp.DialConfig(d.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// DeclareExchange declares the durable topic exchange.
func DeclareExchange(ch *amqp.Channel, name string) error {
	return ch.ExchangeDeclare(name, ExchangeKind, true, false, false, false, nil)
}
