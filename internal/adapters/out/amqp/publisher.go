// Package amqp publishes domain events to the RabbitMQ topic exchange.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/rabbit"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"
)

// Envelope is the body of every message on the exchange.
type Envelope struct {
	Payload any `json:"payload"`
}

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// ChannelOpener returns a channel on which the exchange is declared.
type ChannelOpener interface {
	Open(ctx context.Context) (Channel, error)
}

// Publisher publishes JSON envelopes. The channel is reopened lazily after it
// has been closed by the broker. A reopen is bounded by ReopenTimeout, and
// after a failed one publishes fail fast for ReopenCooldown.
type Publisher struct {
	exchange string
	open     ChannelOpener
	log      *logger.Logger

	mu       sync.Mutex
	ch       Channel
	failedAt time.Time
}

const (
	ReopenTimeout  = 2 * time.Second
	ReopenCooldown = 5 * time.Second
)

var _ ports.EventPublisher = (*Publisher)(nil)

var errBrokerCoolingDown = errors.New("broker reopen failed recently")

func NewPublisher(exchange string, open ChannelOpener, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{exchange: exchange, open: open, log: log}
}

// BrokerChannels opens channels on a connection established by Connect at
// startup. A connection closed by the broker is redialed with one attempt.
type BrokerChannels struct {
	dialer   *rabbit.Dialer
	exchange string
	conn     *amqp.Connection
}

func NewBrokerChannels(dialer *rabbit.Dialer, exchange string) *BrokerChannels {
	return &BrokerChannels{dialer: dialer, exchange: exchange}
}

// Connect dials with the dialer's retry policy and declares the exchange.
func (b *BrokerChannels) Connect(ctx context.Context) error {
	conn, err := b.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	b.conn = conn

	ch, err := b.Open(ctx)
	if err != nil {
		return multierr.Append(err, conn.Close())
	}
	return ch.Close()
}

func (b *BrokerChannels) Open(ctx context.Context) (Channel, error) {
	if b.conn == nil || b.conn.IsClosed() {
		timeout := ReopenTimeout
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
		conn, err := b.dialer.DialOnce(timeout)
		if err != nil {
			return nil, err
		}
		b.conn = conn
	}

	ch, err := b.conn.Channel()
	if err != nil {
		return nil, err
	}
	if err = rabbit.DeclareExchange(ch, b.exchange); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return ch, nil
}

func (b *BrokerChannels) Close() error {
	if b.conn == nil || b.conn.IsClosed() {
		return nil
	}
	return b.conn.Close()
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(Envelope{Payload: payload})
	if err != nil {
		return errs.Wrap(errs.KindInternal, err, "encode event")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		return errs.Wrap(errs.KindUnavailable, err, "rabbitmq channel")
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return errs.Wrap(errs.KindUnavailable, err, fmt.Sprintf("publish %s", routingKey))
	}

	p.log.Debug(p.log.WithFields(ctx, map[string]any{
		"routing_key": routingKey,
		"message_id":  msg.MessageId,
	}), "event published")
	return nil
}

func (p *Publisher) channel(ctx context.Context) (Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if !p.failedAt.IsZero() && time.Since(p.failedAt) < ReopenCooldown {
		return nil, errBrokerCoolingDown
	}

	openCtx, cancel := context.WithTimeout(ctx, ReopenTimeout)
	defer cancel()

	ch, err := p.open.Open(openCtx)
	if err != nil {
		p.failedAt = time.Now()
		return nil, err
	}
	p.ch = ch
	p.failedAt = time.Time{}
	return ch, nil
}

// Close closes the channel and, when the opener owns a connection, the
// connection as well.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil && !p.ch.IsClosed() {
		err = p.ch.Close()
	}
	if closer, ok := p.open.(io.Closer); ok {
		err = multierr.Append(err, closer.Close())
	}
	return err
}
