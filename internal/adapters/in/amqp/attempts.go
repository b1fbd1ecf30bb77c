package amqp

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

const (
	deliveryCountHeader = "x-delivery-count"
	attemptKeyPrefix    = "orderflow:amqp:attempts:"
)

// CounterStore is the subset of the go-redis client used to count attempts.
type CounterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AttemptCounter numbers the failed deliveries of one message, starting at 1.
//
// Quorum queues report previous deliveries in x-delivery-count. Classic
// queues do not, so failures are counted in Redis by message id. Without
// either source a redelivered message is on its last attempt.
type AttemptCounter struct {
	store       CounterStore
	ttl         time.Duration
	maxAttempts int
}

// NewAttemptCounter accepts a nil store.
func NewAttemptCounter(store CounterStore, ttl time.Duration, maxAttempts int) *AttemptCounter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &AttemptCounter{store: store, ttl: ttl, maxAttempts: maxAttempts}
}

func (c *AttemptCounter) MaxAttempts() int {
	return c.maxAttempts
}

// Failed records a failed delivery and returns its attempt number.
func (c *AttemptCounter) Failed(ctx context.Context, d amqp.Delivery) (int, error) {
	if count, ok := deliveryCount(d.Headers); ok {
		return int(count) + 1, nil
	}

	if c.store != nil && d.MessageId != "" {
		key := attemptKeyPrefix + d.MessageId
		n, err := c.store.Incr(ctx, key).Result()
		if err != nil {
			return c.fallback(d), err
		}
		if n == 1 && c.ttl > 0 {
			_ = c.store.Expire(ctx, key, c.ttl).Err()
		}
		return int(n), nil
	}

	return c.fallback(d), nil
}

// Forget drops the stored counter once the message is settled for good.
func (c *AttemptCounter) Forget(ctx context.Context, d amqp.Delivery) {
	if c.store == nil || d.MessageId == "" {
		return
	}
	_ = c.store.Del(ctx, attemptKeyPrefix+d.MessageId).Err()
}

func (c *AttemptCounter) fallback(d amqp.Delivery) int {
	if d.Redelivered {
		return c.maxAttempts
	}
	return 1
}

func deliveryCount(headers amqp.Table) (int64, bool) {
	switch v := headers[deliveryCountHeader].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	default:
		return 0, false
	}
}
