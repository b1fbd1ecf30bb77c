package amqp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqpadapter "orderflow/internal/adapters/out/amqp"
	"orderflow/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockChannel) IsClosed() bool {
	return m.Called().Bool(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(ctx context.Context) (amqpadapter.Channel, error) {
	args := m.Called(ctx)
	if ch, ok := args.Get(0).(amqpadapter.Channel); ok {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}

type statusEvent struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"new_order_status"`
}

func TestPublisher_Publish(t *testing.T) {
	t.Run("wraps payload in envelope", func(t *testing.T) {
		ch := &MockChannel{}
		opener := &MockOpener{}
		opener.On("Open", mock.Anything).Return(ch, nil).Once()
		ch.On("IsClosed").Return(false)

		var published amqp.Publishing
		ch.On("PublishWithContext", mock.Anything, "orders", "order.status_updated", false, false, mock.Anything).
			Run(func(args mock.Arguments) { published = args.Get(5).(amqp.Publishing) }).
			Return(nil).Twice()

		publisher := amqpadapter.NewPublisher("orders", opener, nil)
		event := statusEvent{OrderID: 7, Status: "PORT_CHOSEN"}

		require.NoError(t, publisher.Publish(t.Context(), "order.status_updated", event))
		require.NoError(t, publisher.Publish(t.Context(), "order.status_updated", event))

		assert.Equal(t, "application/json", published.ContentType)
		assert.Equal(t, amqp.Persistent, published.DeliveryMode)
		assert.NotEmpty(t, published.MessageId)

		var body struct {
			Payload statusEvent `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(published.Body, &body))
		assert.Equal(t, event, body.Payload)

		opener.AssertExpectations(t)
		ch.AssertExpectations(t)
	})

	t.Run("reopens closed channel", func(t *testing.T) {
		closed := &MockChannel{}
		fresh := &MockChannel{}
		opener := &MockOpener{}
		opener.On("Open", mock.Anything).Return(closed, nil).Once()
		opener.On("Open", mock.Anything).Return(fresh, nil).Once()
		closed.On("PublishWithContext", mock.Anything, "orders", "k", false, false, mock.Anything).Return(nil).Once()
		closed.On("IsClosed").Return(true)
		fresh.On("PublishWithContext", mock.Anything, "orders", "k", false, false, mock.Anything).Return(nil).Once()

		publisher := amqpadapter.NewPublisher("orders", opener, nil)

		require.NoError(t, publisher.Publish(t.Context(), "k", statusEvent{}))
		require.NoError(t, publisher.Publish(t.Context(), "k", statusEvent{}))

		opener.AssertExpectations(t)
		fresh.AssertExpectations(t)
	})

	t.Run("broker failures are unavailable", func(t *testing.T) {
		opener := &MockOpener{}
		opener.On("Open", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		err := amqpadapter.NewPublisher("orders", opener, nil).Publish(t.Context(), "k", statusEvent{})

		require.Error(t, err)
		assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
	})

	t.Run("failed reopen fails fast until cooldown", func(t *testing.T) {
		opener := &MockOpener{}
		opener.On("Open", mock.Anything).Return(nil, errors.New("connection refused")).Once()
		publisher := amqpadapter.NewPublisher("orders", opener, nil)

		require.Error(t, publisher.Publish(t.Context(), "k", statusEvent{}))
		err := publisher.Publish(t.Context(), "k", statusEvent{})

		require.Error(t, err)
		assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
		opener.AssertNumberOfCalls(t, "Open", 1)
	})

	t.Run("reopen is bounded by a deadline", func(t *testing.T) {
		opener := &MockOpener{}
		var deadline time.Time
		opener.On("Open", mock.Anything).
			Run(func(args mock.Arguments) { deadline, _ = args.Get(0).(context.Context).Deadline() }).
			Return(nil, errors.New("connection refused")).Once()

		_ = amqpadapter.NewPublisher("orders", opener, nil).Publish(t.Context(), "k", statusEvent{})

		require.False(t, deadline.IsZero())
		assert.LessOrEqual(t, time.Until(deadline), amqpadapter.ReopenTimeout)
	})

	t.Run("unencodable payload is internal", func(t *testing.T) {
		opener := &MockOpener{}

		err := amqpadapter.NewPublisher("orders", opener, nil).Publish(t.Context(), "k", make(chan int))

		require.Error(t, err)
		assert.Equal(t, errs.KindInternal, errs.KindOf(err))
		opener.AssertNotCalled(t, "Open", mock.Anything)
	})
}

func TestPublisher_Close(t *testing.T) {
	ch := &MockChannel{}
	opener := &MockOpener{}
	opener.On("Open", mock.Anything).Return(ch, nil).Once()
	ch.On("PublishWithContext", mock.Anything, "orders", "k", false, false, mock.Anything).Return(nil).Once()
	ch.On("IsClosed").Return(false)
	ch.On("Close").Return(nil).Once()

	publisher := amqpadapter.NewPublisher("orders", opener, nil)
	require.NoError(t, publisher.Publish(t.Context(), "k", statusEvent{}))

	require.NoError(t, publisher.Close())
	ch.AssertExpectations(t)
}
