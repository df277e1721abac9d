package rabbitmq_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"procurement/internal/adapters/out/rabbitmq"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/thread"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp091.Publishing,
) error {
	return m.Called(ctx, exchange, key, mandatory, immediate, msg).Error(0)
}

func TestThreadPublisher_Publish(t *testing.T) {
	occurred := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	orderID := kernel.NewUUID()
	member := kernel.NewUUID()
	n, err := thread.NewParticipantsChanged(orderID, []kernel.UUID{member}, occurred)
	require.NoError(t, err)

	ch := new(MockChannel)
	ch.On("PublishWithContext", mock.Anything, "order.threads", string(thread.KindParticipantsChanged), false, false,
		mock.MatchedBy(func(msg amqp091.Publishing) bool {
			var got thread.Notification
			if err := json.Unmarshal(msg.Body, &got); err != nil {
				return false
			}
			return msg.MessageId == n.ID &&
				msg.DeliveryMode == amqp091.Persistent &&
				msg.ContentType == "application/json" &&
				msg.Timestamp.Equal(occurred) &&
				got.OrderID == orderID.String() &&
				assert.ObjectsAreEqual([]string{member.String()}, got.Recipients)
		}),
	).Return(nil).Once()

	publisher := rabbitmq.NewThreadPublisher(ch, "order.threads", slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, publisher.Publish(t.Context(), n))
	ch.AssertExpectations(t)
}

func TestThreadPublisher_PublishFailure(t *testing.T) {
	n, err := thread.NewParticipantsChanged(kernel.NewUUID(), nil, time.Now())
	require.NoError(t, err)

	brokerErr := errors.New("channel/connection is not open")
	ch := new(MockChannel)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(brokerErr)

	publisher := rabbitmq.NewThreadPublisher(ch, "order.threads", slog.New(slog.NewTextHandler(io.Discard, nil)))

	err = publisher.Publish(t.Context(), n)
	require.ErrorIs(t, err, brokerErr)
	assert.Contains(t, err.Error(), n.ID)
}
