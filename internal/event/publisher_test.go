package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/divvy/internal/event"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

func TestNewPublisher_DeclaresDurableDirectExchange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ch := event.NewMockChannel(ctrl)
	ch.EXPECT().ExchangeDeclare("divvy.expenses", "direct", true, false, false, false, nil).Return(nil)

	_, err := event.NewPublisher(ch, "divvy.expenses", "expense.created")
	require.NoError(t, err)
}

func TestNewPublisher_DeclareFailureClosesChannel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ch := event.NewMockChannel(ctrl)
	ch.EXPECT().ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("access refused"))
	ch.EXPECT().Close().Return(nil)

	_, err := event.NewPublisher(ch, "divvy.expenses", "expense.created")
	assert.Error(t, err)
}

func TestPublisher_PublishExpenseCreated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	e := ledger.Expense{
		ID:        uuid.New(),
		GroupID:   uuid.New(),
		PayerID:   uuid.New(),
		Amount:    4200,
		Split:     split.ExactInput{},
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	ch := event.NewMockChannel(ctrl)
	ch.EXPECT().ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	ch.EXPECT().
		PublishWithContext(gomock.Any(), "divvy.expenses", "expense.created", false, false, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _, _ bool, msg amqp091.Publishing) error {
			assert.Equal(t, "application/json", msg.ContentType)
			assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
			assert.Equal(t, e.ID.String(), msg.MessageId)

			got, err := event.ExpenseCreatedFromJSON(msg.Body)
			require.NoError(t, err)
			assert.Equal(t, event.ExpenseCreated{
				ExpenseID: e.ID,
				GroupID:   e.GroupID,
				PayerID:   e.PayerID,
				Amount:    4200,
				SplitType: "exact",
				CreatedAt: e.CreatedAt,
			}, *got)

			return nil
		})

	p, err := event.NewPublisher(ch, "divvy.expenses", "expense.created")
	require.NoError(t, err)

	require.NoError(t, p.PublishExpenseCreated(context.Background(), e))
}

func TestPublisher_PublishFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ch := event.NewMockChannel(ctrl)
	ch.EXPECT().ExchangeDeclare(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	ch.EXPECT().PublishWithContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(amqp091.ErrClosed)
	ch.EXPECT().Close().Return(nil)

	p, err := event.NewPublisher(ch, "divvy.expenses", "expense.created")
	require.NoError(t, err)

	err = p.PublishExpenseCreated(context.Background(), ledger.Expense{ID: uuid.New()})
	assert.ErrorIs(t, err, amqp091.ErrClosed)
	assert.NoError(t, p.Close())
}

func TestPublisher_SatisfiesLedgerPublisher(t *testing.T) {
	var _ ledger.Publisher = (*event.Publisher)(nil)
}
