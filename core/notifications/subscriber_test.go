package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"code.tierpay.io/referral/broker"
	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/notifications"
	"code.tierpay.io/referral/core/notifications/mocks"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paidAt = time.Date(2024, 2, 2, 8, 30, 0, 0, time.UTC)

func commissionPaid(ctx context.Context, beneficiary types.AccountID, level types.CommissionLevel, amount string) *events.CommissionPaid {
	return events.NewCommissionPaidEvent(ctx, &types.Commission{
		ID:            "c-" + string(beneficiary),
		BeneficiaryID: beneficiary,
		SourceID:      "buyer",
		PurchaseID:    "purchase",
		Amount:        num.MustDecimalFromString(amount),
		Level:         level,
		Percentage:    5,
		CreatedAt:     paidAt,
	}, "Buyer", "Widget")
}

func TestPushPublishesCommissions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sub := notifications.NewSubscriber(ctx, logging.NewTestLogger(), sink, true)

	sink.EXPECT().Publish(gomock.Any(), types.AccountID("sponsor"), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ types.AccountID, n notifications.Notification) error {
			assert.Equal(t, notifications.EventNewEarning, n.Event)
			assert.True(t, num.MustDecimalFromString("100").Equal(n.Amount))
			assert.Equal(t, uint8(1), n.Level)
			assert.Equal(t, "Buyer", n.From)
			assert.Equal(t, "Widget", n.Product)
			assert.Equal(t, paidAt, n.Timestamp)
			return nil
		}).Times(1)
	sink.EXPECT().Publish(gomock.Any(), types.AccountID("grand"), gomock.Any()).Return(nil).Times(1)

	sub.Push(
		commissionPaid(ctx, "sponsor", types.CommissionLevel1, "100"),
		events.NewAccountRegisteredEvent(ctx, &types.Account{ID: "other"}),
		commissionPaid(ctx, "grand", types.CommissionLevel2, "20"),
	)
}

func TestPushSwallowsDeliveryFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	sub := notifications.NewSubscriber(ctx, logging.NewTestLogger(), sink, true)

	gomock.InOrder(
		sink.EXPECT().Publish(gomock.Any(), types.AccountID("a"), gomock.Any()).Return(types.ErrNotificationDeliveryFailure),
		sink.EXPECT().Publish(gomock.Any(), types.AccountID("b"), gomock.Any()).Return(errors.New("socket closed")),
		sink.EXPECT().Publish(gomock.Any(), types.AccountID("c"), gomock.Any()).Return(nil),
	)

	assert.NotPanics(t, func() {
		sub.Push(
			commissionPaid(ctx, "a", types.CommissionLevel1, "1"),
			commissionPaid(ctx, "b", types.CommissionLevel1, "1"),
			commissionPaid(ctx, "c", types.CommissionLevel1, "1"),
		)
	})
}

func TestSubscriberThroughBroker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSink(ctrl)
	delivered := make(chan notifications.Notification, 1)
	sink.EXPECT().Publish(gomock.Any(), types.AccountID("sponsor"), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ types.AccountID, n notifications.Notification) error {
			delivered <- n
			return nil
		}).Times(1)

	b := broker.New(ctx, logging.NewTestLogger(), broker.NewDefaultConfig())
	sub := notifications.NewSubscriber(ctx, logging.NewTestLogger(), sink, false)
	b.Subscribe(sub)

	b.Send(commissionPaid(ctx, "sponsor", types.CommissionLevel1, "100"))

	select {
	case n := <-delivered:
		require.Equal(t, types.AccountID("sponsor"), n.Recipient)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
}
