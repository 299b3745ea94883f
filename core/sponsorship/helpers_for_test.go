package sponsorship_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/sponsorship"
	"code.tierpay.io/referral/core/sponsorship/mocks"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/memstore"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	engine      *sponsorship.Engine
	store       *memstore.Store
	broker      *mocks.MockBroker
	timeService *mocks.MockTimeService
}

func newEngine(t *testing.T) *testEngine {
	t.Helper()

	ctrl := gomock.NewController(t)
	broker := mocks.NewMockBroker(ctrl)
	timeService := mocks.NewMockTimeService(ctrl)
	timeService.EXPECT().GetTimeNow().Return(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).AnyTimes()
	store := memstore.New()

	return &testEngine{
		engine:      sponsorship.NewEngine(logging.NewTestLogger(), store, broker, timeService),
		store:       store,
		broker:      broker,
		timeService: timeService,
	}
}

func newAccount(t *testing.T, te *testEngine, id types.AccountID) {
	t.Helper()

	require.NoError(t, te.store.CreateAccount(context.Background(), &types.Account{
		ID:             id,
		Name:           string(id),
		Email:          fmt.Sprintf("%s@example.com", id),
		ReferralCode:   "CODE" + string(id),
		TotalEarnings:  num.DecimalZero(),
		Level1Earnings: num.DecimalZero(),
		Level2Earnings: num.DecimalZero(),
	}))
}

// attach links the account to the sponsor, expecting the event.
func attach(t *testing.T, te *testEngine, sponsorID, accountID types.AccountID) {
	t.Helper()

	expectReferralAttachedEvent(t, te, sponsorID, accountID)
	require.NoError(t, te.engine.AttachReferral(context.Background(), sponsorID, accountID))
}

func expectReferralAttachedEvent(t *testing.T, te *testEngine, sponsorID, accountID types.AccountID) {
	t.Helper()

	te.broker.EXPECT().Send(gomock.Any()).Do(func(evt events.Event) {
		e, ok := evt.(*events.ReferralAttached)
		require.True(t, ok, "Event should be a ReferralAttached, but is %T", evt)
		assert.Equal(t, sponsorID, e.SponsorID())
		assert.Equal(t, accountID, e.AccountID())
	}).Times(1)
}
