package distribution_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"code.tierpay.io/referral/core/distribution"
	"code.tierpay.io/referral/core/distribution/mocks"
	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/sponsorship"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/memstore"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type testEngine struct {
	engine      *distribution.Engine
	store       *memstore.Store
	broker      *mocks.MockBroker
	timeService *mocks.MockTimeService

	mu     sync.Mutex
	events []events.Event
}

func testConfig() distribution.Config {
	cfg := distribution.NewDefaultConfig()
	cfg.RetryInitialInterval.Duration = time.Millisecond
	cfg.RetryMaxInterval.Duration = 5 * time.Millisecond
	cfg.RetryMaxElapsedTime.Duration = 50 * time.Millisecond
	return cfg
}

func newEngine(t *testing.T) *testEngine {
	t.Helper()
	return newEngineWithStore(t, nil)
}

// newEngineWithStore builds the engine on top of a memstore, wrap lets the
// test inject failures in front of it.
func newEngineWithStore(t *testing.T, wrap func(*memstore.Store) distribution.LedgerStore) *testEngine {
	t.Helper()

	ctrl := gomock.NewController(t)
	broker := mocks.NewMockBroker(ctrl)
	timeService := mocks.NewMockTimeService(ctrl)
	timeService.EXPECT().GetTimeNow().Return(testNow).AnyTimes()

	log := logging.NewTestLogger()
	store := memstore.New()
	var ledger distribution.LedgerStore = store
	if wrap != nil {
		ledger = wrap(store)
	}
	graph := sponsorship.NewEngine(log, store, broker, timeService)

	te := &testEngine{
		engine:      distribution.NewEngine(log, testConfig(), ledger, graph, broker, timeService),
		store:       store,
		broker:      broker,
		timeService: timeService,
	}
	broker.EXPECT().Send(gomock.Any()).Do(func(evt events.Event) {
		te.mu.Lock()
		defer te.mu.Unlock()
		te.events = append(te.events, evt)
	}).AnyTimes()
	return te
}

// newAccount creates an account, sponsored by sponsorID when not empty.
func (te *testEngine) newAccount(t *testing.T, id, sponsorID types.AccountID) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, te.store.CreateAccount(ctx, &types.Account{
		ID:             id,
		Name:           "name-" + string(id),
		Email:          fmt.Sprintf("%s@example.com", id),
		ReferralCode:   "CODE" + string(id),
		TotalEarnings:  num.DecimalZero(),
		Level1Earnings: num.DecimalZero(),
		Level2Earnings: num.DecimalZero(),
		CreatedAt:      testNow,
	}))
	if sponsorID != "" {
		require.NoError(t, te.store.AttachReferral(ctx, sponsorID, id, types.MaxDirectReferrals))
	}
}

func (te *testEngine) account(t *testing.T, id types.AccountID) *types.Account {
	t.Helper()

	a, err := te.store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return a
}

func (te *testEngine) commissionPaidEvents() []*events.CommissionPaid {
	te.mu.Lock()
	defer te.mu.Unlock()

	out := []*events.CommissionPaid{}
	for _, evt := range te.events {
		if e, ok := evt.(*events.CommissionPaid); ok {
			out = append(out, e)
		}
	}
	return out
}

func (te *testEngine) countEvents(et events.Type) int {
	te.mu.Lock()
	defer te.mu.Unlock()

	n := 0
	for _, evt := range te.events {
		if evt.Type() == et {
			n++
		}
	}
	return n
}

func assertEarnings(t *testing.T, a *types.Account, total, level1, level2 string) {
	t.Helper()

	assertDecimal(t, total, a.TotalEarnings, "total earnings of %s", a.ID)
	assertDecimal(t, level1, a.Level1Earnings, "level 1 earnings of %s", a.ID)
	assertDecimal(t, level2, a.Level2Earnings, "level 2 earnings of %s", a.ID)
	assert.True(t, a.AggregatesConsistent())
}

func assertDecimal(t *testing.T, expected string, actual num.Decimal, msg string, args ...interface{}) {
	t.Helper()

	assert.Truef(t, d(expected).Equal(actual), "%s: expected %s, got %s", fmt.Sprintf(msg, args...), expected, actual.String())
}

func d(s string) num.Decimal {
	return num.MustDecimalFromString(s)
}
