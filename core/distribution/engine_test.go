package distribution_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"code.tierpay.io/referral/core/distribution"
	"code.tierpay.io/referral/core/distribution/mocks"
	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/memstore"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPurchaseAndDistribute(t *testing.T) {
	t.Run("A purchaser without sponsor pays no commission", testNoSponsorNoCommission)
	t.Run("A purchaser with a sponsor pays one level", testOneLevelPaid)
	t.Run("A purchaser with a grand-sponsor pays two levels", testTwoLevelsPaid)
	t.Run("Levels beyond the second are never paid", testThirdLevelNotPaid)
	t.Run("The minimum purchase amount is inclusive", testMinimumPurchaseAmount)
	t.Run("An unknown purchaser is rejected without writes", testUnknownPurchaser)
	t.Run("A non positive profit records zero commissions", testNonPositiveProfit)
	t.Run("A zero profit records both levels", testZeroProfitTwoLevels)
	t.Run("A tiny profit records a zero second level", testTinyProfitTwoLevels)
	t.Run("Sub-cent amounts are rejected without writes", testSubCentRejected)
	t.Run("Cent amounts are stored as given", testCentsStoredAsGiven)
	t.Run("A purchase written despite a lost reply is paid once", testPurchaseWriteReplyLost)
	t.Run("Concurrent purchases sharing a sponsor", testConcurrentPurchasesSharingSponsor)
	t.Run("Many concurrent purchases keep aggregates consistent", testManyConcurrentPurchases)
}

func TestResumeDistribution(t *testing.T) {
	t.Run("Resuming a distributed purchase pays nothing twice", testResumeIsIdempotent)
	t.Run("Exhausted retries leave the purchase recorded", testExhaustedRetries)
	t.Run("Transient failures are retried", testTransientFailureRetried)
	t.Run("A vanished beneficiary skips its level", testVanishedBeneficiary)
	t.Run("Existing records are not incremented again", testExistingRecordNotIncremented)
	t.Run("Resuming an unknown purchase fails", testResumeUnknownPurchase)
}

func testNoSponsorNoCommission(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "p", "")

	purchase, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("2000"), d("2000"), "Book")
	require.NoError(t, err)
	require.NotNil(t, purchase)
	assert.Equal(t, types.PurchaseStatusRecorded, purchase.Status)
	assert.Equal(t, testNow, purchase.CreatedAt)
	assert.Empty(t, commissions)
	assert.Equal(t, 1, te.countEvents(events.PurchaseRecordedEvent))
	assert.Empty(t, te.commissionPaidEvents())

	stored, err := te.store.GetPurchase(context.Background(), purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book", stored.ProductName)
}

func testOneLevelPaid(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "s", "")
	te.newAccount(t, "p", "s")

	_, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("2000"), d("2000"), "Book")
	require.NoError(t, err)
	require.Len(t, commissions, 1)
	assert.Equal(t, types.AccountID("s"), commissions[0].BeneficiaryID)
	assert.Equal(t, types.CommissionLevel1, commissions[0].Level)
	assertDecimal(t, "100", commissions[0].Amount, "level 1 commission")

	assertEarnings(t, te.account(t, "s"), "100", "100", "0")
	assertEarnings(t, te.account(t, "p"), "0", "0", "0")
}

func testTwoLevelsPaid(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "g", "")
	te.newAccount(t, "s", "g")
	te.newAccount(t, "p", "s")

	purchase, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("2000"), d("2000"), "Book")
	require.NoError(t, err)
	require.Len(t, commissions, 2)

	assert.Equal(t, types.AccountID("s"), commissions[0].BeneficiaryID)
	assert.Equal(t, types.CommissionLevel1, commissions[0].Level)
	assert.Equal(t, int64(5), commissions[0].Percentage)
	assertDecimal(t, "100", commissions[0].Amount, "level 1 commission")

	assert.Equal(t, types.AccountID("g"), commissions[1].BeneficiaryID)
	assert.Equal(t, types.CommissionLevel2, commissions[1].Level)
	assert.Equal(t, int64(1), commissions[1].Percentage)
	assertDecimal(t, "20", commissions[1].Amount, "level 2 commission")

	for _, c := range commissions {
		assert.Equal(t, purchase.ID, c.PurchaseID)
		assert.Equal(t, types.AccountID("p"), c.SourceID)
	}

	assertEarnings(t, te.account(t, "s"), "100", "100", "0")
	assertEarnings(t, te.account(t, "g"), "20", "0", "20")

	paid := te.commissionPaidEvents()
	require.Len(t, paid, 2)
	for _, evt := range paid {
		assert.Equal(t, "name-p", evt.PurchaserName())
		assert.Equal(t, "Book", evt.ProductName())
	}
	assert.Equal(t, types.AccountID("s"), paid[0].Commission().BeneficiaryID)
	assert.Equal(t, types.AccountID("g"), paid[1].Commission().BeneficiaryID)
}

func testThirdLevelNotPaid(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "gg", "")
	te.newAccount(t, "g", "gg")
	te.newAccount(t, "s", "g")
	te.newAccount(t, "p", "s")

	_, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("1000"), d("1000"), "Pen")
	require.NoError(t, err)
	assert.Len(t, commissions, 2)
	assertEarnings(t, te.account(t, "gg"), "0", "0", "0")
}

func testMinimumPurchaseAmount(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "s", "")
	te.newAccount(t, "p", "s")
	ctx := context.Background()

	_, _, err := te.engine.RecordPurchaseAndDistribute(ctx, "p", d("999"), d("999"), "Pen")
	require.ErrorIs(t, err, types.ErrBelowMinimumPurchase)

	purchases, err := te.store.ListPurchasesByAccount(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, purchases)
	assertEarnings(t, te.account(t, "s"), "0", "0", "0")

	_, commissions, err := te.engine.RecordPurchaseAndDistribute(ctx, "p", d("1000"), d("1000"), "Pen")
	require.NoError(t, err)
	assert.Len(t, commissions, 1)
	assertEarnings(t, te.account(t, "s"), "50", "50", "0")
}

func testUnknownPurchaser(t *testing.T) {
	te := newEngine(t)

	purchase, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "ghost", d("2000"), d("2000"), "Book")
	require.ErrorIs(t, err, types.ErrAccountNotFound)
	assert.Nil(t, purchase)
	assert.Nil(t, commissions)
	assert.Zero(t, te.countEvents(events.PurchaseRecordedEvent))
}

func testNonPositiveProfit(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "s", "")
	te.newAccount(t, "p", "s")

	purchase, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("2000"), d("-50"), "Refurbished")
	require.NoError(t, err)
	assert.NotNil(t, purchase)
	require.Len(t, commissions, 1)
	assert.Equal(t, types.AccountID("s"), commissions[0].BeneficiaryID)
	assert.Equal(t, types.CommissionLevel1, commissions[0].Level)
	assertDecimal(t, "0", commissions[0].Amount, "level 1 amount")
	assertEarnings(t, te.account(t, "s"), "0", "0", "0")

	summary, err := te.store.SumCommissions(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), summary.TransactionCount)
}

func testZeroProfitTwoLevels(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "g", "")
	te.newAccount(t, "s", "g")
	te.newAccount(t, "p", "s")

	_, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("2000"), d("0"), "Book")
	require.NoError(t, err)
	require.Len(t, commissions, 2)
	for _, c := range commissions {
		assertDecimal(t, "0", c.Amount, "level %d amount", c.Level)
	}
	assert.Len(t, te.commissionPaidEvents(), 2)
	assertEarnings(t, te.account(t, "s"), "0", "0", "0")
	assertEarnings(t, te.account(t, "g"), "0", "0", "0")

	drift, err := te.engine.Reconcile(context.Background(), "g")
	require.NoError(t, err)
	assert.False(t, drift.HasDrift())
	assert.Equal(t, uint64(1), drift.Records)
}

func testTinyProfitTwoLevels(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "g", "")
	te.newAccount(t, "s", "g")
	te.newAccount(t, "p", "s")

	// 5% of 0.30 is 0.015, 1% is 0.003
	_, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("2000"), d("0.30"), "Book")
	require.NoError(t, err)
	require.Len(t, commissions, 2)
	assert.Equal(t, types.AccountID("s"), commissions[0].BeneficiaryID)
	assertDecimal(t, "0.02", commissions[0].Amount, "level 1 amount")
	assert.Equal(t, types.AccountID("g"), commissions[1].BeneficiaryID)
	assertDecimal(t, "0", commissions[1].Amount, "level 2 amount")
	assertEarnings(t, te.account(t, "s"), "0.02", "0.02", "0")
	assertEarnings(t, te.account(t, "g"), "0", "0", "0")

	summary, err := te.store.SumCommissions(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), summary.TransactionCount)
}

func testSubCentRejected(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "s", "")
	te.newAccount(t, "p", "s")
	ctx := context.Background()

	purchase, commissions, err := te.engine.RecordPurchaseAndDistribute(ctx, "p", d("2000"), d("0.305"), "Book")
	require.ErrorIs(t, err, types.ErrTooManyDecimals)
	assert.Nil(t, purchase)
	assert.Nil(t, commissions)

	purchase, _, err = te.engine.RecordPurchaseAndDistribute(ctx, "p", d("2000.001"), d("10"), "Book")
	require.ErrorIs(t, err, types.ErrTooManyDecimals)
	assert.Nil(t, purchase)

	purchases, err := te.store.ListPurchasesByAccount(ctx, "p")
	require.NoError(t, err)
	assert.Empty(t, purchases)
	assert.Zero(t, te.countEvents(events.PurchaseRecordedEvent))
	assertEarnings(t, te.account(t, "s"), "0", "0", "0")
}

func testCentsStoredAsGiven(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "s", "")
	te.newAccount(t, "p", "s")
	ctx := context.Background()

	// trailing zeros are not extra precision
	purchase, commissions, err := te.engine.RecordPurchaseAndDistribute(ctx, "p", d("1999.990"), d("0.35"), "Book")
	require.NoError(t, err)
	require.Len(t, commissions, 1)

	stored, err := te.store.GetPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assertDecimal(t, "1999.99", stored.Amount, "amount")
	assertDecimal(t, "0.35", stored.Profit, "profit")
	assertDecimal(t, "0.02", commissions[0].Amount, "level 1 amount")
}

// lostReplyStore writes the first purchase but reports a failure, as when a
// commit succeeds and the connection drops before the reply.
type lostReplyStore struct {
	*memstore.Store
	calls int64
}

func (l *lostReplyStore) CreatePurchase(ctx context.Context, p *types.Purchase) error {
	if err := l.Store.CreatePurchase(ctx, p); err != nil {
		return err
	}
	if atomic.AddInt64(&l.calls, 1) == 1 {
		return types.StorageFailure(errors.New("connection reset by peer"))
	}
	return nil
}

func testPurchaseWriteReplyLost(t *testing.T) {
	lost := &lostReplyStore{}
	te := newEngineWithStore(t, func(s *memstore.Store) distribution.LedgerStore {
		lost.Store = s
		return lost
	})
	te.newAccount(t, "g", "")
	te.newAccount(t, "s", "g")
	te.newAccount(t, "p", "s")
	ctx := context.Background()

	purchase, commissions, err := te.engine.RecordPurchaseAndDistribute(ctx, "p", d("2000"), d("2000"), "Book")
	require.NoError(t, err)
	require.NotNil(t, purchase)
	assert.Len(t, commissions, 2)
	assert.Equal(t, int64(2), atomic.LoadInt64(&lost.calls))

	purchases, err := te.store.ListPurchasesByAccount(ctx, "p")
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, purchase.ID, purchases[0].ID)
	assertEarnings(t, te.account(t, "s"), "100", "100", "0")
	assertEarnings(t, te.account(t, "g"), "20", "0", "20")
}

func testConcurrentPurchasesSharingSponsor(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "s", "")
	te.newAccount(t, "p1", "s")
	te.newAccount(t, "p2", "s")

	var wg sync.WaitGroup
	wg.Add(2)
	for id, amount := range map[types.AccountID]string{"p1": "1000", "p2": "3000"} {
		go func(id types.AccountID, amount string) {
			defer wg.Done()
			_, _, err := te.engine.RecordPurchaseAndDistribute(context.Background(), id, d(amount), d(amount), "Book")
			assert.NoError(t, err)
		}(id, amount)
	}
	wg.Wait()

	assertEarnings(t, te.account(t, "s"), "200", "200", "0")
}

func testManyConcurrentPurchases(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "g", "")
	te.newAccount(t, "s", "g")
	for i := 0; i < types.MaxDirectReferrals; i++ {
		te.newAccount(t, types.AccountID(fmt.Sprintf("p%d", i)), "s")
	}

	var wg sync.WaitGroup
	for i := 0; i < types.MaxDirectReferrals; i++ {
		for j := 0; j < 5; j++ {
			wg.Add(1)
			go func(id types.AccountID) {
				defer wg.Done()
				_, _, err := te.engine.RecordPurchaseAndDistribute(context.Background(), id, d("1000"), d("1000"), "Book")
				assert.NoError(t, err)
			}(types.AccountID(fmt.Sprintf("p%d", i)))
		}
	}
	wg.Wait()

	// 40 purchases, 50 each for s and 10 each for g
	assertEarnings(t, te.account(t, "s"), "2000", "2000", "0")
	assertEarnings(t, te.account(t, "g"), "400", "0", "400")

	for _, id := range []types.AccountID{"s", "g"} {
		drift, err := te.engine.Reconcile(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, drift.HasDrift())
		assert.Equal(t, uint64(40), drift.Records)
	}
}

func testResumeIsIdempotent(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "g", "")
	te.newAccount(t, "s", "g")
	te.newAccount(t, "p", "s")
	ctx := context.Background()

	purchase, _, err := te.engine.RecordPurchaseAndDistribute(ctx, "p", d("2000"), d("2000"), "Book")
	require.NoError(t, err)

	commissions, err := te.engine.ResumeDistribution(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Empty(t, commissions)

	assertEarnings(t, te.account(t, "s"), "100", "100", "0")
	assertEarnings(t, te.account(t, "g"), "20", "0", "20")
	assert.Len(t, te.commissionPaidEvents(), 2)

	summary, err := te.store.SumCommissions(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), summary.TransactionCount)
}

// flakyStore fails IncrementAggregates while failures is positive.
type flakyStore struct {
	*memstore.Store
	failures int64
	calls    int64
}

func (f *flakyStore) IncrementAggregates(ctx context.Context, id types.AccountID, delta types.AggregateDelta) error {
	atomic.AddInt64(&f.calls, 1)
	if atomic.AddInt64(&f.failures, -1) >= 0 {
		return types.StorageFailure(errors.New("connection reset by peer"))
	}
	return f.Store.IncrementAggregates(ctx, id, delta)
}

func testExhaustedRetries(t *testing.T) {
	flaky := &flakyStore{failures: 1 << 30}
	te := newEngineWithStore(t, func(s *memstore.Store) distribution.LedgerStore {
		flaky.Store = s
		return flaky
	})
	te.newAccount(t, "g", "")
	te.newAccount(t, "s", "g")
	te.newAccount(t, "p", "s")
	ctx := context.Background()

	purchase, commissions, err := te.engine.RecordPurchaseAndDistribute(ctx, "p", d("2000"), d("2000"), "Book")
	require.ErrorIs(t, err, types.ErrStorageFailure)
	require.NotNil(t, purchase)
	assert.Empty(t, commissions)
	assert.Greater(t, atomic.LoadInt64(&flaky.calls), int64(1))

	// the purchase is recorded, nothing is paid
	_, err = te.store.GetPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	assertEarnings(t, te.account(t, "s"), "0", "0", "0")
	summary, err := te.store.SumCommissions(ctx, "s")
	require.NoError(t, err)
	assert.Zero(t, summary.TransactionCount)

	// once the store recovers the distribution can be resumed
	atomic.StoreInt64(&flaky.failures, 0)
	commissions, err = te.engine.ResumeDistribution(ctx, purchase.ID)
	require.NoError(t, err)
	assert.Len(t, commissions, 2)
	assertEarnings(t, te.account(t, "s"), "100", "100", "0")
	assertEarnings(t, te.account(t, "g"), "20", "0", "20")
}

func testTransientFailureRetried(t *testing.T) {
	flaky := &flakyStore{failures: 2}
	te := newEngineWithStore(t, func(s *memstore.Store) distribution.LedgerStore {
		flaky.Store = s
		return flaky
	})
	te.newAccount(t, "s", "")
	te.newAccount(t, "p", "s")

	_, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("2000"), d("2000"), "Book")
	require.NoError(t, err)
	assert.Len(t, commissions, 1)
	assertEarnings(t, te.account(t, "s"), "100", "100", "0")

	summary, err := te.store.SumCommissions(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), summary.TransactionCount)
}

// vanishingStore behaves as if the account was deleted after the chain walk.
type vanishingStore struct {
	*memstore.Store
	vanished types.AccountID
}

func (v *vanishingStore) IncrementAggregates(ctx context.Context, id types.AccountID, delta types.AggregateDelta) error {
	if id == v.vanished {
		return types.ErrNoSuchAccount(id)
	}
	return v.Store.IncrementAggregates(ctx, id, delta)
}

func testVanishedBeneficiary(t *testing.T) {
	vanishing := &vanishingStore{vanished: "g"}
	te := newEngineWithStore(t, func(s *memstore.Store) distribution.LedgerStore {
		vanishing.Store = s
		return vanishing
	})
	te.newAccount(t, "g", "")
	te.newAccount(t, "s", "g")
	te.newAccount(t, "p", "s")

	_, commissions, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("2000"), d("2000"), "Book")
	require.NoError(t, err)
	require.Len(t, commissions, 1)
	assert.Equal(t, types.AccountID("s"), commissions[0].BeneficiaryID)

	// the level 2 record was rolled back with its increment
	summary, err := te.store.SumCommissions(context.Background(), "g")
	require.NoError(t, err)
	assert.Zero(t, summary.TransactionCount)
	assert.Len(t, te.commissionPaidEvents(), 1)
}

func testExistingRecordNotIncremented(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockLedgerStore(ctrl)
	graph := mocks.NewMockSponsorshipGraph(ctrl)
	broker := mocks.NewMockBroker(ctrl)
	timeService := mocks.NewMockTimeService(ctrl)
	timeService.EXPECT().GetTimeNow().Return(testNow).AnyTimes()
	engine := distribution.NewEngine(logging.NewTestLogger(), testConfig(), store, graph, broker, timeService)

	purchase := &types.Purchase{
		ID:        "purchase",
		AccountID: "p",
		Amount:    d("2000"),
		Profit:    d("2000"),
		Status:    types.PurchaseStatusRecorded,
	}
	store.EXPECT().GetPurchase(gomock.Any(), types.PurchaseID("purchase")).Return(purchase, nil)
	store.EXPECT().GetAccount(gomock.Any(), types.AccountID("p")).Return(&types.Account{ID: "p", Name: "Paul"}, nil)
	graph.EXPECT().AncestorsUpTo(gomock.Any(), types.AccountID("p"), types.MaxCommissionLevel).Return([]types.AccountID{"s", "g"}, nil)
	store.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	}).Times(2)
	// level 1 was already paid, level 2 is new
	store.EXPECT().CreateCommission(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c *types.Commission) (bool, error) {
		return c.Level == types.CommissionLevel2, nil
	}).Times(2)
	store.EXPECT().IncrementAggregates(gomock.Any(), types.AccountID("g"), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ types.AccountID, delta types.AggregateDelta) error {
			assertDecimal(t, "20", delta.Total, "total delta")
			assertDecimal(t, "20", delta.Level2, "level 2 delta")
			assert.True(t, delta.Level1.IsZero())
			return nil
		}).Times(1)
	broker.EXPECT().Send(gomock.Any()).Do(func(evt events.Event) {
		e, ok := evt.(*events.CommissionPaid)
		require.True(t, ok, "Event should be a CommissionPaid, but is %T", evt)
		assert.Equal(t, "Paul", e.PurchaserName())
	}).Times(1)

	commissions, err := engine.ResumeDistribution(context.Background(), "purchase")
	require.NoError(t, err)
	require.Len(t, commissions, 1)
	assert.Equal(t, types.CommissionLevel2, commissions[0].Level)
}

func testResumeUnknownPurchase(t *testing.T) {
	te := newEngine(t)

	_, err := te.engine.ResumeDistribution(context.Background(), "nope")
	assert.ErrorIs(t, err, types.ErrPurchaseNotFound)
}
