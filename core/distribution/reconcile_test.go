package distribution_test

import (
	"context"
	"testing"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	t.Run("No drift after distribution", testNoDriftAfterDistribution)
	t.Run("Drift is reported when aggregates are off", testDriftReported)
	t.Run("Reconciling an unknown account fails", testReconcileUnknownAccount)
}

func testNoDriftAfterDistribution(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "g", "")
	te.newAccount(t, "s", "g")
	te.newAccount(t, "p", "s")

	_, _, err := te.engine.RecordPurchaseAndDistribute(context.Background(), "p", d("2000"), d("2000"), "Book")
	require.NoError(t, err)

	drift, err := te.engine.Reconcile(context.Background(), "g")
	require.NoError(t, err)
	assert.False(t, drift.HasDrift())
	assertDecimal(t, "20", drift.Computed.Level2, "computed level 2")
	assert.Zero(t, te.countEvents(events.AggregateDriftEvent))
}

func testDriftReported(t *testing.T) {
	te := newEngine(t)
	te.newAccount(t, "s", "")
	te.newAccount(t, "p", "s")
	ctx := context.Background()

	_, _, err := te.engine.RecordPurchaseAndDistribute(ctx, "p", d("2000"), d("2000"), "Book")
	require.NoError(t, err)
	// an increment without its record
	require.NoError(t, te.store.IncrementAggregates(ctx, "s", types.DeltaForLevel(types.CommissionLevel1, d("7"))))

	drift, err := te.engine.Reconcile(ctx, "s")
	require.NoError(t, err)
	assert.True(t, drift.HasDrift())
	assertDecimal(t, "107", drift.Stored.Total, "stored total")
	assertDecimal(t, "100", drift.Computed.Total, "computed total")
	assert.Equal(t, 1, te.countEvents(events.AggregateDriftEvent))
}

func testReconcileUnknownAccount(t *testing.T) {
	te := newEngine(t)

	_, err := te.engine.Reconcile(context.Background(), "ghost")
	assert.ErrorIs(t, err, types.ErrAccountNotFound)
}
