package sqlstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchases(t *testing.T) {
	s := getStore(t)
	ctx := context.Background()

	addTestAccount(t, s, "alice")
	first := addTestPurchase(t, s, "p1", "alice", testNow)
	addTestPurchase(t, s, "p2", "alice", testNow.Add(time.Hour))

	got, err := s.GetPurchase(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, first.AccountID, got.AccountID)
	assert.True(t, first.Profit.Equal(got.Profit))
	assert.Equal(t, types.PurchaseStatusRecorded, got.Status)
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt))

	purchases, err := s.ListPurchasesByAccount(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	assert.Equal(t, types.PurchaseID("p2"), purchases[0].ID)

	_, err = s.GetPurchase(ctx, "nope")
	assert.ErrorIs(t, err, types.ErrPurchaseNotFound)

	err = s.CreatePurchase(ctx, &types.Purchase{
		ID:        "p3",
		AccountID: "ghost",
		Amount:    num.DecimalOne(),
		Profit:    num.DecimalOne(),
		CreatedAt: testNow,
	})
	assert.ErrorIs(t, err, types.ErrAccountNotFound)

	// writing the same purchase again keeps the first row
	again := *first
	again.ProductName = "other"
	require.NoError(t, s.CreatePurchase(ctx, &again))
	got, err = s.GetPurchase(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "widget", got.ProductName)
	purchases, err = s.ListPurchasesByAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, purchases, 2)
}

func TestPurchaseCentsRoundTrip(t *testing.T) {
	s := getStore(t)
	ctx := context.Background()

	addTestAccount(t, s, "alice")
	p := &types.Purchase{
		ID:          "p1",
		AccountID:   "alice",
		Amount:      num.MustDecimalFromString("1999.99"),
		Profit:      num.MustDecimalFromString("0.35"),
		ProductName: "widget",
		Status:      types.PurchaseStatusRecorded,
		CreatedAt:   testNow,
	}
	require.NoError(t, s.CreatePurchase(ctx, p))

	got, err := s.GetPurchase(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "1999.99", got.Amount.StringFixed(2))
	assert.True(t, p.Amount.Equal(got.Amount))
	assert.True(t, p.Profit.Equal(got.Profit))
}

func TestCommissions(t *testing.T) {
	s := getStore(t)
	ctx := context.Background()

	addTestAccount(t, s, "g")
	addTestAccount(t, s, "p")

	for i := 0; i < 3; i++ {
		id := types.PurchaseID(fmt.Sprintf("p%d", i))
		addTestPurchase(t, s, id, "p", testNow)

		inserted, err := s.CreateCommission(ctx, &types.Commission{
			ID:            fmt.Sprintf("c%d", i),
			BeneficiaryID: "g",
			SourceID:      "p",
			PurchaseID:    id,
			Amount:        num.MustDecimalFromString("10.05"),
			Level:         types.CommissionLevel(i%2 + 1),
			Percentage:    5,
			CreatedAt:     testNow.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		assert.True(t, inserted)
	}

	// same purchase and level is not paid twice
	inserted, err := s.CreateCommission(ctx, &types.Commission{
		ID:            "c-dup",
		BeneficiaryID: "g",
		SourceID:      "p",
		PurchaseID:    "p0",
		Amount:        num.MustDecimalFromString("10.05"),
		Level:         types.CommissionLevel1,
		CreatedAt:     testNow,
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	all, err := s.ListCommissionsByBeneficiary(ctx, "g", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c2", all[0].ID)

	limited, err := s.ListCommissionsByBeneficiary(ctx, "g", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	summary, err := s.SumCommissions(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, "30.15", summary.Total.StringFixed(2))
	assert.Equal(t, "20.10", summary.Level1Total.StringFixed(2))
	assert.Equal(t, "10.05", summary.Level2Total.StringFixed(2))
	assert.Equal(t, uint64(3), summary.TransactionCount)

	empty, err := s.SumCommissions(ctx, "p")
	require.NoError(t, err)
	assert.True(t, empty.Total.IsZero())
	assert.Zero(t, empty.TransactionCount)

	_, err = s.CreateCommission(ctx, &types.Commission{
		ID:            "c-orphan",
		BeneficiaryID: "g",
		SourceID:      "p",
		PurchaseID:    "missing",
		Amount:        num.DecimalOne(),
		Level:         types.CommissionLevel1,
		CreatedAt:     testNow,
	})
	assert.ErrorIs(t, err, types.ErrPurchaseNotFound)
}
