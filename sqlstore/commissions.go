package sqlstore

import (
	"context"
	"time"

	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/metrics"

	"github.com/georgysavva/scany/pgxscan"
)

const commissionColumns = `id, beneficiary_id, source_id, purchase_id, amount, level, percentage, created_at`

type commission struct {
	ID            string      `db:"id"`
	BeneficiaryID string      `db:"beneficiary_id"`
	SourceID      string      `db:"source_id"`
	PurchaseID    string      `db:"purchase_id"`
	Amount        num.Decimal `db:"amount"`
	Level         int16       `db:"level"`
	Percentage    int64       `db:"percentage"`
	CreatedAt     time.Time   `db:"created_at"`
}

func (c commission) toType() *types.Commission {
	return &types.Commission{
		ID:            c.ID,
		BeneficiaryID: types.AccountID(c.BeneficiaryID),
		SourceID:      types.AccountID(c.SourceID),
		PurchaseID:    types.PurchaseID(c.PurchaseID),
		Amount:        c.Amount,
		Level:         types.CommissionLevel(c.Level),
		Percentage:    c.Percentage,
		CreatedAt:     c.CreatedAt,
	}
}

// CreateCommission inserts the record unless one already exists for the
// same purchase and level, it reports whether the record was inserted.
func (s *SQLStore) CreateCommission(ctx context.Context, c *types.Commission) (bool, error) {
	defer metrics.StartSQLQuery("Commissions", "CreateCommission")()
	tag, err := s.conn(ctx).Exec(ctx,
		`INSERT INTO commissions(`+commissionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (purchase_id, level) DO NOTHING`,
		c.ID,
		c.BeneficiaryID.String(),
		c.SourceID.String(),
		c.PurchaseID.String(),
		c.Amount,
		int16(c.Level),
		c.Percentage,
		c.CreatedAt,
	)
	if err != nil {
		code, constraint := pgErrorCode(err)
		if code == foreignKeyViolation {
			if constraint == "commissions_purchase_id_fkey" {
				return false, types.ErrNoSuchPurchase(c.PurchaseID)
			}
			return false, types.ErrNoSuchAccount(c.BeneficiaryID)
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListCommissionsByBeneficiary returns the commissions paid to the account,
// newest first. A limit of 0 returns all of them.
func (s *SQLStore) ListCommissionsByBeneficiary(ctx context.Context, id types.AccountID, limit int) ([]*types.Commission, error) {
	defer metrics.StartSQLQuery("Commissions", "ListCommissionsByBeneficiary")()
	rows := []commission{}
	if err := pgxscan.Select(ctx, s.conn(ctx), &rows,
		`SELECT `+commissionColumns+` FROM commissions
		 WHERE beneficiary_id = $1
		 ORDER BY created_at DESC, seq DESC
		 LIMIT NULLIF($2::bigint, 0)`, id.String(), int64(limit)); err != nil {
		return nil, err
	}

	out := make([]*types.Commission, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toType())
	}
	return out, nil
}

// SumCommissions totals the commission records of the beneficiary.
func (s *SQLStore) SumCommissions(ctx context.Context, id types.AccountID) (types.EarningsSummary, error) {
	defer metrics.StartSQLQuery("Commissions", "SumCommissions")()
	var (
		summary types.EarningsSummary
		count   int64
	)
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0),
		        COALESCE(SUM(amount) FILTER (WHERE level = 1), 0),
		        COALESCE(SUM(amount) FILTER (WHERE level = 2), 0),
		        COUNT(*)
		 FROM commissions WHERE beneficiary_id = $1`, id.String()).
		Scan(&summary.Total, &summary.Level1Total, &summary.Level2Total, &count)
	if err != nil {
		return types.EarningsSummary{}, err
	}
	summary.TransactionCount = uint64(count)
	return summary, nil
}
