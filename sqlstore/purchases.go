package sqlstore

import (
	"context"
	"time"

	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/metrics"

	"github.com/georgysavva/scany/pgxscan"
)

const purchaseColumns = `id, account_id, amount, profit, product_name, status, created_at`

type purchase struct {
	ID          string      `db:"id"`
	AccountID   string      `db:"account_id"`
	Amount      num.Decimal `db:"amount"`
	Profit      num.Decimal `db:"profit"`
	ProductName string      `db:"product_name"`
	Status      int16       `db:"status"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (p purchase) toType() *types.Purchase {
	return &types.Purchase{
		ID:          types.PurchaseID(p.ID),
		AccountID:   types.AccountID(p.AccountID),
		Amount:      p.Amount,
		Profit:      p.Profit,
		ProductName: p.ProductName,
		Status:      types.PurchaseStatus(p.Status),
		CreatedAt:   p.CreatedAt,
	}
}

func (s *SQLStore) CreatePurchase(ctx context.Context, p *types.Purchase) error {
	defer metrics.StartSQLQuery("Purchases", "CreatePurchase")()
	_, err := s.conn(ctx).Exec(ctx,
		`INSERT INTO purchases(`+purchaseColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		p.ID.String(),
		p.AccountID.String(),
		p.Amount,
		p.Profit,
		p.ProductName,
		int16(p.Status),
		p.CreatedAt,
	)
	if code, _ := pgErrorCode(err); code == foreignKeyViolation {
		return types.ErrNoSuchAccount(p.AccountID)
	}
	return err
}

func (s *SQLStore) GetPurchase(ctx context.Context, id types.PurchaseID) (*types.Purchase, error) {
	defer metrics.StartSQLQuery("Purchases", "GetPurchase")()
	p := purchase{}
	err := pgxscan.Get(ctx, s.conn(ctx), &p,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id.String())
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNoSuchPurchase(id)
		}
		return nil, err
	}
	return p.toType(), nil
}

// ListPurchasesByAccount returns the purchases of the account, newest first.
func (s *SQLStore) ListPurchasesByAccount(ctx context.Context, id types.AccountID) ([]*types.Purchase, error) {
	defer metrics.StartSQLQuery("Purchases", "ListPurchasesByAccount")()
	rows := []purchase{}
	if err := pgxscan.Select(ctx, s.conn(ctx), &rows,
		`SELECT `+purchaseColumns+` FROM purchases
		 WHERE account_id = $1
		 ORDER BY created_at DESC, id DESC`, id.String()); err != nil {
		return nil, err
	}

	out := make([]*types.Purchase, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toType())
	}
	return out, nil
}
