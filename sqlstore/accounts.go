package sqlstore

import (
	"context"
	"strings"
	"time"

	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/metrics"

	"github.com/georgysavva/scany/pgxscan"
)

const accountColumns = `a.id, a.name, a.email, a.password_hash, a.referral_code, a.sponsor_id,
	a.total_earnings, a.level1_earnings, a.level2_earnings, a.created_at,
	COALESCE((SELECT array_agg(r.id ORDER BY r.referred_at, r.id)
		FROM accounts r WHERE r.sponsor_id = a.id), '{}'::text[]) AS direct_referrals`

type account struct {
	ID              string      `db:"id"`
	Name            string      `db:"name"`
	Email           string      `db:"email"`
	PasswordHash    string      `db:"password_hash"`
	ReferralCode    string      `db:"referral_code"`
	SponsorID       *string     `db:"sponsor_id"`
	TotalEarnings   num.Decimal `db:"total_earnings"`
	Level1Earnings  num.Decimal `db:"level1_earnings"`
	Level2Earnings  num.Decimal `db:"level2_earnings"`
	CreatedAt       time.Time   `db:"created_at"`
	DirectReferrals []string    `db:"direct_referrals"`
}

func (a account) toType() *types.Account {
	out := &types.Account{
		ID:              types.AccountID(a.ID),
		Name:            a.Name,
		Email:           a.Email,
		PasswordHash:    a.PasswordHash,
		ReferralCode:    a.ReferralCode,
		TotalEarnings:   a.TotalEarnings,
		Level1Earnings:  a.Level1Earnings,
		Level2Earnings:  a.Level2Earnings,
		CreatedAt:       a.CreatedAt,
		DirectReferrals: make([]types.AccountID, 0, len(a.DirectReferrals)),
	}
	if a.SponsorID != nil {
		out.SponsorID = types.AccountID(*a.SponsorID)
	}
	for _, id := range a.DirectReferrals {
		out.DirectReferrals = append(out.DirectReferrals, types.AccountID(id))
	}
	return out
}

// CreateAccount inserts a root account, sponsorship is only ever set
// through AttachReferral.
func (s *SQLStore) CreateAccount(ctx context.Context, a *types.Account) error {
	defer metrics.StartSQLQuery("Accounts", "CreateAccount")()
	_, err := s.conn(ctx).Exec(ctx,
		`INSERT INTO accounts(id, name, email, password_hash, referral_code,
			total_earnings, level1_earnings, level2_earnings, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID.String(),
		a.Name,
		a.Email,
		a.PasswordHash,
		a.ReferralCode,
		a.TotalEarnings,
		a.Level1Earnings,
		a.Level2Earnings,
		a.CreatedAt,
	)
	if err != nil {
		code, constraint := pgErrorCode(err)
		if code == uniqueViolation {
			switch constraint {
			case "accounts_email_idx":
				return types.ErrEmailAlreadyRegistered
			case "accounts_referral_code_idx":
				return types.ErrReferralCodeTaken
			}
		}
		return err
	}
	return nil
}

func (s *SQLStore) GetAccount(ctx context.Context, id types.AccountID) (*types.Account, error) {
	defer metrics.StartSQLQuery("Accounts", "GetAccount")()
	a, err := s.getAccount(ctx, `a.id = $1`, id.String())
	if pgxscan.NotFound(err) {
		return nil, types.ErrNoSuchAccount(id)
	}
	return a, err
}

func (s *SQLStore) GetAccountByEmail(ctx context.Context, email string) (*types.Account, error) {
	defer metrics.StartSQLQuery("Accounts", "GetAccountByEmail")()
	a, err := s.getAccount(ctx, `lower(a.email) = $1`, strings.ToLower(email))
	if pgxscan.NotFound(err) {
		return nil, types.ErrAccountNotFound
	}
	return a, err
}

func (s *SQLStore) GetAccountByReferralCode(ctx context.Context, code string) (*types.Account, error) {
	defer metrics.StartSQLQuery("Accounts", "GetAccountByReferralCode")()
	a, err := s.getAccount(ctx, `a.referral_code = $1`, code)
	if pgxscan.NotFound(err) {
		return nil, types.ErrAccountNotFound
	}
	return a, err
}

func (s *SQLStore) getAccount(ctx context.Context, where string, arg interface{}) (*types.Account, error) {
	a := account{}
	if err := pgxscan.Get(ctx, s.conn(ctx), &a,
		`SELECT `+accountColumns+` FROM accounts a WHERE `+where, arg); err != nil {
		return nil, err
	}
	return a.toType(), nil
}

func (s *SQLStore) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	defer metrics.StartSQLQuery("Accounts", "ReferralCodeExists")()
	var exists bool
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE referral_code = $1)`, code).Scan(&exists)
	return exists, err
}

// ListAccountsBySponsor returns the direct referrals of the sponsor, oldest
// first.
func (s *SQLStore) ListAccountsBySponsor(ctx context.Context, sponsorID types.AccountID) ([]*types.Account, error) {
	if _, err := s.GetAccount(ctx, sponsorID); err != nil {
		return nil, err
	}

	defer metrics.StartSQLQuery("Accounts", "ListAccountsBySponsor")()
	rows := []account{}
	if err := pgxscan.Select(ctx, s.conn(ctx), &rows,
		`SELECT `+accountColumns+` FROM accounts a
		 WHERE a.sponsor_id = $1
		 ORDER BY a.created_at, a.id`, sponsorID.String()); err != nil {
		return nil, err
	}

	out := make([]*types.Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toType())
	}
	return out, nil
}

// AttachReferral sets the sponsor of the account, as long as the sponsor
// has fewer than limit referrals and the account has neither a sponsor nor
// referrals of its own. Both rows are locked for the duration of the check.
func (s *SQLStore) AttachReferral(ctx context.Context, sponsorID, accountID types.AccountID, limit int) error {
	defer metrics.StartSQLQuery("Accounts", "AttachReferral")()
	return s.WithinTransaction(ctx, func(ctx context.Context) error {
		conn := s.conn(ctx)

		locked := []struct {
			ID        string  `db:"id"`
			SponsorID *string `db:"sponsor_id"`
		}{}
		if err := pgxscan.Select(ctx, conn, &locked,
			`SELECT id, sponsor_id FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`,
			[]string{sponsorID.String(), accountID.String()}); err != nil {
			return err
		}

		var foundSponsor, foundAccount bool
		for _, l := range locked {
			switch types.AccountID(l.ID) {
			case sponsorID:
				foundSponsor = true
			case accountID:
				foundAccount = true
				if l.SponsorID != nil {
					return types.ErrSponsorAlreadySet
				}
			}
		}
		if !foundSponsor {
			return types.ErrNoSuchAccount(sponsorID)
		}
		if !foundAccount {
			return types.ErrNoSuchAccount(accountID)
		}

		var sponsorReferrals, accountReferrals int64
		if err := conn.QueryRow(ctx,
			`SELECT count(*) FILTER (WHERE sponsor_id = $1),
			        count(*) FILTER (WHERE sponsor_id = $2)
			 FROM accounts WHERE sponsor_id IN ($1, $2)`,
			sponsorID.String(), accountID.String()).Scan(&sponsorReferrals, &accountReferrals); err != nil {
			return err
		}
		if accountReferrals > 0 {
			return types.ErrAccountHasReferrals
		}
		if sponsorReferrals >= int64(limit) {
			return types.ErrSponsorIsFull(sponsorID)
		}

		_, err := conn.Exec(ctx,
			`UPDATE accounts SET sponsor_id = $1, referred_at = clock_timestamp() WHERE id = $2`,
			sponsorID.String(), accountID.String())
		return err
	})
}

// IncrementAggregates adds delta to the earnings of the account in a single
// statement.
func (s *SQLStore) IncrementAggregates(ctx context.Context, id types.AccountID, delta types.AggregateDelta) error {
	defer metrics.StartSQLQuery("Accounts", "IncrementAggregates")()
	tag, err := s.conn(ctx).Exec(ctx,
		`UPDATE accounts
		 SET total_earnings = total_earnings + $2,
		     level1_earnings = level1_earnings + $3,
		     level2_earnings = level2_earnings + $4
		 WHERE id = $1`,
		id.String(), delta.Total, delta.Level1, delta.Level2)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNoSuchAccount(id)
	}
	return nil
}
