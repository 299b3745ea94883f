// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package distribution

import (
	"context"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/metrics"
)

// Drift compares the cached aggregates of an account with the sum of the
// commissions paid to it.
type Drift struct {
	AccountID types.AccountID
	Stored    types.AggregateDelta
	Computed  types.AggregateDelta
	Records   uint64
}

func (d *Drift) HasDrift() bool {
	return !d.Stored.Total.Equal(d.Computed.Total) ||
		!d.Stored.Level1.Equal(d.Computed.Level1) ||
		!d.Stored.Level2.Equal(d.Computed.Level2)
}

// Reconcile recomputes the earnings of the account from its commission
// records. Any drift is logged and notified, the stored aggregates are left
// untouched.
func (e *Engine) Reconcile(ctx context.Context, accountID types.AccountID) (*Drift, error) {
	cfg := e.config()

	var account *types.Account
	if err := e.retry(ctx, cfg, "reconcile-account", func() (err error) {
		account, err = e.store.GetAccount(ctx, accountID)
		return err
	}); err != nil {
		return nil, err
	}

	var summary types.EarningsSummary
	if err := e.retry(ctx, cfg, "reconcile-sum", func() (err error) {
		summary, err = e.store.SumCommissions(ctx, accountID)
		return err
	}); err != nil {
		return nil, err
	}

	drift := &Drift{
		AccountID: accountID,
		Stored: types.AggregateDelta{
			Total:  account.TotalEarnings,
			Level1: account.Level1Earnings,
			Level2: account.Level2Earnings,
		},
		Computed: types.AggregateDelta{
			Total:  summary.Total,
			Level1: summary.Level1Total,
			Level2: summary.Level2Total,
		},
		Records: summary.TransactionCount,
	}

	if drift.HasDrift() {
		metrics.AggregateDriftInc()
		e.log.Warn("aggregates do not match commission records",
			logging.AccountID(accountID.String()),
			logging.Decimal("stored-total", drift.Stored.Total),
			logging.Decimal("computed-total", drift.Computed.Total),
			logging.Uint64("records", drift.Records),
		)
		e.broker.Send(events.NewAggregateDriftEvent(ctx, accountID, drift.Stored, drift.Computed))
	}

	return drift, nil
}
