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
	"time"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.tierpay.io/referral/core/distribution LedgerStore,SponsorshipGraph,Broker,TimeService

// LedgerStore persists purchases, commission records and the earnings
// aggregates of the accounts.
type LedgerStore interface {
	CreatePurchase(ctx context.Context, p *types.Purchase) error
	GetPurchase(ctx context.Context, id types.PurchaseID) (*types.Purchase, error)
	// CreateCommission inserts the record unless one exists for the same
	// purchase and level, and reports whether it was inserted.
	CreateCommission(ctx context.Context, c *types.Commission) (bool, error)
	// IncrementAggregates must add delta in a single atomic update.
	IncrementAggregates(ctx context.Context, id types.AccountID, delta types.AggregateDelta) error
	GetAccount(ctx context.Context, id types.AccountID) (*types.Account, error)
	SumCommissions(ctx context.Context, id types.AccountID) (types.EarningsSummary, error)
	WithinTransaction(ctx context.Context, fn func(context.Context) error) error
}

// SponsorshipGraph resolves the beneficiaries of a purchase.
type SponsorshipGraph interface {
	AncestorsUpTo(ctx context.Context, id types.AccountID, n int) ([]types.AccountID, error)
}

// Broker is used to notify recorded purchases and paid commissions.
type Broker interface {
	Send(event events.Event)
}

// TimeService is used to time stamp purchases and commissions.
type TimeService interface {
	GetTimeNow() time.Time
}
