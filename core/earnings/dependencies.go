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

package earnings

import (
	"context"

	"code.tierpay.io/referral/core/types"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.tierpay.io/referral/core/earnings Store,SponsorshipGraph

// Store is the read side of the ledger.
type Store interface {
	GetAccount(ctx context.Context, id types.AccountID) (*types.Account, error)
	ListPurchasesByAccount(ctx context.Context, id types.AccountID) ([]*types.Purchase, error)
	ListCommissionsByBeneficiary(ctx context.Context, id types.AccountID, limit int) ([]*types.Commission, error)
	SumCommissions(ctx context.Context, id types.AccountID) (types.EarningsSummary, error)
}

type SponsorshipGraph interface {
	DirectReferrals(ctx context.Context, accountID types.AccountID) ([]*types.Account, error)
	SecondLevelReferrals(ctx context.Context, accountID types.AccountID) ([]*types.Account, error)
}
