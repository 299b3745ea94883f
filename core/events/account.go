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

package events

import (
	"context"
	"time"

	"code.tierpay.io/referral/core/types"
)

type AccountRegistered struct {
	*Base
	a types.Account
}

func NewAccountRegisteredEvent(ctx context.Context, a *types.Account) *AccountRegistered {
	return &AccountRegistered{
		Base: newBase(ctx, AccountRegisteredEvent),
		a:    *a.Clone(),
	}
}

func (a AccountRegistered) Account() types.Account {
	return a.a
}

func (a AccountRegistered) IsAccount(id string) bool {
	return string(a.a.ID) == id
}

type ReferralAttached struct {
	*Base
	sponsorID  types.AccountID
	accountID  types.AccountID
	attachedAt time.Time
}

func NewReferralAttachedEvent(ctx context.Context, sponsorID, accountID types.AccountID, attachedAt time.Time) *ReferralAttached {
	return &ReferralAttached{
		Base:       newBase(ctx, ReferralAttachedEvent),
		sponsorID:  sponsorID,
		accountID:  accountID,
		attachedAt: attachedAt,
	}
}

func (r ReferralAttached) SponsorID() types.AccountID {
	return r.sponsorID
}

func (r ReferralAttached) AccountID() types.AccountID {
	return r.accountID
}

func (r ReferralAttached) AttachedAt() time.Time {
	return r.attachedAt
}

func (r ReferralAttached) IsAccount(id string) bool {
	return string(r.sponsorID) == id || string(r.accountID) == id
}
