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

package types

import (
	"time"

	"code.tierpay.io/referral/libs/num"

	"golang.org/x/exp/slices"
)

// MaxDirectReferrals is the number of accounts a single sponsor can refer.
const MaxDirectReferrals = 8

type AccountID string

func (a AccountID) String() string {
	return string(a)
}

type Account struct {
	ID           AccountID
	Name         string
	Email        string
	PasswordHash string
	ReferralCode string

	// SponsorID is empty for accounts at the root of a sponsorship tree. It
	// is set once, when the account is created.
	SponsorID       AccountID
	DirectReferrals []AccountID

	TotalEarnings  num.Decimal
	Level1Earnings num.Decimal
	Level2Earnings num.Decimal

	CreatedAt time.Time
}

func (a *Account) HasSponsor() bool {
	return a.SponsorID != ""
}

func (a *Account) CanReferMore() bool {
	return len(a.DirectReferrals) < MaxDirectReferrals
}

func (a *Account) Clone() *Account {
	cpy := *a
	cpy.DirectReferrals = slices.Clone(a.DirectReferrals)
	return &cpy
}

// AggregatesConsistent tells whether the cached totals add up.
func (a *Account) AggregatesConsistent() bool {
	return a.TotalEarnings.Equal(a.Level1Earnings.Add(a.Level2Earnings))
}

// AggregateDelta is applied atomically to the earnings of an account.
type AggregateDelta struct {
	Total  num.Decimal
	Level1 num.Decimal
	Level2 num.Decimal
}

// DeltaForLevel builds the increment matching a commission paid at the
// given level.
func DeltaForLevel(level CommissionLevel, amount num.Decimal) AggregateDelta {
	delta := AggregateDelta{
		Total:  amount,
		Level1: num.DecimalZero(),
		Level2: num.DecimalZero(),
	}
	switch level {
	case CommissionLevel1:
		delta.Level1 = amount
	case CommissionLevel2:
		delta.Level2 = amount
	}
	return delta
}

// ReferralStats is the view a sponsor gets of its network.
type ReferralStats struct {
	ReferralCode         string
	TotalEarnings        num.Decimal
	Level1Earnings       num.Decimal
	Level2Earnings       num.Decimal
	DirectReferrals      []*Account
	SecondLevelReferrals []*Account
	RecentCommissions    []*Commission
}
