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
	"strconv"
	"time"

	"code.tierpay.io/referral/libs/num"
)

type CommissionLevel uint8

const (
	CommissionLevel1 CommissionLevel = 1
	CommissionLevel2 CommissionLevel = 2

	// MaxCommissionLevel is the deepest ancestor paid on a purchase.
	MaxCommissionLevel = 2
)

func (l CommissionLevel) String() string {
	return strconv.Itoa(int(l))
}

func (l CommissionLevel) IsValid() bool {
	return l == CommissionLevel1 || l == CommissionLevel2
}

// Commission is the immutable record of one payout, triggered by one
// purchase, at one level. (PurchaseID, Level) is unique.
type Commission struct {
	ID            string
	BeneficiaryID AccountID
	SourceID      AccountID
	PurchaseID    PurchaseID
	Amount        num.Decimal
	Level         CommissionLevel
	Percentage    int64
	CreatedAt     time.Time
}

type CommissionKey struct {
	PurchaseID PurchaseID
	Level      CommissionLevel
}

func (c *Commission) Key() CommissionKey {
	return CommissionKey{PurchaseID: c.PurchaseID, Level: c.Level}
}

type EarningsSummary struct {
	Total            num.Decimal
	Level1Total      num.Decimal
	Level2Total      num.Decimal
	TransactionCount uint64
}

// SummarizeCommissions computes the summary by summation over the records.
func SummarizeCommissions(commissions []*Commission) EarningsSummary {
	summary := EarningsSummary{
		Total:       num.DecimalZero(),
		Level1Total: num.DecimalZero(),
		Level2Total: num.DecimalZero(),
	}
	for _, c := range commissions {
		summary.Total = summary.Total.Add(c.Amount)
		switch c.Level {
		case CommissionLevel1:
			summary.Level1Total = summary.Level1Total.Add(c.Amount)
		case CommissionLevel2:
			summary.Level2Total = summary.Level2Total.Add(c.Amount)
		}
		summary.TransactionCount++
	}
	return summary
}
