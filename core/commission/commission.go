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

package commission

import (
	"fmt"

	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
)

var percentages = map[types.CommissionLevel]int64{
	types.CommissionLevel1: 5,
	types.CommissionLevel2: 1,
}

type Result struct {
	Amount     num.Decimal
	Percentage int64
}

// PercentageFor returns the rate paid at the given level. It panics on any
// level other than 1 or 2.
func PercentageFor(level types.CommissionLevel) int64 {
	pct, ok := percentages[level]
	if !ok {
		panic(fmt.Sprintf("unsupported commission level %d", level))
	}
	return pct
}

// Compute returns the commission owed at level for a purchase that made
// profit. The amount is rounded once, half to even, to the smallest currency
// unit. A negative profit pays nothing.
func Compute(profit num.Decimal, level types.CommissionLevel) Result {
	pct := PercentageFor(level)

	if !profit.IsPositive() {
		return Result{
			Amount:     num.DecimalZero(),
			Percentage: pct,
		}
	}

	return Result{
		Amount:     num.RoundBank(num.Percent(profit, pct), types.CurrencyDecimals),
		Percentage: pct,
	}
}
