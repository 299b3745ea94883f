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

package num

import (
	"github.com/shopspring/decimal"
)

type Decimal = decimal.Decimal

var (
	dzero = decimal.Zero
	d1    = decimal.NewFromInt(1)
	d100  = decimal.NewFromInt(100)
)

func MustDecimalFromString(f string) Decimal {
	d, err := DecimalFromString(f)
	if err != nil {
		panic(err)
	}
	return d
}

func DecimalOne() Decimal {
	return d1
}

func DecimalZero() Decimal {
	return dzero
}

func DecimalFromInt64(i int64) Decimal {
	return decimal.NewFromInt(i)
}

func DecimalFromFloat(v float64) Decimal {
	return decimal.NewFromFloat(v)
}

func DecimalFromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

func MaxD(a, b Decimal) Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func MinD(a, b Decimal) Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Percent returns value * pct / 100, unrounded.
func Percent(value Decimal, pct int64) Decimal {
	return value.Mul(decimal.NewFromInt(pct)).Div(d100)
}

// RoundBank rounds to the given number of decimal places using banker's
// rounding (half to even).
func RoundBank(value Decimal, places int32) Decimal {
	return value.RoundBank(places)
}

// HasAtMostDecimals reports whether value needs no more than places decimals.
// Trailing zeros don't count.
func HasAtMostDecimals(value Decimal, places int32) bool {
	return value.Equal(value.Truncate(places))
}

// Sum adds all values together.
func Sum(values ...Decimal) Decimal {
	total := dzero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
