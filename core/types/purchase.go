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
)

// CurrencyDecimals is the number of decimals of the smallest currency unit.
const CurrencyDecimals int32 = 2

type PurchaseID string

func (p PurchaseID) String() string {
	return string(p)
}

type PurchaseStatus int

const (
	PurchaseStatusUnspecified PurchaseStatus = iota
	PurchaseStatusPendingValidation
	PurchaseStatusRecorded
)

func (s PurchaseStatus) String() string {
	switch s {
	case PurchaseStatusPendingValidation:
		return "pending-validation"
	case PurchaseStatusRecorded:
		return "recorded"
	default:
		return "unspecified"
	}
}

type Purchase struct {
	ID          PurchaseID
	AccountID   AccountID
	Amount      num.Decimal
	Profit      num.Decimal
	ProductName string
	Status      PurchaseStatus
	CreatedAt   time.Time
}
