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

	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
)

type PurchaseRecorded struct {
	*Base
	p types.Purchase
}

func NewPurchaseRecordedEvent(ctx context.Context, p *types.Purchase) *PurchaseRecorded {
	return &PurchaseRecorded{
		Base: newBase(ctx, PurchaseRecordedEvent),
		p:    *p,
	}
}

func (p PurchaseRecorded) Purchase() types.Purchase {
	return p.p
}

func (p PurchaseRecorded) IsAccount(id string) bool {
	return string(p.p.AccountID) == id
}

// CommissionPaid is sent once the commission record and the aggregate
// increment of its beneficiary are committed.
type CommissionPaid struct {
	*Base
	c             types.Commission
	purchaserName string
	productName   string
}

func NewCommissionPaidEvent(ctx context.Context, c *types.Commission, purchaserName, productName string) *CommissionPaid {
	return &CommissionPaid{
		Base:          newBase(ctx, CommissionPaidEvent),
		c:             *c,
		purchaserName: purchaserName,
		productName:   productName,
	}
}

func (c CommissionPaid) Commission() types.Commission {
	return c.c
}

func (c CommissionPaid) PurchaserName() string {
	return c.purchaserName
}

func (c CommissionPaid) ProductName() string {
	return c.productName
}

func (c CommissionPaid) IsAccount(id string) bool {
	return string(c.c.BeneficiaryID) == id
}

// AggregateDrift reports a mismatch between the cached aggregates of an
// account and the sum of its commission records.
type AggregateDrift struct {
	*Base
	accountID types.AccountID
	stored    types.AggregateDelta
	computed  types.AggregateDelta
}

func NewAggregateDriftEvent(ctx context.Context, accountID types.AccountID, stored, computed types.AggregateDelta) *AggregateDrift {
	return &AggregateDrift{
		Base:      newBase(ctx, AggregateDriftEvent),
		accountID: accountID,
		stored:    stored,
		computed:  computed,
	}
}

func (a AggregateDrift) AccountID() types.AccountID {
	return a.accountID
}

func (a AggregateDrift) Stored() types.AggregateDelta {
	return a.stored
}

func (a AggregateDrift) Computed() types.AggregateDelta {
	return a.computed
}

// TotalDrift is the computed total minus the stored one.
func (a AggregateDrift) TotalDrift() num.Decimal {
	return a.computed.Total.Sub(a.stored.Total)
}

func (a AggregateDrift) IsAccount(id string) bool {
	return string(a.accountID) == id
}
