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

package sponsorship

import (
	"context"
	"time"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.tierpay.io/referral/core/sponsorship AccountStore,Broker,TimeService

// AccountStore holds the sponsorship links. AttachReferral must be atomic:
// the capacity check and the link happen in a single conditional update.
type AccountStore interface {
	GetAccount(ctx context.Context, id types.AccountID) (*types.Account, error)
	ListAccountsBySponsor(ctx context.Context, sponsorID types.AccountID) ([]*types.Account, error)
	AttachReferral(ctx context.Context, sponsorID, accountID types.AccountID, limit int) error
}

// Broker is used to notify new sponsorship links.
type Broker interface {
	Send(event events.Event)
}

// TimeService is used to time stamp the links.
type TimeService interface {
	GetTimeNow() time.Time
}
