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

package accounts

import (
	"context"
	"time"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.tierpay.io/referral/core/accounts AccountStore,SponsorshipGraph,TokenGenerator,Broker,TimeService

type AccountStore interface {
	CreateAccount(ctx context.Context, a *types.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*types.Account, error)
	GetAccountByReferralCode(ctx context.Context, code string) (*types.Account, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	WithinTransaction(ctx context.Context, fn func(context.Context) error) error
}

// SponsorshipGraph links a new account to its sponsor.
type SponsorshipGraph interface {
	AttachReferral(ctx context.Context, sponsorID, accountID types.AccountID) error
}

// TokenGenerator mints referral codes. Codes don't need to be unique, the
// engine checks them against the store.
type TokenGenerator interface {
	Generate() (string, error)
}

// Broker is used to notify new accounts.
type Broker interface {
	Send(event events.Event)
}

type TimeService interface {
	GetTimeNow() time.Time
}
