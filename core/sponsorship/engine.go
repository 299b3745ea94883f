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
	"errors"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/logging"
)

const namedLogger = "sponsorship"

// Engine maintains the sponsorship forest. Links are only ever added, an
// account gets its sponsor once and never changes it.
type Engine struct {
	log         *logging.Logger
	store       AccountStore
	broker      Broker
	timeService TimeService
}

func NewEngine(log *logging.Logger, store AccountStore, broker Broker, timeService TimeService) *Engine {
	return &Engine{
		log:         log.Named(namedLogger),
		store:       store,
		broker:      broker,
		timeService: timeService,
	}
}

// AttachReferral makes sponsorID the sponsor of accountID.
func (e *Engine) AttachReferral(ctx context.Context, sponsorID, accountID types.AccountID) error {
	if sponsorID == accountID {
		return types.ErrSelfSponsorship
	}

	if err := e.store.AttachReferral(ctx, sponsorID, accountID, types.MaxDirectReferrals); err != nil {
		if isDomainError(err) {
			return err
		}
		return types.StorageFailure(err)
	}

	e.log.Debug("referral attached",
		logging.String("sponsor-id", sponsorID.String()),
		logging.AccountID(accountID.String()),
	)
	e.broker.Send(events.NewReferralAttachedEvent(ctx, sponsorID, accountID, e.timeService.GetTimeNow()))
	return nil
}

// AncestorsUpTo returns the sponsor chain of accountID, nearest first, with
// at most n entries. The walk stops at a root account, at an ancestor that
// no longer exists, or on a loop.
func (e *Engine) AncestorsUpTo(ctx context.Context, accountID types.AccountID, n int) ([]types.AccountID, error) {
	account, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return nil, err
		}
		return nil, types.StorageFailure(err)
	}

	ancestors := make([]types.AccountID, 0, n)
	visited := map[types.AccountID]struct{}{accountID: {}}
	current := account.SponsorID
	for len(ancestors) < n && current != "" {
		if _, ok := visited[current]; ok {
			e.log.Error("sponsorship loop detected",
				logging.AccountID(accountID.String()),
				logging.String("ancestor-id", current.String()),
			)
			break
		}

		ancestor, err := e.store.GetAccount(ctx, current)
		if err != nil {
			if errors.Is(err, types.ErrAccountNotFound) {
				e.log.Warn("sponsor chain truncated, ancestor not found",
					logging.AccountID(accountID.String()),
					logging.String("ancestor-id", current.String()),
				)
				break
			}
			return nil, types.StorageFailure(err)
		}

		ancestors = append(ancestors, current)
		visited[current] = struct{}{}
		current = ancestor.SponsorID
	}

	return ancestors, nil
}

// DirectReferrals lists the accounts sponsored by accountID.
func (e *Engine) DirectReferrals(ctx context.Context, accountID types.AccountID) ([]*types.Account, error) {
	referrals, err := e.store.ListAccountsBySponsor(ctx, accountID)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return nil, err
		}
		return nil, types.StorageFailure(err)
	}
	return referrals, nil
}

// SecondLevelReferrals lists the accounts sponsored by the direct referrals
// of accountID.
func (e *Engine) SecondLevelReferrals(ctx context.Context, accountID types.AccountID) ([]*types.Account, error) {
	direct, err := e.DirectReferrals(ctx, accountID)
	if err != nil {
		return nil, err
	}

	out := []*types.Account{}
	for _, d := range direct {
		referrals, err := e.DirectReferrals(ctx, d.ID)
		if err != nil {
			if errors.Is(err, types.ErrAccountNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, referrals...)
	}
	return out, nil
}

func isDomainError(err error) bool {
	for _, target := range []error{
		types.ErrReferralLimitExceeded,
		types.ErrSponsorAlreadySet,
		types.ErrAccountHasReferrals,
		types.ErrAccountNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
