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

package memstore

import (
	"context"
	"sort"
	"strings"

	"code.tierpay.io/referral/core/types"

	"golang.org/x/exp/slices"
)

func (s *Store) CreateAccount(ctx context.Context, a *types.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(a.Email)
	if _, ok := s.emails[email]; ok {
		return types.ErrEmailAlreadyRegistered
	}
	if _, ok := s.codes[a.ReferralCode]; ok {
		return types.ErrReferralCodeTaken
	}

	cpy := a.Clone()
	// referrals are only ever added through AttachReferral
	cpy.SponsorID = ""
	cpy.DirectReferrals = nil
	s.accounts[a.ID] = cpy
	s.emails[email] = a.ID
	s.codes[a.ReferralCode] = a.ID

	journal(ctx, func() {
		delete(s.accounts, a.ID)
		delete(s.emails, email)
		delete(s.codes, a.ReferralCode)
	})
	return nil
}

func (s *Store) GetAccount(_ context.Context, id types.AccountID) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, types.ErrNoSuchAccount(id)
	}
	return a.Clone(), nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, types.ErrAccountNotFound
	}
	return s.accounts[id].Clone(), nil
}

func (s *Store) GetAccountByReferralCode(_ context.Context, code string) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.codes[code]
	if !ok {
		return nil, types.ErrAccountNotFound
	}
	return s.accounts[id].Clone(), nil
}

func (s *Store) ReferralCodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.codes[code]
	return ok, nil
}

// ListAccountsBySponsor returns the direct referrals of the sponsor, oldest
// first.
func (s *Store) ListAccountsBySponsor(_ context.Context, sponsorID types.AccountID) ([]*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sponsor, ok := s.accounts[sponsorID]
	if !ok {
		return nil, types.ErrNoSuchAccount(sponsorID)
	}
	out := make([]*types.Account, 0, len(sponsor.DirectReferrals))
	for _, id := range sponsor.DirectReferrals {
		if a, ok := s.accounts[id]; ok {
			out = append(out, a.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// AttachReferral adds the account to the sponsor's referrals, as long as
// the sponsor has fewer than limit referrals and the account has no sponsor.
func (s *Store) AttachReferral(ctx context.Context, sponsorID, accountID types.AccountID, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sponsor, ok := s.accounts[sponsorID]
	if !ok {
		return types.ErrNoSuchAccount(sponsorID)
	}
	account, ok := s.accounts[accountID]
	if !ok {
		return types.ErrNoSuchAccount(accountID)
	}
	if account.HasSponsor() {
		return types.ErrSponsorAlreadySet
	}
	if len(account.DirectReferrals) > 0 {
		return types.ErrAccountHasReferrals
	}
	if len(sponsor.DirectReferrals) >= limit {
		return types.ErrSponsorIsFull(sponsorID)
	}

	sponsor.DirectReferrals = append(sponsor.DirectReferrals, accountID)
	account.SponsorID = sponsorID

	journal(ctx, func() {
		if idx := slices.Index(sponsor.DirectReferrals, accountID); idx >= 0 {
			sponsor.DirectReferrals = slices.Delete(sponsor.DirectReferrals, idx, idx+1)
		}
		account.SponsorID = ""
	})
	return nil
}

// IncrementAggregates adds delta to the earnings of the account.
func (s *Store) IncrementAggregates(ctx context.Context, id types.AccountID, delta types.AggregateDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return types.ErrNoSuchAccount(id)
	}
	a.TotalEarnings = a.TotalEarnings.Add(delta.Total)
	a.Level1Earnings = a.Level1Earnings.Add(delta.Level1)
	a.Level2Earnings = a.Level2Earnings.Add(delta.Level2)

	journal(ctx, func() {
		a.TotalEarnings = a.TotalEarnings.Sub(delta.Total)
		a.Level1Earnings = a.Level1Earnings.Sub(delta.Level1)
		a.Level2Earnings = a.Level2Earnings.Sub(delta.Level2)
	})
	return nil
}
