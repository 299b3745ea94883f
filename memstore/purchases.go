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

	"code.tierpay.io/referral/core/types"
)

func (s *Store) CreatePurchase(ctx context.Context, p *types.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[p.AccountID]; !ok {
		return types.ErrNoSuchAccount(p.AccountID)
	}
	// a retried insert of a purchase already written is a no-op
	if _, ok := s.purchases[p.ID]; ok {
		return nil
	}
	cpy := *p
	s.purchases[p.ID] = &cpy

	journal(ctx, func() {
		delete(s.purchases, p.ID)
	})
	return nil
}

func (s *Store) GetPurchase(_ context.Context, id types.PurchaseID) (*types.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[id]
	if !ok {
		return nil, types.ErrNoSuchPurchase(id)
	}
	cpy := *p
	return &cpy, nil
}

// ListPurchasesByAccount returns the purchases of the account, newest first.
func (s *Store) ListPurchasesByAccount(_ context.Context, id types.AccountID) ([]*types.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*types.Purchase{}
	for _, p := range s.purchases {
		if p.AccountID == id {
			cpy := *p
			out = append(out, &cpy)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
