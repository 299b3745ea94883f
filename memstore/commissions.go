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

	"golang.org/x/exp/slices"
)

// CreateCommission inserts the record unless one already exists for the
// same purchase and level, it reports whether the record was inserted.
func (s *Store) CreateCommission(ctx context.Context, c *types.Commission) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := c.Key()
	if _, ok := s.commissions[key]; ok {
		return false, nil
	}
	cpy := *c
	s.commissions[key] = &cpy
	s.beneficiated[c.BeneficiaryID] = append(s.beneficiated[c.BeneficiaryID], key)

	journal(ctx, func() {
		delete(s.commissions, key)
		keys := s.beneficiated[c.BeneficiaryID]
		if idx := slices.Index(keys, key); idx >= 0 {
			s.beneficiated[c.BeneficiaryID] = slices.Delete(keys, idx, idx+1)
		}
	})
	return true, nil
}

// ListCommissionsByBeneficiary returns the commissions paid to the account,
// newest first. A limit of 0 returns all of them.
func (s *Store) ListCommissionsByBeneficiary(_ context.Context, id types.AccountID, limit int) ([]*types.Commission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.beneficiated[id]
	out := make([]*types.Commission, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		cpy := *s.commissions[keys[i]]
		out = append(out, &cpy)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SumCommissions(ctx context.Context, id types.AccountID) (types.EarningsSummary, error) {
	commissions, err := s.ListCommissionsByBeneficiary(ctx, id, 0)
	if err != nil {
		return types.EarningsSummary{}, err
	}
	return types.SummarizeCommissions(commissions), nil
}
