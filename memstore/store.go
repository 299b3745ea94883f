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
	"sync"

	"code.tierpay.io/referral/core/types"
)

// Store keeps accounts, purchases and commissions in memory. It offers the
// same guarantees as the SQL store for a single process: transactions are
// serialised and rolled back on error, aggregates are only incremented under
// the store lock.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	accounts     map[types.AccountID]*types.Account
	emails       map[string]types.AccountID
	codes        map[string]types.AccountID
	purchases    map[types.PurchaseID]*types.Purchase
	commissions  map[types.CommissionKey]*types.Commission
	beneficiated map[types.AccountID][]types.CommissionKey
}

func New() *Store {
	return &Store{
		accounts:     map[types.AccountID]*types.Account{},
		emails:       map[string]types.AccountID{},
		codes:        map[string]types.AccountID{},
		purchases:    map[types.PurchaseID]*types.Purchase{},
		commissions:  map[types.CommissionKey]*types.Commission{},
		beneficiated: map[types.AccountID][]types.CommissionKey{},
	}
}

type txKey struct{}

type tx struct {
	undo []func()
}

// WithinTransaction runs fn in a transaction. Nested calls join the
// enclosing transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &tx{}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		s.mu.Lock()
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// journal records how to revert a change, must be called with mu held.
func journal(ctx context.Context, undo func()) {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		t.undo = append(t.undo, undo)
	}
}
