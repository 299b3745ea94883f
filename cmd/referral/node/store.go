package node

import (
	"fmt"

	"code.tierpay.io/referral/config"
	"code.tierpay.io/referral/core/accounts"
	"code.tierpay.io/referral/core/distribution"
	"code.tierpay.io/referral/core/earnings"
	"code.tierpay.io/referral/core/sponsorship"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/memstore"
	"code.tierpay.io/referral/sqlstore"
)

// Store is everything the engines need from persistence.
type Store interface {
	accounts.AccountStore
	distribution.LedgerStore
	sponsorship.AccountStore
	earnings.Store
}

var (
	_ Store = (*memstore.Store)(nil)
	_ Store = (*sqlstore.SQLStore)(nil)
)

// OpenStore returns the postgres store when it is enabled, the in memory
// one otherwise. stop releases the store.
func OpenStore(log *logging.Logger, cfg config.Config, home string) (store Store, stop func(), err error) {
	if !cfg.SQLStore.Enabled {
		log.Warn("sql store disabled, nothing will survive a restart")
		return memstore.New(), func() {}, nil
	}

	s, err := sqlstore.InitialiseStorage(log, cfg.SQLStore, home)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't initialise the sql store: %w", err)
	}
	return s, func() {
		if err := s.Stop(); err != nil {
			log.Error("couldn't stop the sql store", logging.Error(err))
		}
	}, nil
}
