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

package distribution

import (
	"context"
	"errors"
	"sync"
	"time"

	"code.tierpay.io/referral/core/commission"
	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// Engine records purchases and pays the commissions they trigger to the
// sponsors of the purchaser.
//
// Each level is paid in its own store transaction: the commission record is
// inserted if absent on (purchase, level) and, only when it was inserted, the
// beneficiary aggregates are incremented. Running the distribution twice for
// the same purchase therefore never pays twice.
type Engine struct {
	log         *logging.Logger
	store       LedgerStore
	sponsorship SponsorshipGraph
	broker      Broker
	timeService TimeService

	mu  sync.RWMutex
	cfg Config

	newID func() string
}

func NewEngine(
	log *logging.Logger,
	cfg Config,
	store LedgerStore,
	sponsorship SponsorshipGraph,
	broker Broker,
	timeService TimeService,
) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		log:         log,
		cfg:         cfg,
		store:       store,
		sponsorship: sponsorship,
		broker:      broker,
		timeService: timeService,
		newID:       uuid.NewString,
	}
}

// ReloadConf updates the internal configuration of the engine.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevelString()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}

	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

func (e *Engine) config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}

// RecordPurchaseAndDistribute validates and records the purchase, then pays
// up to two levels of commissions. When a level cannot be paid because the
// store keeps failing, the purchase stays recorded and the error wraps
// ErrStorageFailure. ResumeDistribution finishes the job.
func (e *Engine) RecordPurchaseAndDistribute(
	ctx context.Context,
	purchaserID types.AccountID,
	amount, profit num.Decimal,
	productName string,
) (*types.Purchase, []*types.Commission, error) {
	cfg := e.config()

	// stores keep two decimals, a more precise value would not read back
	// as written
	if !num.HasAtMostDecimals(amount, types.CurrencyDecimals) {
		metrics.PurchaseInc("rejected")
		return nil, nil, types.ErrInvalidPrecision("amount", amount)
	}
	if !num.HasAtMostDecimals(profit, types.CurrencyDecimals) {
		metrics.PurchaseInc("rejected")
		return nil, nil, types.ErrInvalidPrecision("profit", profit)
	}

	minimum := cfg.MinimumPurchaseAmount.Get()
	if amount.LessThan(minimum) {
		metrics.PurchaseInc("rejected")
		return nil, nil, types.ErrBelowMinimumPurchaseAmount(amount, minimum)
	}

	var purchaser *types.Account
	err := e.retry(ctx, cfg, "get-purchaser", func() (err error) {
		purchaser, err = e.store.GetAccount(ctx, purchaserID)
		return err
	})
	if err != nil {
		metrics.PurchaseInc("rejected")
		return nil, nil, err
	}

	purchase := &types.Purchase{
		ID:          types.PurchaseID(e.newID()),
		AccountID:   purchaserID,
		Amount:      amount,
		Profit:      profit,
		ProductName: productName,
		Status:      types.PurchaseStatusRecorded,
		CreatedAt:   e.timeService.GetTimeNow(),
	}

	if err := e.retry(ctx, cfg, "create-purchase", func() error {
		return e.store.CreatePurchase(ctx, purchase)
	}); err != nil {
		metrics.PurchaseInc("failed")
		return nil, nil, err
	}

	metrics.PurchaseInc("recorded")
	e.log.Debug("purchase recorded",
		logging.PurchaseID(purchase.ID.String()),
		logging.AccountID(purchaserID.String()),
		logging.Decimal("amount", amount),
	)
	e.broker.Send(events.NewPurchaseRecordedEvent(ctx, purchase))

	commissions, err := e.distribute(ctx, cfg, purchase, purchaser.Name)
	return purchase, commissions, err
}

// ResumeDistribution pays whatever levels of an already recorded purchase
// are still unpaid. The purchase is not validated again.
func (e *Engine) ResumeDistribution(ctx context.Context, purchaseID types.PurchaseID) ([]*types.Commission, error) {
	cfg := e.config()

	var purchase *types.Purchase
	if err := e.retry(ctx, cfg, "get-purchase", func() (err error) {
		purchase, err = e.store.GetPurchase(ctx, purchaseID)
		return err
	}); err != nil {
		return nil, err
	}

	purchaserName := ""
	var purchaser *types.Account
	err := e.retry(ctx, cfg, "get-purchaser", func() (err error) {
		purchaser, err = e.store.GetAccount(ctx, purchase.AccountID)
		return err
	})
	switch {
	case err == nil:
		purchaserName = purchaser.Name
	case errors.Is(err, types.ErrAccountNotFound):
		e.log.Warn("purchaser of a recorded purchase not found",
			logging.PurchaseID(purchaseID.String()),
			logging.AccountID(purchase.AccountID.String()),
		)
	default:
		return nil, err
	}

	return e.distribute(ctx, cfg, purchase, purchaserName)
}

func (e *Engine) distribute(ctx context.Context, cfg Config, purchase *types.Purchase, purchaserName string) ([]*types.Commission, error) {
	var ancestors []types.AccountID
	if err := e.retry(ctx, cfg, "ancestors", func() (err error) {
		ancestors, err = e.sponsorship.AncestorsUpTo(ctx, purchase.AccountID, types.MaxCommissionLevel)
		return err
	}); err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			e.log.Warn("purchaser not found, no commission paid",
				logging.PurchaseID(purchase.ID.String()),
				logging.AccountID(purchase.AccountID.String()),
			)
			return nil, nil
		}
		return nil, err
	}

	created := make([]*types.Commission, 0, len(ancestors))
	for i, beneficiary := range ancestors {
		level := types.CommissionLevel(i + 1)
		// zero amounts are recorded too, every ancestor gets a ledger line
		res := commission.Compute(purchase.Profit, level)

		c := &types.Commission{
			ID:            e.newID(),
			BeneficiaryID: beneficiary,
			SourceID:      purchase.AccountID,
			PurchaseID:    purchase.ID,
			Amount:        res.Amount,
			Level:         level,
			Percentage:    res.Percentage,
			CreatedAt:     e.timeService.GetTimeNow(),
		}

		inserted, err := e.payLevel(ctx, cfg, c)
		if err != nil {
			if errors.Is(err, types.ErrAccountNotFound) {
				e.log.Warn("beneficiary not found, level skipped",
					logging.PurchaseID(purchase.ID.String()),
					logging.AccountID(beneficiary.String()),
					logging.Int("level", int(level)),
				)
				continue
			}
			e.log.Error("could not pay commission",
				logging.PurchaseID(purchase.ID.String()),
				logging.Int("level", int(level)),
				logging.Error(err),
			)
			return created, err
		}
		if !inserted {
			e.log.Debug("commission already paid",
				logging.PurchaseID(purchase.ID.String()),
				logging.Int("level", int(level)),
			)
			continue
		}

		created = append(created, c)
		metrics.CommissionPaid(level.String(), res.Amount.InexactFloat64())
		e.broker.Send(events.NewCommissionPaidEvent(ctx, c, purchaserName, purchase.ProductName))
	}

	return created, nil
}

// payLevel inserts the record and increments the aggregates in one
// transaction, retrying on storage failures.
func (e *Engine) payLevel(ctx context.Context, cfg Config, c *types.Commission) (bool, error) {
	var inserted bool
	err := e.retry(ctx, cfg, "pay-level", func() error {
		inserted = false
		return e.store.WithinTransaction(ctx, func(ctx context.Context) error {
			ok, err := e.store.CreateCommission(ctx, c)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if err := e.store.IncrementAggregates(ctx, c.BeneficiaryID, types.DeltaForLevel(c.Level, c.Amount)); err != nil {
				return err
			}
			inserted = true
			return nil
		})
	})
	return inserted, err
}

// retry runs op until it succeeds, fails with a domain error, or the retry
// budget is spent. Exhausted retries are reported as storage failures.
func (e *Engine) retry(ctx context.Context, cfg Config, step string, op func() error) error {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = cfg.RetryInitialInterval.Get()
	expBackoff.MaxInterval = cfg.RetryMaxInterval.Get()
	expBackoff.MaxElapsedTime = cfg.RetryMaxElapsedTime.Get()

	operation := func() error {
		err := op()
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		metrics.DistributionRetryInc()
		e.log.Warn("storage step failed, retrying",
			logging.String("step", step),
			logging.Duration("next-attempt-in", next),
			logging.Error(err),
		)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(expBackoff, ctx), notify)
	if err == nil || isPermanent(err) {
		return err
	}
	return types.StorageFailure(err)
}

func isPermanent(err error) bool {
	return errors.Is(err, types.ErrAccountNotFound) ||
		errors.Is(err, types.ErrPurchaseNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
