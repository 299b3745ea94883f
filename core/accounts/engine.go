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
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"code.tierpay.io/referral/core/events"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrReferralCodeExhausted  = errors.New("could not mint a unique referral code")
	ErrInvalidRegistration    = errors.New("invalid registration")
	ErrEmailAlreadyRegistered = types.ErrEmailAlreadyRegistered
)

var ErrInvalidField = func(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidRegistration, field, reason)
}

// Engine registers and authenticates accounts.
type Engine struct {
	log         *logging.Logger
	store       AccountStore
	sponsorship SponsorshipGraph
	tokens      TokenGenerator
	broker      Broker
	timeService TimeService

	mu  sync.RWMutex
	cfg Config

	newID func() string
}

func NewEngine(
	log *logging.Logger,
	cfg Config,
	store AccountStore,
	sponsorship SponsorshipGraph,
	tokens TokenGenerator,
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
		tokens:      tokens,
		broker:      broker,
		timeService: timeService,
		newID:       uuid.NewString,
	}
}

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

// Register creates an account. When referralCode matches an account, that
// account becomes the sponsor; an unknown code is ignored. Creating the
// account and attaching it happen in one transaction, so a sponsor that
// reached its referral limit makes the whole registration fail.
func (e *Engine) Register(ctx context.Context, name, email, password, referralCode string) (*types.Account, error) {
	cfg := e.config()

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateRegistration(cfg, name, email, password); err != nil {
		return nil, err
	}

	if _, err := e.store.GetAccountByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, types.ErrAccountNotFound) {
		return nil, types.StorageFailure(err)
	}

	sponsor, err := e.resolveSponsor(ctx, referralCode)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	account := &types.Account{
		ID:             types.AccountID(e.newID()),
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		TotalEarnings:  num.DecimalZero(),
		Level1Earnings: num.DecimalZero(),
		Level2Earnings: num.DecimalZero(),
		CreatedAt:      e.timeService.GetTimeNow(),
	}

	for attempt := 1; ; attempt++ {
		if attempt > cfg.ReferralCodeMaxAttempts {
			return nil, ErrReferralCodeExhausted
		}

		code, err := e.mintReferralCode(ctx)
		if err != nil {
			return nil, err
		}
		if code == "" {
			continue
		}
		account.ReferralCode = code

		err = e.store.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := e.store.CreateAccount(ctx, account); err != nil {
				return err
			}
			if sponsor == nil {
				return nil
			}
			return e.sponsorship.AttachReferral(ctx, sponsor.ID, account.ID)
		})
		if errors.Is(err, types.ErrReferralCodeTaken) {
			// lost a race on the code, try another one
			continue
		}
		if err != nil {
			return nil, classify(err)
		}
		break
	}

	if sponsor != nil {
		account.SponsorID = sponsor.ID
	}

	e.log.Info("account registered",
		logging.AccountID(account.ID.String()),
		logging.String("sponsor-id", account.SponsorID.String()),
	)
	e.broker.Send(events.NewAccountRegisteredEvent(ctx, account))
	return account, nil
}

// Authenticate returns the account matching the credentials.
func (e *Engine) Authenticate(ctx context.Context, email, password string) (*types.Account, error) {
	account, err := e.store.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, types.StorageFailure(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

func (e *Engine) resolveSponsor(ctx context.Context, referralCode string) (*types.Account, error) {
	referralCode = strings.ToUpper(strings.TrimSpace(referralCode))
	if referralCode == "" {
		return nil, nil
	}

	sponsor, err := e.store.GetAccountByReferralCode(ctx, referralCode)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			e.log.Debug("unknown referral code ignored", logging.String("referral-code", referralCode))
			return nil, nil
		}
		return nil, types.StorageFailure(err)
	}
	return sponsor, nil
}

// mintReferralCode returns a code not known by the store, or an empty
// string when the generated one is already taken.
func (e *Engine) mintReferralCode(ctx context.Context) (string, error) {
	code, err := e.tokens.Generate()
	if err != nil {
		return "", fmt.Errorf("could not generate referral code: %w", err)
	}

	exists, err := e.store.ReferralCodeExists(ctx, code)
	if err != nil {
		return "", types.StorageFailure(err)
	}
	if exists {
		e.log.Debug("referral code collision", logging.String("referral-code", code))
		return "", nil
	}
	return code, nil
}

func validateRegistration(cfg Config, name, email, password string) error {
	if name == "" {
		return ErrInvalidField("name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidField("email", "is not valid")
	}
	if len(password) < cfg.MinPasswordLength {
		return ErrInvalidField("password", fmt.Sprintf("must be at least %d characters", cfg.MinPasswordLength))
	}
	return nil
}

func classify(err error) error {
	for _, target := range []error{
		types.ErrReferralLimitExceeded,
		types.ErrEmailAlreadyRegistered,
		types.ErrSponsorAlreadySet,
		types.ErrAccountHasReferrals,
		types.ErrAccountNotFound,
		types.ErrStorageFailure,
	} {
		if errors.Is(err, target) {
			return err
		}
	}
	return types.StorageFailure(err)
}
