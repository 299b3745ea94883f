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

package types

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrBelowMinimumPurchase is returned when the purchase amount is under
	// the configured floor. Nothing is written.
	ErrBelowMinimumPurchase = errors.New("purchase amount is below the minimum")
	// ErrTooManyDecimals is returned when a purchase amount or profit is more
	// precise than the currency. Nothing is written.
	ErrTooManyDecimals = errors.New("value has more decimals than the currency")
	// ErrReferralLimitExceeded is returned when a sponsor already has the
	// maximum number of direct referrals.
	ErrReferralLimitExceeded = errors.New("sponsor has reached the maximum number of referrals")
	// ErrAccountNotFound is returned by stores when an account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrPurchaseNotFound is returned by stores when a purchase doesn't exist.
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrStorageFailure wraps transient storage errors. The operation is safe
	// to retry.
	ErrStorageFailure = errors.New("storage failure")
	// ErrSponsorAlreadySet is returned when attaching an account that already
	// has a sponsor.
	ErrSponsorAlreadySet = errors.New("account already has a sponsor")
	// ErrSelfSponsorship is returned when an account tries to sponsor itself.
	ErrSelfSponsorship = errors.New("account cannot sponsor itself")
	// ErrAccountHasReferrals is returned when attaching an account that
	// already sponsors others.
	ErrAccountHasReferrals = errors.New("account already has referrals")
	// ErrEmailAlreadyRegistered is returned by stores on a duplicate email.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrReferralCodeTaken is returned by stores on a duplicate referral code.
	ErrReferralCodeTaken = errors.New("referral code already taken")
	// ErrNotificationDeliveryFailure is never returned to callers of the
	// distribution, only logged.
	ErrNotificationDeliveryFailure = errors.New("notification delivery failure")
)

var ErrBelowMinimumPurchaseAmount = func(amount, minimum fmt.Stringer) error {
	return errors.Wrapf(ErrBelowMinimumPurchase, "got %s, minimum is %s", amount.String(), minimum.String())
}

var ErrInvalidPrecision = func(field string, value fmt.Stringer) error {
	return errors.Wrapf(ErrTooManyDecimals, "%s %s allows at most %d decimals", field, value.String(), CurrencyDecimals)
}

var ErrNoSuchAccount = func(id AccountID) error {
	return errors.Wrapf(ErrAccountNotFound, "account %q", id)
}

var ErrNoSuchPurchase = func(id PurchaseID) error {
	return errors.Wrapf(ErrPurchaseNotFound, "purchase %q", id)
}

var ErrSponsorIsFull = func(sponsor AccountID) error {
	return errors.Wrapf(ErrReferralLimitExceeded, "%q already has %d referrals", sponsor, MaxDirectReferrals)
}

// StorageFailure marks err as transient.
func StorageFailure(err error) error {
	if err == nil || errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}
