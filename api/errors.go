package api

import (
	"errors"
	"net/http"

	"code.tierpay.io/referral/core/accounts"
	"code.tierpay.io/referral/core/types"
)

var (
	ErrMissingJWTSecret = errors.New("a jwt secret is required to start the api")
	ErrUnauthorized     = errors.New("not authorized")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrTooManyRequests  = errors.New("too many requests")
)

// Error is the body of every failed request.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e Error) Error() string {
	return e.Message
}

type classification struct {
	target error
	status int
	code   string
}

var classifications = []classification{
	{ErrInvalidRequest, http.StatusBadRequest, "invalid-request"},
	{ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{ErrTooManyRequests, http.StatusTooManyRequests, "too-many-requests"},
	{accounts.ErrInvalidRegistration, http.StatusBadRequest, "invalid-registration"},
	{accounts.ErrInvalidCredentials, http.StatusBadRequest, "invalid-credentials"},
	{accounts.ErrReferralCodeExhausted, http.StatusServiceUnavailable, "referral-code-exhausted"},
	{types.ErrEmailAlreadyRegistered, http.StatusBadRequest, "email-already-registered"},
	{types.ErrBelowMinimumPurchase, http.StatusBadRequest, "below-minimum-purchase"},
	{types.ErrTooManyDecimals, http.StatusBadRequest, "too-many-decimals"},
	{types.ErrReferralLimitExceeded, http.StatusBadRequest, "referral-limit-exceeded"},
	{types.ErrSponsorAlreadySet, http.StatusBadRequest, "sponsor-already-set"},
	{types.ErrAccountHasReferrals, http.StatusBadRequest, "account-has-referrals"},
	{types.ErrSelfSponsorship, http.StatusBadRequest, "self-sponsorship"},
	{types.ErrAccountNotFound, http.StatusNotFound, "account-not-found"},
	{types.ErrPurchaseNotFound, http.StatusNotFound, "purchase-not-found"},
	{types.ErrStorageFailure, http.StatusServiceUnavailable, "storage-failure"},
}

// classify maps err to a status and a body. Errors it does not know about
// are reported without their message.
func classify(err error) (int, Error, bool) {
	for _, c := range classifications {
		if errors.Is(err, c.target) {
			return c.status, Error{Message: err.Error(), Code: c.code}, true
		}
	}
	return http.StatusInternalServerError, Error{Message: "internal error", Code: "internal"}, false
}
