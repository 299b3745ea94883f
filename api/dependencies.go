package api

import (
	"context"

	"code.tierpay.io/referral/core/earnings"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/libs/num"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.tierpay.io/referral/api AccountService,PurchaseService,QueryService

type AccountService interface {
	Register(ctx context.Context, name, email, password, referralCode string) (*types.Account, error)
	Authenticate(ctx context.Context, email, password string) (*types.Account, error)
}

type PurchaseService interface {
	RecordPurchaseAndDistribute(ctx context.Context, purchaserID types.AccountID, amount, profit num.Decimal, productName string) (*types.Purchase, []*types.Commission, error)
}

type QueryService interface {
	Purchases(ctx context.Context, accountID types.AccountID) ([]*types.Purchase, error)
	Earnings(ctx context.Context, beneficiaryID types.AccountID) (*earnings.Report, error)
	ReferralStats(ctx context.Context, accountID types.AccountID) (*types.ReferralStats, error)
	Profile(ctx context.Context, accountID types.AccountID) (*earnings.Profile, error)
}
