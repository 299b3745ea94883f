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

package earnings

import (
	"context"
	"errors"

	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/logging"
)

const (
	namedLogger = "earnings"

	// RecentCommissionsLimit bounds the commissions listed in referral stats.
	RecentCommissionsLimit = 10
)

// Report lists every commission paid to a beneficiary. The summary is
// computed from the records, never from the cached aggregates.
type Report struct {
	Summary     types.EarningsSummary
	Commissions []*types.Commission
	// SourceNames maps the purchaser of each commission to its display name.
	SourceNames map[types.AccountID]string
}

type Profile struct {
	Account         *types.Account
	DirectReferrals []*types.Account
}

// Service answers the read-only queries of the API.
type Service struct {
	log         *logging.Logger
	store       Store
	sponsorship SponsorshipGraph
}

func NewService(log *logging.Logger, store Store, sponsorship SponsorshipGraph) *Service {
	return &Service{
		log:         log.Named(namedLogger),
		store:       store,
		sponsorship: sponsorship,
	}
}

// Purchases returns the purchases of accountID, newest first.
func (s *Service) Purchases(ctx context.Context, accountID types.AccountID) ([]*types.Purchase, error) {
	if _, err := s.account(ctx, accountID); err != nil {
		return nil, err
	}

	purchases, err := s.store.ListPurchasesByAccount(ctx, accountID)
	if err != nil {
		return nil, types.StorageFailure(err)
	}
	return purchases, nil
}

func (s *Service) Earnings(ctx context.Context, beneficiaryID types.AccountID) (*Report, error) {
	if _, err := s.account(ctx, beneficiaryID); err != nil {
		return nil, err
	}

	commissions, err := s.store.ListCommissionsByBeneficiary(ctx, beneficiaryID, 0)
	if err != nil {
		return nil, types.StorageFailure(err)
	}
	summary, err := s.store.SumCommissions(ctx, beneficiaryID)
	if err != nil {
		return nil, types.StorageFailure(err)
	}

	return &Report{
		Summary:     summary,
		Commissions: commissions,
		SourceNames: s.sourceNames(ctx, commissions),
	}, nil
}

func (s *Service) ReferralStats(ctx context.Context, accountID types.AccountID) (*types.ReferralStats, error) {
	account, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}

	direct, err := s.sponsorship.DirectReferrals(ctx, accountID)
	if err != nil {
		return nil, err
	}
	second, err := s.sponsorship.SecondLevelReferrals(ctx, accountID)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.ListCommissionsByBeneficiary(ctx, accountID, RecentCommissionsLimit)
	if err != nil {
		return nil, types.StorageFailure(err)
	}

	return &types.ReferralStats{
		ReferralCode:         account.ReferralCode,
		TotalEarnings:        account.TotalEarnings,
		Level1Earnings:       account.Level1Earnings,
		Level2Earnings:       account.Level2Earnings,
		DirectReferrals:      direct,
		SecondLevelReferrals: second,
		RecentCommissions:    recent,
	}, nil
}

func (s *Service) Profile(ctx context.Context, accountID types.AccountID) (*Profile, error) {
	account, err := s.account(ctx, accountID)
	if err != nil {
		return nil, err
	}

	direct, err := s.sponsorship.DirectReferrals(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Profile{Account: account, DirectReferrals: direct}, nil
}

func (s *Service) account(ctx context.Context, id types.AccountID) (*types.Account, error) {
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return nil, err
		}
		return nil, types.StorageFailure(err)
	}
	return account, nil
}

// sourceNames resolves purchaser names. Accounts that cannot be loaded are
// left out, the report is still served.
func (s *Service) sourceNames(ctx context.Context, commissions []*types.Commission) map[types.AccountID]string {
	names := map[types.AccountID]string{}
	for _, c := range commissions {
		if _, ok := names[c.SourceID]; ok {
			continue
		}
		source, err := s.store.GetAccount(ctx, c.SourceID)
		if err != nil {
			s.log.Debug("could not resolve commission source",
				logging.AccountID(c.SourceID.String()),
				logging.Error(err),
			)
			continue
		}
		names[c.SourceID] = source.Name
	}
	return names
}
