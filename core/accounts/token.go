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
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	ReferralCodeLength = 6
	referralAlphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var alphabetSize = big.NewInt(int64(len(referralAlphabet)))

// RandomCodeGenerator draws referral codes from crypto/rand.
type RandomCodeGenerator struct{}

func NewRandomCodeGenerator() *RandomCodeGenerator {
	return &RandomCodeGenerator{}
}

func (RandomCodeGenerator) Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(ReferralCodeLength)
	for i := 0; i < ReferralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		sb.WriteByte(referralAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// IsReferralCode tells whether s has the shape of a referral code.
func IsReferralCode(s string) bool {
	if len(s) != ReferralCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(referralAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
