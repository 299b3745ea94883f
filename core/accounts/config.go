package accounts

import (
	"code.tierpay.io/referral/config/encoding"
	"code.tierpay.io/referral/logging"

	"golang.org/x/crypto/bcrypt"
)

const namedLogger = "accounts"

type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	BcryptCost              int `long:"bcrypt-cost"`
	MinPasswordLength       int `long:"min-password-length"`
	ReferralCodeMaxAttempts int `long:"referral-code-max-attempts" description:"how many codes to try before giving up on a registration"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:                   encoding.LogLevel{Level: logging.InfoLevel},
		BcryptCost:              bcrypt.DefaultCost,
		MinPasswordLength:       6,
		ReferralCodeMaxAttempts: 5,
	}
}
