package distribution

import (
	"time"

	"code.tierpay.io/referral/config/encoding"
	"code.tierpay.io/referral/logging"
)

const namedLogger = "distribution"

type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	MinimumPurchaseAmount encoding.Decimal `long:"minimum-purchase-amount" description:"purchases below this amount are rejected"`

	RetryInitialInterval encoding.Duration `long:"retry-initial-interval"`
	RetryMaxInterval     encoding.Duration `long:"retry-max-interval"`
	RetryMaxElapsedTime  encoding.Duration `long:"retry-max-elapsed-time" description:"give up on a distribution step after this long"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:                 encoding.LogLevel{Level: logging.InfoLevel},
		MinimumPurchaseAmount: encoding.NewDecimal("1000"),
		RetryInitialInterval:  encoding.Duration{Duration: 50 * time.Millisecond},
		RetryMaxInterval:      encoding.Duration{Duration: time.Second},
		RetryMaxElapsedTime:   encoding.Duration{Duration: 5 * time.Second},
	}
}
