package broker

import (
	"time"

	"code.tierpay.io/referral/config/encoding"
	"code.tierpay.io/referral/logging"
)

const namedLogger = "broker"

// Config represents the configuration of the broker.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
	// MinChannelBuffer is the minimum buffer of the per event type channel.
	// Events are dropped once it is full.
	MinChannelBuffer int               `long:"min-channel-buffer"`
	SubscriberTimeout encoding.Duration `long:"subscriber-timeout" description:"how long to wait on a slow subscriber before dropping events"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:             encoding.LogLevel{Level: logging.InfoLevel},
		MinChannelBuffer:  100,
		SubscriberTimeout: encoding.Duration{Duration: time.Second},
	}
}
