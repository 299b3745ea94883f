package metrics

import (
	"time"

	"code.tierpay.io/referral/config/encoding"
	"code.tierpay.io/referral/logging"
)

const namedLogger = "metrics"

// Config represents the configuration of the metric package.
type Config struct {
	Level   encoding.LogLevel `long:"log-level"`
	Timeout encoding.Duration `long:"timeout"`
	Port    int               `long:"port"`
	Path    string            `long:"path"`
	Enabled encoding.Bool     `long:"enabled"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:   encoding.LogLevel{Level: logging.InfoLevel},
		Timeout: encoding.Duration{Duration: 5 * time.Second},
		Port:    2112,
		Path:    "/metrics",
		Enabled: false,
	}
}
