package encoding

import (
	"fmt"
	"strings"
	"time"

	"code.tierpay.io/referral/libs/num"
	"code.tierpay.io/referral/logging"
)

// Duration is a wrapper over an actual duration so we can represent
// them as string in the toml configuration.
type Duration struct {
	time.Duration
}

func (d *Duration) Get() time.Duration {
	return d.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d *Duration) UnmarshalFlag(s string) error {
	return d.UnmarshalText([]byte(s))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogLevel is wrapper over the actual log level
// so they can be specified as strings in the toml configuration.
type LogLevel struct {
	logging.Level
}

func (l *LogLevel) Get() logging.Level {
	return l.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	var err error
	l.Level, err = logging.ParseLevel(string(text))
	return err
}

func (l *LogLevel) UnmarshalFlag(s string) error {
	return l.UnmarshalText([]byte(s))
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

type Bool bool

func (b *Bool) UnmarshalFlag(s string) error {
	switch strings.ToLower(s) {
	case "true":
		*b = true
	case "false":
		*b = false
	default:
		return fmt.Errorf("only `true' and `false' are valid values, not `%s'", s)
	}
	return nil
}

func (b *Bool) UnmarshalText(text []byte) error {
	return b.UnmarshalFlag(string(text))
}

func (b Bool) MarshalText() ([]byte, error) {
	if b {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}

// Decimal lets monetary thresholds be written as strings in the toml
// configuration, without going through a float.
type Decimal struct {
	num.Decimal
}

func NewDecimal(s string) Decimal {
	return Decimal{Decimal: num.MustDecimalFromString(s)}
}

func (d *Decimal) Get() num.Decimal {
	return d.Decimal
}

func (d *Decimal) UnmarshalText(text []byte) error {
	v, err := num.DecimalFromString(string(text))
	if err != nil {
		return fmt.Errorf("invalid decimal %q: %w", string(text), err)
	}
	d.Decimal = v
	return nil
}

func (d *Decimal) UnmarshalFlag(s string) error {
	return d.UnmarshalText([]byte(s))
}

func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
