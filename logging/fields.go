package logging

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Error constructs a field that lazily stores err.Error() under the key "error".
func Error(err error) zap.Field {
	return zap.Error(err)
}

// String constructs a field with the given key and value.
func String(key, val string) zap.Field {
	return zap.String(key, val)
}

// Strings constructs a field with the given key and values.
func Strings(key string, val []string) zap.Field {
	return zap.Strings(key, val)
}

// Int constructs a field with the given key and value.
func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Int64 constructs a field with the given key and value.
func Int64(key string, val int64) zap.Field {
	return zap.Int64(key, val)
}

// Uint64 constructs a field with the given key and value.
func Uint64(key string, val uint64) zap.Field {
	return zap.Uint64(key, val)
}

// Bool constructs a field with the given key and value.
func Bool(key string, val bool) zap.Field {
	return zap.Bool(key, val)
}

// Duration constructs a field with the given key and value.
func Duration(key string, val time.Duration) zap.Field {
	return zap.Duration(key, val)
}

// Time constructs a field with the given key and value.
func Time(key string, val time.Time) zap.Field {
	return zap.Time(key, val)
}

// Decimal logs a monetary amount in its exact string form.
func Decimal(key string, val decimal.Decimal) zap.Field {
	return zap.String(key, val.String())
}

// AccountID logs an account identifier.
func AccountID(id string) zap.Field {
	return zap.String("account-id", id)
}

// PurchaseID logs a purchase identifier.
func PurchaseID(id string) zap.Field {
	return zap.String("purchase-id", id)
}
