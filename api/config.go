package api

import (
	"time"

	"code.tierpay.io/referral/config/encoding"
	"code.tierpay.io/referral/logging"
)

// namedLogger is the identifier for package and should ideally match the package name
// this is simply emitted as a hierarchical label e.g. 'api.rest'.
const namedLogger = "api.rest"

// Config represents the configuration of the api package
type Config struct {
	Level           encoding.LogLevel `long:"log-level"`
	Port            int               `long:"port" description:"Listen for connection on port <port>"`
	IP              string            `long:"ip" description:"Bind to address <ip>"`
	Timeout         encoding.Duration `long:"timeout" description:"read and write timeout of a request"`
	ShutdownTimeout encoding.Duration `long:"shutdown-timeout"`
	// JWTSecret signs the bearer tokens, usually provided through the
	// environment rather than the configuration file.
	JWTSecret   string            `long:"jwt-secret" toml:"-"`
	TokenExpiry encoding.Duration `long:"token-expiry"`
	CORS        CORSConfig        `group:"CORS" namespace:"cors"`
	Websocket   WebsocketConfig   `group:"Websocket" namespace:"websocket"`
	RateLimit   RateLimitConfig   `group:"RateLimit" namespace:"ratelimit"`
}

// RateLimitConfig limits the authentication routes per client address.
type RateLimitConfig struct {
	Enabled       encoding.Bool     `long:"enabled"`
	AuthPerSecond float64           `long:"auth-per-second" description:"sustained register and login requests allowed per address"`
	AuthBurst     int               `long:"auth-burst"`
	TTL           encoding.Duration `long:"ttl" description:"how long an idle address is remembered"`
}

type CORSConfig struct {
	AllowedOrigins []string `long:"allowed-origins" description:"origins allowed to call the api, * allows all"`
	MaxAge         int      `long:"max-age"`
}

type WebsocketConfig struct {
	WriteTimeout encoding.Duration `long:"write-timeout"`
	PingInterval encoding.Duration `long:"ping-interval"`
	SendBuffer   int               `long:"send-buffer" description:"notifications buffered per connection before it is dropped"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:           encoding.LogLevel{Level: logging.InfoLevel},
		IP:              "0.0.0.0",
		Port:            5000,
		Timeout:         encoding.Duration{Duration: 10 * time.Second},
		ShutdownTimeout: encoding.Duration{Duration: 5 * time.Second},
		TokenExpiry:     encoding.Duration{Duration: 30 * 24 * time.Hour},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			MaxAge:         300,
		},
		Websocket: WebsocketConfig{
			WriteTimeout: encoding.Duration{Duration: 10 * time.Second},
			PingInterval: encoding.Duration{Duration: 30 * time.Second},
			SendBuffer:   32,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			AuthPerSecond: 5,
			AuthBurst:     10,
			TTL:           encoding.Duration{Duration: time.Hour},
		},
	}
}
