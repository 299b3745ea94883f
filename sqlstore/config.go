package sqlstore

import (
	"fmt"

	"code.tierpay.io/referral/config/encoding"
	"code.tierpay.io/referral/logging"

	"github.com/jackc/pgx/v4/pgxpool"
)

const namedLogger = "sqlstore"

type Config struct {
	Level            encoding.LogLevel `long:"log-level"`
	Enabled          encoding.Bool     `long:"enabled" description:"use postgres instead of the in-memory store"`
	UseEmbedded      encoding.Bool     `long:"use-embedded" description:"start an embedded postgres next to the node"`
	WipeOnStartup    encoding.Bool     `long:"wipe-on-startup"`
	ConnectionConfig ConnectionConfig  `group:"ConnectionConfig" namespace:"connection"`
}

type ConnectionConfig struct {
	Host            string            `long:"host"`
	Port            int               `long:"port"`
	Username        string            `long:"user"`
	Password        string            `long:"password" description:"overridden by REFERRAL_DB_PASSWORD when set"`
	Database        string            `long:"database"`
	MaxConns        int32             `long:"max-conns"`
	MaxConnLifetime encoding.Duration `long:"max-conn-lifetime"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:         encoding.LogLevel{Level: logging.InfoLevel},
		Enabled:       encoding.Bool(false),
		UseEmbedded:   encoding.Bool(false),
		WipeOnStartup: encoding.Bool(false),
		ConnectionConfig: ConnectionConfig{
			Host:            "localhost",
			Port:            5432,
			Username:        "referral",
			Password:        "referral",
			Database:        "referral",
			MaxConns:        20,
			MaxConnLifetime: encoding.Duration{Duration: 0},
		},
	}
}

func (c ConnectionConfig) ConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database)
}

func (c ConnectionConfig) GetPoolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.ConnectionString())
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = "Referral Node"
	if c.MaxConns > 0 {
		cfg.MaxConns = c.MaxConns
	}
	if c.MaxConnLifetime.Duration > 0 {
		cfg.MaxConnLifetime = c.MaxConnLifetime.Duration
	}
	return cfg, nil
}
