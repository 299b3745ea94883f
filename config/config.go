//lint:file-ignore SA5008 duplicated struct tags are ok for config

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"code.tierpay.io/referral/api"
	"code.tierpay.io/referral/broker"
	"code.tierpay.io/referral/config/encoding"
	"code.tierpay.io/referral/core/accounts"
	"code.tierpay.io/referral/core/distribution"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/metrics"
	"code.tierpay.io/referral/sqlstore"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	configFileName  = "config.toml"
	secretsFileName = ".env"

	EnvJWTSecret  = "REFERRAL_JWT_SECRET"
	EnvDBPassword = "REFERRAL_DB_PASSWORD"
)

var ErrConfigAlreadyExists = errors.New("configuration file already exists")

// Config ties together all other application configuration types.
type Config struct {
	API          api.Config          `group:"API" namespace:"api"`
	Accounts     accounts.Config     `group:"Accounts" namespace:"accounts"`
	Distribution distribution.Config `group:"Distribution" namespace:"distribution"`
	Logging      logging.Config      `group:"Logging" namespace:"logging"`
	Metrics      metrics.Config      `group:"Metrics" namespace:"metrics"`
	Broker       broker.Config       `group:"Broker" namespace:"broker"`
	SQLStore     sqlstore.Config     `group:"SQLStore" namespace:"sqlstore"`

	WatchConfig encoding.Bool `long:"watch-config" choice:"true" choice:"false" description:"reload the configuration when the file changes"`
}

// NewDefaultConfig returns a set of default configs for all packages, as
// specified at the per package config level.
func NewDefaultConfig() Config {
	return Config{
		API:          api.NewDefaultConfig(),
		Accounts:     accounts.NewDefaultConfig(),
		Distribution: distribution.NewDefaultConfig(),
		Logging:      logging.NewDefaultConfig(),
		Metrics:      metrics.NewDefaultConfig(),
		Broker:       broker.NewDefaultConfig(),
		SQLStore:     sqlstore.NewDefaultConfig(),
		WatchConfig:  true,
	}
}

// Read loads the configuration file of the home directory on top of the
// defaults, then applies the secrets.
func Read(rootPath string) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.DecodeFile(filepath.Join(rootPath, configFileName), &cfg); err != nil {
		return nil, err
	}
	if err := LoadSecrets(rootPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write saves cfg in the home directory. An existing file is only replaced
// when force is set.
func Write(rootPath string, cfg Config, force bool) (string, error) {
	path := filepath.Join(rootPath, configFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return path, ErrConfigAlreadyExists
	}
	if err := os.MkdirAll(rootPath, 0o700); err != nil {
		return path, fmt.Errorf("could not create home directory: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return path, fmt.Errorf("could not encode configuration: %w", err)
	}
	return path, os.WriteFile(path, buf.Bytes(), 0o600)
}

// LoadSecrets applies secrets from the environment and from an optional
// .env file in the home directory. Variables already set in the
// environment win over the file.
func LoadSecrets(rootPath string, cfg *Config) error {
	envFile := filepath.Join(rootPath, secretsFileName)
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("could not load %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.API.JWTSecret = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		cfg.SQLStore.ConnectionConfig.Password = v
	}
	return nil
}
