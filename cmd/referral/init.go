package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"code.tierpay.io/referral/config"
	"code.tierpay.io/referral/logging"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

const secretBytes = 32

type InitCmd struct {
	config.HomeFlag

	Force bool `short:"f" long:"force" description:"Erase existing configuration at the specified path"`
}

var initCmd InitCmd

func (opts *InitCmd) Execute(_ []string) error {
	logger := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer logger.AtExit()

	home := opts.HomePath()

	path, err := config.Write(home, config.NewDefaultConfig(), opts.Force)
	if err != nil {
		if errors.Is(err, config.ErrConfigAlreadyExists) {
			return fmt.Errorf("configuration already exists at `%s` please remove it first or re-run using -f", path)
		}
		return fmt.Errorf("couldn't save configuration file: %w", err)
	}

	envPath := filepath.Join(home, ".env")
	if _, err := os.Stat(envPath); err == nil && !opts.Force {
		logger.Info("keeping existing secrets", logging.String("path", envPath))
	} else {
		secret, err := newSecret()
		if err != nil {
			return fmt.Errorf("couldn't generate the jwt secret: %w", err)
		}
		if err := godotenv.Write(map[string]string{config.EnvJWTSecret: secret}, envPath); err != nil {
			return fmt.Errorf("couldn't save secrets: %w", err)
		}
		if err := os.Chmod(envPath, 0o600); err != nil {
			return fmt.Errorf("couldn't restrict secrets permissions: %w", err)
		}
	}

	logger.Info("configuration generated successfully", logging.String("path", path))
	return nil
}

func newSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func Init(ctx context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{}

	short := "Initializes a referral node"
	long := "Generate the configuration and the secrets required for a referral node to start"

	_, err := parser.AddCommand("init", short, long, &initCmd)
	return err
}
