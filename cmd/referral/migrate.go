package main

import (
	"context"
	"errors"
	"fmt"

	"code.tierpay.io/referral/config"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/sqlstore"

	"github.com/jessevdk/go-flags"
)

var ErrSQLStoreDisabled = errors.New("the sql store is disabled in the configuration")

type MigrateCmd struct {
	config.HomeFlag
}

var migrateCmd MigrateCmd

func (opts *MigrateCmd) Execute(_ []string) error {
	log := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer log.AtExit()

	cfg, err := config.Read(opts.HomePath())
	if err != nil {
		return fmt.Errorf("couldn't read configuration: %w", err)
	}
	if !cfg.SQLStore.Enabled {
		return ErrSQLStoreDisabled
	}
	if cfg.SQLStore.UseEmbedded {
		// the embedded database only runs with the node, which migrates on start
		log.Info("embedded database is migrated when the node starts")
		return nil
	}

	if err := sqlstore.MigrateToLatestSchema(log, cfg.SQLStore); err != nil {
		return fmt.Errorf("couldn't migrate the database: %w", err)
	}
	log.Info("database migrated to the latest schema")
	return nil
}

func Migrate(ctx context.Context, parser *flags.Parser) error {
	migrateCmd = MigrateCmd{}
	_, err := parser.AddCommand("migrate", "Migrate the database", "Apply every pending migration to the configured postgres database", &migrateCmd)
	return err
}
