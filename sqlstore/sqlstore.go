package sqlstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"code.tierpay.io/referral/logging"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	shopspring "github.com/jackc/pgtype/ext/shopspring-numeric"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
)

var tableNames = [...]string{"commissions", "purchases", "accounts"}

//go:embed migrations/*.sql
var embedMigrations embed.FS

const SQLMigrationsDir = "migrations"

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// SQLStore is the postgres implementation of the ledger.
type SQLStore struct {
	conf Config
	pool *pgxpool.Pool
	log  *logging.Logger
	db   *embeddedpostgres.EmbeddedPostgres
}

type txKey struct{}

// querier is what both the pool and a transaction can run statements on.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// MigrateToLatestSchema brings the database schema up to date without
// starting a store.
func MigrateToLatestSchema(log *logging.Logger, config Config) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(log.Named("db migration").GooseLogger())

	poolConfig, err := config.ConnectionConfig.GetPoolConfig()
	if err != nil {
		return fmt.Errorf("failed to get pool config:%w", err)
	}

	db := stdlib.OpenDB(*poolConfig.ConnConfig)
	defer db.Close()

	if err = goose.Up(db, SQLMigrationsDir); err != nil {
		return fmt.Errorf("error migrating sql schema: %w", err)
	}
	return nil
}

func (s *SQLStore) migrateToLatestSchema() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(s.log.Named("db migration").GooseLogger())

	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	currentVersion, err := goose.GetDBVersion(db)
	if err != nil {
		return err
	}

	if currentVersion > 0 && bool(s.conf.WipeOnStartup) {
		if err := goose.DownTo(db, SQLMigrationsDir, 0); err != nil {
			return fmt.Errorf("error clearing sql schema: %w", err)
		}
	}

	if err := goose.Up(db, SQLMigrationsDir); err != nil {
		return fmt.Errorf("error migrating sql schema: %w", err)
	}
	return nil
}

func registerNumericType(poolConfig *pgxpool.Config) {
	// Cause postgres numeric types to be loaded as shopspring decimals and vice-versa
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		conn.ConnInfo().RegisterDataType(pgtype.DataType{
			Value: &shopspring.Numeric{},
			Name:  "numeric",
			OID:   pgtype.NumericOID,
		})
		return nil
	}
}

// InitialiseStorage connects to postgres, starting the embedded one under
// runtimeDir first when configured to, and migrates the schema.
func InitialiseStorage(log *logging.Logger, config Config, runtimeDir string) (*SQLStore, error) {
	s := SQLStore{
		conf: config,
		log:  log.Named(namedLogger),
	}
	s.log.SetLevel(config.Level.Get())

	if s.conf.UseEmbedded {
		runtimePath := filepath.Join(runtimeDir, "sqlstore")
		dataPath := filepath.Join(runtimeDir, "node-data")
		if err := s.initializeEmbeddedPostgres(runtimePath, dataPath); err != nil {
			return nil, fmt.Errorf("use embedded database was true, but failed to start: %w", err)
		}
	}

	return setupStorage(&s)
}

// InitialiseTestStorage starts an embedded postgres in a temporary
// directory.
func InitialiseTestStorage(log *logging.Logger, config Config) (*SQLStore, error) {
	s := SQLStore{
		conf: config,
		log:  log.Named("sqlstore_test"),
	}

	if s.conf.UseEmbedded {
		tempDir, err := os.MkdirTemp("", uuid.NewString())
		if err != nil {
			return nil, err
		}

		runtimePath := filepath.Join(tempDir, "sqlstore")
		dataPath := filepath.Join(tempDir, "sqlstore", "node-data")
		if err := s.initializeEmbeddedPostgres(runtimePath, dataPath); err != nil {
			return nil, fmt.Errorf("use embedded database was true, but failed to start: %w", err)
		}
	}

	return setupStorage(&s)
}

func setupStorage(store *SQLStore) (*SQLStore, error) {
	poolConfig, err := store.conf.ConnectionConfig.GetPoolConfig()
	if err != nil {
		store.Stop()
		return nil, fmt.Errorf("error configuring database: %w", err)
	}

	registerNumericType(poolConfig)

	if store.pool, err = pgxpool.ConnectConfig(context.Background(), poolConfig); err != nil {
		store.Stop()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err = store.migrateToLatestSchema(); err != nil {
		store.Stop()
		return nil, fmt.Errorf("error migrating schema: %w", err)
	}

	return store, nil
}

func (s *SQLStore) DeleteEverything(ctx context.Context) error {
	for _, table := range tableNames {
		if _, err := s.pool.Exec(ctx, "truncate table "+table+" CASCADE"); err != nil {
			return fmt.Errorf("error truncating table: %s %w", table, err)
		}
	}
	return nil
}

func (s *SQLStore) initializeEmbeddedPostgres(runtimePath, dataPath string) error {
	conf := s.conf.ConnectionConfig
	dbConfig := embeddedpostgres.DefaultConfig().
		Username(conf.Username).
		Password(conf.Password).
		Database(conf.Database).
		Port(uint32(conf.Port)).
		RuntimePath(runtimePath).
		BinariesPath(runtimePath).
		DataPath(dataPath).
		Logger(io.Discard)

	s.db = embeddedpostgres.NewDatabase(dbConfig)
	return s.db.Start()
}

func (s *SQLStore) Stop() error {
	if s.pool != nil {
		s.pool.Close()
	}
	if !s.conf.UseEmbedded || s.db == nil {
		return nil
	}
	return s.db.Stop()
}

// WithinTransaction runs fn in a database transaction carried by the
// context. Nested calls join the enclosing transaction.
func (s *SQLStore) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback(context.Background())
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}
