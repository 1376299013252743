package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"

	"github.com/galionhq/nexus/internal/config"
	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/migrations"
)

// DB wraps the shared *sql.DB handle together with the detected dialect so
// repositories and migrations can branch on backend where they must.
type DB struct {
	*sql.DB
	dialect string
	logger  *logger.Logger
}

// NewConnect opens the relational database selected by the DSN scheme:
// postgres:// (or postgresql://) connects through pgx, anything else is
// treated as a SQLite file path for single-binary development setups.
//
// The connection is pinged before being returned, so a non-nil *DB is known
// to be reachable.
func NewConnect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	driver, dsn, dialect := resolveBackend(cfg.DSN)

	if dialect == migrations.DialectSQLite {
		if err := createLocalDBFileIfNotExists(cfg.DSN); err != nil {
			log.Err(err).Str("func", "NewConnect").Msg("error creating database file")
			return nil, fmt.Errorf("error creating database file: %w", err)
		}
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		log.Err(err).Str("func", "NewConnect").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	if err := conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnect").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Info().Str("func", "NewConnect").Str("dialect", dialect).Msg("connected to database successfully")

	return &DB{
		DB:      conn,
		dialect: dialect,
		logger:  log,
	}, nil
}

// Migrate applies the embedded schema migrations for this connection's
// dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.dialect)
}

// Dialect returns the goose dialect name of the active backend.
func (db *DB) Dialect() string {
	return db.dialect
}

// resolveBackend maps a DSN to (driver, effective DSN, goose dialect).
// SQLite DSNs get foreign key enforcement switched on unless the caller
// already passed driver options.
func resolveBackend(dsn string) (string, string, string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dsn, migrations.DialectPostgres
	}

	effective := dsn
	if !strings.Contains(effective, "?") {
		effective += "?_foreign_keys=on"
	}
	return "sqlite3", effective, migrations.DialectSQLite
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}

func postgresError(err error) string {
	var pgErr *pgconn.PgError
	// if postgres returns error
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

// isUniqueViolation reports whether err is a unique-constraint violation on
// either backend.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}
