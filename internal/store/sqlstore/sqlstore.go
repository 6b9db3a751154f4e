// Package sqlstore implements types.DataStore over a relational database.
// sqlite3 is the default driver; postgres is supported for deployments that
// outgrow a single file.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/ecdye/jwt-pizza-service/internal/types"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	ConnTimeout  time.Duration
}

// DB is the data-access handle. It is constructed once at process start and
// closed at shutdown; nothing in this package holds package-level state.
type DB struct {
	db     *sqlx.DB
	driver string
}

var _ types.DataStore = (*DB)(nil)

// Open connects, applies pool settings, verifies the connection, and
// bootstraps the schema.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	timeout := cfg.ConnTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &DB{db: db, driver: cfg.Driver}
	if err := d.bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("driver", cfg.Driver).Msg("database ready")
	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) bootstrap(ctx context.Context) error {
	for _, stmt := range schemaFor(d.driver) {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (d *DB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}
	return tx.Commit()
}

// insertID executes an insert written with ? placeholders and returns the
// generated id, papering over the LastInsertId/RETURNING split between
// drivers.
func (d *DB) insertID(ctx context.Context, tx *sqlx.Tx, query string, args ...any) (int64, error) {
	if d.driver == DriverPostgres {
		var id int64
		q := d.db.Rebind(query + " RETURNING id")
		if err := tx.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := tx.ExecContext(ctx, d.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) rebind(query string) string {
	return d.db.Rebind(query)
}

// isDuplicate reports whether err is a unique-constraint violation on either
// driver.
func isDuplicate(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// likePattern converts a '*' wildcard filter into a SQL LIKE pattern.
func likePattern(filter string) string {
	if filter == "" {
		filter = "*"
	}
	return strings.ReplaceAll(filter, "*", "%")
}

func pageOffset(page, limit int) int {
	if page < 0 {
		page = 0
	}
	return page * limit
}
