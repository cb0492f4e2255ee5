// Package database opens the bun handle the services share. Postgres is
// the production engine; an empty or file-based DSN falls back to SQLite
// so the services run without external infrastructure.
package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Connect opens and pings a database selected by the DSN scheme.
func Connect(ctx context.Context, dsn string) (*bun.DB, error) {
	db, err := open(dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "database unreachable")
	}

	return db, nil
}

func open(dsn string) (*bun.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}

	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "could not open sqlite database")
	}

	// shared in-memory sqlite drops its schema when the last conn closes
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxIdleTime(0)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
