// Package database centralises sqlx connection helpers.  The driver is
// go-sql-driver/mysql; the storefront's catalog, sessions, and route
// aliases all live in one schema.
//
// Public entry points:
//
//	Open(ctx, dsn, password)       – pool with conservative sizes.
//	OpenWithOptions(ctx, dsn, password, maxOpen, maxIdle) – fine-grained control.
//
// password, when non-empty, replaces whatever the DSN carries so the secret
// can come from Vault while the DSN stays in plain config.  Both helpers
// Ping before returning so bootstrap fails fast.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Open returns a *sqlx.DB with 15 max open, 5 idle, and a 30-minute
// connection lifetime.
func Open(ctx context.Context, dsn, password string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, password, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle.
func OpenWithOptions(ctx context.Context, dsn, password string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	full, err := BuildDSN(dsn, password)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("mysql", full)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}
	return db, nil
}

// BuildDSN parses dsn, injects password when set, and forces parseTime so
// DATETIME columns scan into time.Time.
func BuildDSN(dsn, password string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("database: parse dsn: %w", err)
	}
	if password != "" {
		cfg.Passwd = password
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}
