// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store persists attributes and command table customizations in
// PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// execer runs statements. Both pools and transactions satisfy it.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// poolIface is the part of pgxpool.Pool the repositories use, so tests can
// substitute pgxmock.
type poolIface interface {
	execer
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ConnectOptions controls how Connect waits for the database.
type ConnectOptions struct {
	// Attempts is the number of pings tried before giving up.
	Attempts uint64
	// Backoff is the first delay between attempts. It doubles each time.
	Backoff time.Duration
}

// DefaultConnectOptions retries for roughly half a minute.
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{Attempts: 6, Backoff: 500 * time.Millisecond}
}

// Connect opens a pool and pings it until the database answers.
func Connect(ctx context.Context, databaseURL string, opts ConnectOptions) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	if opts.Backoff <= 0 {
		opts.Backoff = DefaultConnectOptions().Backoff
	}
	backoff := retry.WithMaxRetries(opts.Attempts, retry.NewExponential(opts.Backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("attempts", opts.Attempts+1).Wrap(err)
	}
	return pool, nil
}
