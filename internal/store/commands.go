// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/command"
)

// PostgresCommandRepository keeps the customizations made with @command
// and @hook. IDs are ULIDs, so id order is the order they were made.
type PostgresCommandRepository struct {
	pool poolIface
	now  func() time.Time
}

var _ command.CustomizationRecorder = (*PostgresCommandRepository)(nil)

// NewPostgresCommandRepository creates a repository over pool.
func NewPostgresCommandRepository(pool poolIface) *PostgresCommandRepository {
	return &PostgresCommandRepository{pool: pool, now: time.Now}
}

// RecordCustomization implements command.CustomizationRecorder.
func (r *PostgresCommandRepository) RecordCustomization(ctx context.Context, c command.Customization) error {
	id := ulid.MustNew(ulid.Timestamp(r.now()), ulid.DefaultEntropy())
	_, err := r.pool.Exec(ctx,
		`INSERT INTO command_customizations (id, kind, command, arg, switches, policy, hook, inplace)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id.String(), string(c.Kind), c.Command, c.Arg, c.Switches, c.Policy, c.Hook, c.Inplace)
	if err != nil {
		return oops.With("operation", "record command customization").
			With("kind", string(c.Kind)).
			With("command", c.Command).
			Wrap(err)
	}
	return nil
}

// Load returns every recorded customization in the order it was made.
func (r *PostgresCommandRepository) Load(ctx context.Context) ([]command.Customization, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT kind, command, arg, switches, policy, hook, inplace
		 FROM command_customizations ORDER BY id`)
	if err != nil {
		return nil, oops.With("operation", "load command customizations").Wrap(err)
	}
	defer rows.Close()

	var out []command.Customization
	for rows.Next() {
		var (
			c    command.Customization
			kind string
		)
		if err := rows.Scan(&kind, &c.Command, &c.Arg, &c.Switches, &c.Policy, &c.Hook, &c.Inplace); err != nil {
			return nil, oops.With("operation", "scan command customization").Wrap(err)
		}
		c.Kind = command.CustomizationKind(kind)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate command customizations").Wrap(err)
	}
	return out, nil
}

// Reset forgets every recorded customization.
func (r *PostgresCommandRepository) Reset(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM command_customizations`); err != nil {
		return oops.With("operation", "reset command customizations").Wrap(err)
	}
	return nil
}
