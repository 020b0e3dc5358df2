// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"errors"
	"slices"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/dbref"
)

const upsertAttributeSQL = `INSERT INTO attributes (object, name, value, flags, creator)
	 VALUES ($1, $2, $3, $4, $5)
	 ON CONFLICT (object, name) DO UPDATE
	 SET value = $3, flags = $4, creator = $5, updated_at = now()`

// PostgresAttributeRepository stores attributes. Values are kept in the
// compressed form attribute.Record carries.
type PostgresAttributeRepository struct {
	pool poolIface
}

// NewPostgresAttributeRepository creates a repository over pool.
func NewPostgresAttributeRepository(pool poolIface) *PostgresAttributeRepository {
	return &PostgresAttributeRepository{pool: pool}
}

func saveAttribute(ctx context.Context, ex execer, obj dbref.Ref, rec attribute.Record) error {
	_, err := ex.Exec(ctx, upsertAttributeSQL, int64(obj), rec.Name, rec.Data, int64(rec.Flags), int64(rec.Creator))
	if err != nil {
		return oops.With("operation", "save attribute").
			With("object", obj.String()).
			With("attribute", rec.Name).
			Wrap(err)
	}
	return nil
}

func deleteAttribute(ctx context.Context, ex execer, obj dbref.Ref, name string) error {
	_, err := ex.Exec(ctx, `DELETE FROM attributes WHERE object = $1 AND name = $2`, int64(obj), name)
	if err != nil {
		return oops.With("operation", "delete attribute").
			With("object", obj.String()).
			With("attribute", name).
			Wrap(err)
	}
	return nil
}

func deleteObject(ctx context.Context, ex execer, obj dbref.Ref) error {
	_, err := ex.Exec(ctx, `DELETE FROM attributes WHERE object = $1`, int64(obj))
	if err != nil {
		return oops.With("operation", "delete object attributes").With("object", obj.String()).Wrap(err)
	}
	return nil
}

// Save creates or replaces one attribute.
func (r *PostgresAttributeRepository) Save(ctx context.Context, obj dbref.Ref, rec attribute.Record) error {
	return saveAttribute(ctx, r.pool, obj, rec)
}

// Delete removes one attribute. Removing a missing attribute is not an
// error.
func (r *PostgresAttributeRepository) Delete(ctx context.Context, obj dbref.Ref, name string) error {
	return deleteAttribute(ctx, r.pool, obj, name)
}

// DeleteObject removes every attribute on obj.
func (r *PostgresAttributeRepository) DeleteObject(ctx context.Context, obj dbref.Ref) error {
	return deleteObject(ctx, r.pool, obj)
}

// Load returns obj's attributes ordered by name.
func (r *PostgresAttributeRepository) Load(ctx context.Context, obj dbref.Ref) ([]attribute.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name, value, flags, creator FROM attributes WHERE object = $1 ORDER BY name`,
		int64(obj))
	if err != nil {
		return nil, oops.With("operation", "load attributes").With("object", obj.String()).Wrap(err)
	}
	defer rows.Close()

	var recs []attribute.Record
	for rows.Next() {
		var (
			rec            attribute.Record
			flags, creator int64
		)
		if err := rows.Scan(&rec.Name, &rec.Data, &flags, &creator); err != nil {
			return nil, oops.With("operation", "scan attribute row").With("object", obj.String()).Wrap(err)
		}
		rec.Flags = attribute.Flags(flags)
		rec.Creator = dbref.Ref(creator)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate attributes").With("object", obj.String()).Wrap(err)
	}
	return recs, nil
}

// LoadAll returns every stored attribute grouped by object.
func (r *PostgresAttributeRepository) LoadAll(ctx context.Context) (map[dbref.Ref][]attribute.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT object, name, value, flags, creator FROM attributes ORDER BY object, name`)
	if err != nil {
		return nil, oops.With("operation", "load all attributes").Wrap(err)
	}
	defer rows.Close()

	out := make(map[dbref.Ref][]attribute.Record)
	for rows.Next() {
		var (
			rec                 attribute.Record
			obj, flags, creator int64
		)
		if err := rows.Scan(&obj, &rec.Name, &rec.Data, &flags, &creator); err != nil {
			return nil, oops.With("operation", "scan attribute row").Wrap(err)
		}
		rec.Flags = attribute.Flags(flags)
		rec.Creator = dbref.Ref(creator)
		out[dbref.Ref(obj)] = append(out[dbref.Ref(obj)], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate attributes").Wrap(err)
	}
	return out, nil
}

// Hydrate loads every stored attribute into s, and returns the number of
// objects restored.
func (r *PostgresAttributeRepository) Hydrate(ctx context.Context, s *attribute.Store) (int, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	objs := make([]dbref.Ref, 0, len(all))
	for obj := range all {
		objs = append(objs, obj)
	}
	slices.Sort(objs)
	for _, obj := range objs {
		if err := s.Restore(obj, all[obj]); err != nil {
			return 0, oops.With("operation", "hydrate attributes").Wrap(err)
		}
	}
	return len(objs), nil
}

// Insert creates one attribute and reports whether it was created. An
// attribute that already exists is left unchanged.
func (r *PostgresAttributeRepository) Insert(ctx context.Context, obj dbref.Ref, rec attribute.Record) (bool, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attributes (object, name, value, flags, creator) VALUES ($1, $2, $3, $4, $5)`,
		int64(obj), rec.Name, rec.Data, int64(rec.Flags), int64(rec.Creator))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return false, nil
	}
	if err != nil {
		return false, oops.With("operation", "insert attribute").
			With("object", obj.String()).
			With("attribute", rec.Name).
			Wrap(err)
	}
	return true, nil
}

// Seed inserts every attribute in s that is not stored yet. Running it
// twice changes nothing the second time.
func (r *PostgresAttributeRepository) Seed(ctx context.Context, s *attribute.Store) (created, skipped int, err error) {
	objs := s.Objects()
	slices.Sort(objs)
	for _, obj := range objs {
		for _, rec := range s.Records(obj) {
			ok, err := r.Insert(ctx, obj, rec)
			if err != nil {
				return created, skipped, err
			}
			if ok {
				created++
			} else {
				skipped++
			}
		}
	}
	return created, skipped, nil
}
