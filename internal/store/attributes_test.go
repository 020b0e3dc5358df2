// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/pkg/errutil"
)

func TestPostgresAttributeRepository_Save(t *testing.T) {
	rec := attribute.NewRecord("desc", "A plain box.", attribute.FlagVisual, alice)

	tests := []struct {
		name    string
		execErr error
		wantErr bool
	}{
		{name: "upserts the compressed value"},
		{name: "database error", execErr: errors.New("connection refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			exp := mock.ExpectExec(`INSERT INTO attributes .* ON CONFLICT \(object, name\) DO UPDATE`).
				WithArgs(int64(box), "DESC", rec.Data, int64(attribute.FlagVisual), int64(alice))
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err = NewPostgresAttributeRepository(mock).Save(context.Background(), box, rec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "connection refused")
				errutil.AssertErrorContext(t, err, "attribute", "DESC")
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresAttributeRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM attributes WHERE object = \$1 AND name = \$2`).
		WithArgs(int64(box), "DESC").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM attributes WHERE object = \$1$`).
		WithArgs(int64(box)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	repo := NewPostgresAttributeRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), box, "DESC"))
	require.NoError(t, repo.DeleteObject(context.Background(), box))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributeRepository_Load(t *testing.T) {
	desc := attribute.NewRecord("DESCRIBE", "A plain box.", attribute.FlagVisual, alice)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT name, value, flags, creator FROM attributes WHERE object = \$1`).
		WithArgs(int64(box)).
		WillReturnRows(pgxmock.NewRows([]string{"name", "value", "flags", "creator"}).
			AddRow("DESCRIBE", desc.Data, int64(attribute.FlagVisual), int64(alice)).
			AddRow("EMPTY", []byte(nil), int64(0), int64(god)))

	recs, err := NewPostgresAttributeRepository(mock).Load(context.Background(), box)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, desc, recs[0])
	v, err := recs[0].Value()
	require.NoError(t, err)
	assert.Equal(t, "A plain box.", v)

	assert.Equal(t, "EMPTY", recs[1].Name)
	assert.Equal(t, god, recs[1].Creator)
	v, err = recs[1].Value()
	require.NoError(t, err)
	assert.Empty(t, v)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributeRepository_LoadErrors(t *testing.T) {
	t.Run("query error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT name, value`).WillReturnError(errors.New("timeout"))

		_, err = NewPostgresAttributeRepository(mock).Load(context.Background(), box)
		require.Error(t, err)
		errutil.AssertErrorContext(t, err, "operation", "load attributes")
	})

	t.Run("row error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT object, name, value`).
			WillReturnRows(pgxmock.NewRows([]string{"object", "name", "value", "flags", "creator"}).
				AddRow(int64(box), "A", []byte(nil), int64(0), int64(alice)).
				RowError(0, errors.New("broken row")))

		_, err = NewPostgresAttributeRepository(mock).LoadAll(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken row")
	})
}

func TestPostgresAttributeRepository_Hydrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	desc := attribute.NewRecord("DESCRIBE", "A plain box.", attribute.FlagVisual, alice)
	branch := attribute.NewRecord("NOTES`SECRET", "hidden", 0, alice)
	mock.ExpectQuery(`SELECT object, name, value, flags, creator FROM attributes ORDER BY object, name`).
		WillReturnRows(pgxmock.NewRows([]string{"object", "name", "value", "flags", "creator"}).
			AddRow(int64(alice), desc.Name, desc.Data, int64(desc.Flags), int64(alice)).
			AddRow(int64(box), desc.Name, desc.Data, int64(desc.Flags), int64(alice)).
			AddRow(int64(box), branch.Name, branch.Data, int64(0), int64(alice)))

	s := newAttributeStore(t)
	n, err := NewPostgresAttributeRepository(mock).Hydrate(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	a := s.Get(box, "DESCRIBE")
	require.NotNil(t, a)
	assert.Equal(t, "A plain box.", a.Value())
	assert.Equal(t, "hidden", s.Get(box, "NOTES`SECRET").Value())

	root := s.Get(box, "NOTES")
	require.NotNil(t, root, "branch roots are recreated")
	assert.True(t, root.IsRoot())

	assert.ElementsMatch(t, []dbref.Ref{alice, box}, s.Objects())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributeRepository_Seed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := newAttributeStore(t)
	require.NoError(t, s.Restore(box, []attribute.Record{
		attribute.NewRecord("DESCRIBE", "A plain box.", 0, alice),
		attribute.NewRecord("SMELL", "Cardboard.", 0, alice),
	}))

	mock.ExpectExec(`INSERT INTO attributes \(object, name, value, flags, creator\) VALUES`).
		WithArgs(int64(box), "DESCRIBE", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(alice)).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
	mock.ExpectExec(`INSERT INTO attributes \(object, name, value, flags, creator\) VALUES`).
		WithArgs(int64(box), "SMELL", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(alice)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, skipped, err := NewPostgresAttributeRepository(mock).Seed(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAttributeRepository_InsertOtherErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO attributes`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.NotNullViolation})

	ok, err := NewPostgresAttributeRepository(mock).Insert(context.Background(), box,
		attribute.NewRecord("DESCRIBE", "x", 0, alice))
	require.Error(t, err)
	assert.False(t, ok)
	errutil.AssertErrorContext(t, err, "operation", "insert attribute")
}
