// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/attribute"
	"github.com/holomush/pennmush/internal/dbref"
)

type changeKind uint8

const (
	changeSet changeKind = iota
	changeClear
	changeFree
)

type change struct {
	kind changeKind
	obj  dbref.Ref
	rec  attribute.Record
	name string
}

// Journal collects the changes an attribute.Store makes and writes them
// on Flush. Register it with attribute.WithObserver.
type Journal struct {
	mu      sync.Mutex
	pool    poolIface
	pending []change
}

var _ attribute.Observer = (*Journal)(nil)

// NewJournal creates an empty journal writing through pool.
func NewJournal(pool poolIface) *Journal {
	return &Journal{pool: pool}
}

// AttributeSet implements attribute.Observer.
func (j *Journal) AttributeSet(obj dbref.Ref, rec attribute.Record) {
	j.add(change{kind: changeSet, obj: obj, rec: rec})
}

// AttributeCleared implements attribute.Observer.
func (j *Journal) AttributeCleared(obj dbref.Ref, name string) {
	j.add(change{kind: changeClear, obj: obj, name: name})
}

// AttributesFreed implements attribute.Observer.
func (j *Journal) AttributesFreed(obj dbref.Ref) {
	j.add(change{kind: changeFree, obj: obj})
}

func (j *Journal) add(c change) {
	j.mu.Lock()
	j.pending = append(j.pending, c)
	j.mu.Unlock()
}

// Len returns the number of unwritten changes.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Flush writes the pending changes in order in one transaction. On
// failure the changes stay pending.
func (j *Journal) Flush(ctx context.Context) (int, error) {
	j.mu.Lock()
	batch := j.pending
	j.pending = nil
	j.mu.Unlock()
	if len(batch) == 0 {
		return 0, nil
	}

	if err := j.write(ctx, batch); err != nil {
		j.mu.Lock()
		j.pending = append(batch, j.pending...)
		j.mu.Unlock()
		return 0, err
	}
	return len(batch), nil
}

func (j *Journal) write(ctx context.Context, batch []change) error {
	tx, err := j.pool.Begin(ctx)
	if err != nil {
		return oops.With("operation", "begin journal flush").Wrap(err)
	}
	defer func() { _ = tx.Rollback(ctx) }() //nolint:errcheck // no-op after commit

	for _, c := range batch {
		switch c.kind {
		case changeSet:
			err = saveAttribute(ctx, tx, c.obj, c.rec)
		case changeClear:
			err = deleteAttribute(ctx, tx, c.obj, c.name)
		case changeFree:
			err = deleteObject(ctx, tx, c.obj)
		}
		if err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.With("operation", "commit journal flush").Wrap(err)
	}
	return nil
}
