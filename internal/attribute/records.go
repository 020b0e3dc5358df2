// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package attribute

import (
	"strings"
	"unique"

	"github.com/klauspost/compress/s2"
	"github.com/samber/oops"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/world"
)

// Record is the storable form of an attribute. Data holds the compressed
// value.
type Record struct {
	Name    string
	Data    []byte
	Flags   Flags
	Creator dbref.Ref
}

// Value decompresses the record's value.
func (r Record) Value() (string, error) {
	if len(r.Data) == 0 {
		return "", nil
	}
	out, err := s2.Decode(nil, r.Data)
	if err != nil {
		return "", oops.Code("ATTR_VALUE_CORRUPT").With("attribute", r.Name).Wrap(err)
	}
	return string(out), nil
}

// NewRecord builds a record from a plain value.
func NewRecord(name, value string, flags Flags, creator dbref.Ref) Record {
	var data []byte
	if value != "" {
		data = s2.Encode(nil, []byte(value))
	}
	return Record{Name: strings.ToUpper(name), Data: data, Flags: flags, Creator: creator}
}

func recordOf(a *Attribute) Record {
	return Record{Name: a.Name(), Data: a.data, Flags: a.flags, Creator: a.creator}
}

// Records returns obj's attributes in storable form.
func (s *Store) Records(obj dbref.Ref) []Record {
	list := s.objs[obj]
	out := make([]Record, len(list))
	for i, a := range list {
		out[i] = recordOf(a)
	}
	return out
}

// Objects returns every object that has attributes.
func (s *Store) Objects() []dbref.Ref {
	out := make([]dbref.Ref, 0, len(s.objs))
	for obj := range s.objs {
		out = append(out, obj)
	}
	return out
}

// Restore loads records onto obj without permission checks, replacing
// attributes of the same name and creating missing branch roots. The
// observer is not notified.
func (s *Store) Restore(obj dbref.Ref, recs []Record) error {
	for _, r := range recs {
		name := strings.ToUpper(r.Name)
		if !s.ValidName(name) {
			return oops.Code("ATTR_NAME_INVALID").With("object", obj.String()).With("attribute", r.Name).
				Errorf("invalid attribute name %q", r.Name)
		}
		s.put(obj, &Attribute{name: unique.Make(name), data: r.Data, flags: r.Flags, creator: r.Creator})
	}
	return nil
}

func (s *Store) put(obj dbref.Ref, a *Attribute) {
	for _, b := range branches(a.Name()) {
		if root := s.lookup(obj, b); root != nil {
			root.flags |= FlagRoot
			continue
		}
		s.insert(obj, &Attribute{
			name:    unique.Make(b),
			flags:   (s.defaultFlags(b, 0) &^ (FlagCommand | FlagListen)) | FlagRoot,
			creator: a.creator,
		})
	}
	if s.hasChildren(obj, a.Name()) {
		a.flags |= FlagRoot
	}
	if i, ok := s.search(obj, a.Name()); ok {
		s.objs[obj][i] = a
		return
	}
	s.insert(obj, a)
}

// LoadFixture sets the attributes described by a world fixture. Each
// attribute is created by its object's owner.
func (s *Store) LoadFixture(f *world.Fixture) error {
	for _, o := range f.Objects {
		creator := s.graph.Owner(o.Ref)
		for _, af := range o.Attributes {
			flags, err := ParseStoredFlags(strings.Join(af.Flags, " "))
			if err != nil {
				return oops.Code("FIXTURE_INVALID").
					With("object", o.Ref.String()).
					With("attribute", af.Name).
					With("cause", err.Error()).
					Errorf("object %s: attribute %s: %v", o.Ref, af.Name, err)
			}
			rec := NewRecord(af.Name, af.Value, s.defaultFlags(strings.ToUpper(af.Name), flags)|commandFlags(af.Value), creator)
			if err := s.Restore(o.Ref, []Record{rec}); err != nil {
				return err
			}
		}
	}
	return nil
}
