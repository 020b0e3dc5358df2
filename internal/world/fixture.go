// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/pennmush/internal/dbref"
)

// Fixture is the YAML description of a world: its objects, their links and
// their attributes.
type Fixture struct {
	God         *dbref.Ref           `yaml:"god"`
	MasterRoom  *dbref.Ref           `yaml:"master_room"`
	PlayerStart *dbref.Ref           `yaml:"player_start"`
	Ancestors   map[string]dbref.Ref `yaml:"ancestors"`
	Objects     []ObjectFixture      `yaml:"objects"`
}

// ObjectFixture describes one object.
type ObjectFixture struct {
	Ref         dbref.Ref          `yaml:"ref"`
	Name        string             `yaml:"name"`
	Type        string             `yaml:"type"`
	Location    *dbref.Ref         `yaml:"location"`
	Source      *dbref.Ref         `yaml:"source"`
	Destination *dbref.Ref         `yaml:"destination"`
	Zone        *dbref.Ref         `yaml:"zone"`
	Owner       *dbref.Ref         `yaml:"owner"`
	Parent      *dbref.Ref         `yaml:"parent"`
	Flags       []string           `yaml:"flags"`
	Powers      []string           `yaml:"powers"`
	Attributes  []AttributeFixture `yaml:"attributes"`
	// Locks maps lock names (Basic, Command, Use, Enter...) to lock text.
	Locks map[string]string `yaml:"locks"`
}

// AttributeFixture describes one attribute on an object, in the order it
// should be set.
type AttributeFixture struct {
	Name  string   `yaml:"name"`
	Value string   `yaml:"value"`
	Flags []string `yaml:"flags"`
}

// LoadFixture decodes a fixture from r. Unknown keys are rejected.
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, oops.Code("FIXTURE_INVALID").With("operation", "decode fixture").Wrap(err)
	}
	return &f, nil
}

// LoadFixtureFile reads a fixture from a file.
func LoadFixtureFile(path string) (*Fixture, error) {
	fh, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, oops.Code("FIXTURE_READ_FAILED").With("path", path).Wrap(err)
	}
	defer func() { _ = fh.Close() }()
	f, err := LoadFixture(fh)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return f, nil
}

func refOr(r *dbref.Ref, def dbref.Ref) dbref.Ref {
	if r == nil {
		return def
	}
	return *r
}

// Build creates a MemGraph from the fixture. Objects are added in fixture
// order, which fixes the link order of every contents list.
func (f *Fixture) Build(opts ...MemGraphOption) (*MemGraph, error) {
	g := NewMemGraph(opts...)
	if f.God != nil {
		g.SetGod(*f.God)
	}
	if f.MasterRoom != nil {
		g.SetMasterRoom(*f.MasterRoom)
	}
	if f.PlayerStart != nil {
		g.SetPlayerStart(*f.PlayerStart)
	}
	for name, ref := range f.Ancestors {
		t, ok := ParseType(name)
		if !ok {
			return nil, oops.Code("FIXTURE_INVALID").With("ancestor", name).Errorf("unknown object type %q", name)
		}
		g.SetAncestor(t, ref)
	}

	for i, of := range f.Objects {
		t, ok := ParseType(of.Type)
		if !ok || t == TypeGarbage {
			return nil, oops.Code("FIXTURE_INVALID").With("index", i).With("ref", of.Ref).
				Errorf("object %s has unknown type %q", of.Ref, of.Type)
		}
		obj := Object{
			Ref:      of.Ref,
			Name:     strings.TrimSpace(of.Name),
			Type:     t,
			Location: refOr(of.Location, dbref.Nothing),
			Source:   refOr(of.Source, dbref.Nothing),
			Zone:     refOr(of.Zone, dbref.Nothing),
			Owner:    refOr(of.Owner, g.God()),
			Parent:   refOr(of.Parent, dbref.Nothing),
			Flags:    of.Flags,
			Powers:   of.Powers,
		}
		if t == TypeExit {
			obj.Location = refOr(of.Destination, dbref.Nothing)
		}
		if err := g.Add(obj); err != nil {
			return nil, oops.With("index", i).Wrap(err)
		}
	}
	return g, nil
}
