// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package attribute stores object attributes. Each object's attributes are
// kept sorted by name with the branch separator collating lowest, so every
// branch attribute is immediately followed by its subtree.
package attribute

import (
	"log/slog"
	"slices"
	"strings"
	"unique"

	"github.com/klauspost/compress/s2"

	"github.com/holomush/pennmush/internal/dbref"
	"github.com/holomush/pennmush/internal/pattern"
	"github.com/holomush/pennmush/internal/world"
)

// Separator divides an attribute name into branch segments.
const Separator = '`'

// Limits bounds attribute storage.
type Limits struct {
	// MaxParents bounds the explicit parent chain walked for inheritance.
	MaxParents int `koanf:"max_parents" json:"max_parents"`
	// MaxAttrs is the per-object attribute ceiling.
	MaxAttrs int `koanf:"max_attrs" json:"max_attrs"`
	// HugeAttrs is the ceiling for objects with the MANY_ATTRIBS power.
	HugeAttrs int `koanf:"huge_attrs" json:"huge_attrs"`
	// NameLimit is the longest accepted attribute name.
	NameLimit int `koanf:"name_limit" json:"name_limit"`
	// EmptyAttrs keeps attributes set to the empty string instead of
	// clearing them.
	EmptyAttrs bool `koanf:"empty_attrs" json:"empty_attrs"`
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		MaxParents: 10,
		MaxAttrs:   2048,
		HugeAttrs:  8192,
		NameLimit:  1024,
		EmptyAttrs: true,
	}
}

// Attribute is one named value on an object.
type Attribute struct {
	name    unique.Handle[string]
	data    []byte
	flags   Flags
	creator dbref.Ref
}

// Name returns the attribute's full uppercase name.
func (a *Attribute) Name() string { return a.name.Value() }

// Flags returns the attribute's flags.
func (a *Attribute) Flags() Flags { return a.flags }

// Creator returns the owner of whoever last wrote the attribute.
func (a *Attribute) Creator() dbref.Ref { return a.creator }

// IsRoot reports whether the attribute has branch children.
func (a *Attribute) IsRoot() bool { return a.flags&FlagRoot != 0 }

// Value returns the decompressed value.
func (a *Attribute) Value() string {
	if len(a.data) == 0 {
		return ""
	}
	out, err := s2.Decode(nil, a.data)
	if err != nil {
		slog.Error("corrupt attribute value", "attribute", a.Name(), "error", err)
		return ""
	}
	return string(out)
}

func (a *Attribute) setValue(v string) {
	if v == "" {
		a.data = nil
		return
	}
	a.data = s2.Encode(nil, []byte(v))
}

// Observer is told about every change the store makes, so a persistence
// layer can follow along.
type Observer interface {
	AttributeSet(obj dbref.Ref, rec Record)
	AttributeCleared(obj dbref.Ref, name string)
	AttributesFreed(obj dbref.Ref)
}

// Store holds the attributes of every object. It is not safe for
// concurrent use; the dispatcher serialises access.
type Store struct {
	graph    world.Graph
	std      *StandardTable
	matcher  *pattern.Matcher
	limits   Limits
	logger   *slog.Logger
	observer Observer
	objs     map[dbref.Ref][]*Attribute
}

// Option configures a Store.
type Option func(*Store)

// WithStandard sets the standard attribute table.
func WithStandard(t *StandardTable) Option {
	return func(s *Store) { s.std = t }
}

// WithMatcher sets the pattern matcher used by command matching.
func WithMatcher(m *pattern.Matcher) Option {
	return func(s *Store) { s.matcher = m }
}

// WithLimits overrides the default limits. Zero numeric fields keep their
// defaults.
func WithLimits(l Limits) Option {
	return func(s *Store) {
		def := DefaultLimits()
		if l.MaxParents <= 0 {
			l.MaxParents = def.MaxParents
		}
		if l.MaxAttrs <= 0 {
			l.MaxAttrs = def.MaxAttrs
		}
		if l.HugeAttrs <= 0 {
			l.HugeAttrs = def.HugeAttrs
		}
		if l.NameLimit <= 0 {
			l.NameLimit = def.NameLimit
		}
		s.limits = l
	}
}

// WithLogger sets the store's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithObserver registers an observer for attribute changes.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// NewStore creates an empty store over the given object graph.
func NewStore(g world.Graph, opts ...Option) *Store {
	s := &Store{
		graph:  g,
		limits: DefaultLimits(),
		logger: slog.Default(),
		objs:   make(map[dbref.Ref][]*Attribute),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.std == nil {
		s.std = DefaultStandard()
	}
	if s.matcher == nil {
		s.matcher = pattern.New(pattern.WithLogger(s.logger))
	}
	return s
}

// Standard returns the store's standard attribute table.
func (s *Store) Standard() *StandardTable { return s.std }

// Matcher returns the store's pattern matcher.
func (s *Store) Matcher() *pattern.Matcher { return s.matcher }

// Limits returns the limits in force.
func (s *Store) Limits() Limits { return s.limits }

// Graph returns the object graph the store consults.
func (s *Store) Graph() world.Graph { return s.graph }

// ValidName reports whether name is an acceptable attribute name.
func (s *Store) ValidName(name string) bool {
	return validName(name, s.limits.NameLimit)
}

func validName(name string, limit int) bool {
	if name == "" || len(name) > limit {
		return false
	}
	if name[0] == Separator || name[len(name)-1] == Separator || strings.Contains(name, "``") {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !validNameByte(name[i]) {
			return false
		}
	}
	return true
}

func validNameByte(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'A' && c <= 'Z':
		return true
	}
	return strings.IndexByte("_#@$!~|;`\"'&*-+=?/.><,", c) >= 0
}

// collate orders names with the separator below every other character.
func collate(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ca, cb := a[i], b[i]
		if ca == cb {
			continue
		}
		if ca == Separator {
			return -1
		}
		if cb == Separator {
			return 1
		}
		if ca < cb {
			return -1
		}
		return 1
	}
	return len(a) - len(b)
}

// branches returns the proper branch prefixes of name, shortest first.
func branches(name string) []string {
	var out []string
	for i := 0; i < len(name); i++ {
		if name[i] == Separator {
			out = append(out, name[:i])
		}
	}
	return out
}

func childOf(child, parent string) bool {
	return len(child) > len(parent) && child[len(parent)] == Separator && strings.HasPrefix(child, parent)
}

func (s *Store) search(obj dbref.Ref, name string) (int, bool) {
	return slices.BinarySearchFunc(s.objs[obj], name, func(a *Attribute, n string) int {
		return collate(a.Name(), n)
	})
}

func (s *Store) lookup(obj dbref.Ref, name string) *Attribute {
	i, ok := s.search(obj, name)
	if !ok {
		return nil
	}
	return s.objs[obj][i]
}

func (s *Store) insert(obj dbref.Ref, a *Attribute) {
	i, _ := s.search(obj, a.Name())
	s.objs[obj] = slices.Insert(s.objs[obj], i, a)
}

func (s *Store) remove(obj dbref.Ref, name string) {
	i, ok := s.search(obj, name)
	if !ok {
		return
	}
	s.objs[obj] = slices.Delete(s.objs[obj], i, i+1)
	if len(s.objs[obj]) == 0 {
		delete(s.objs, obj)
	}
	if s.observer != nil {
		s.observer.AttributeCleared(obj, name)
	}
}

func (s *Store) notifySet(obj dbref.Ref, a *Attribute) {
	if s.observer != nil {
		s.observer.AttributeSet(obj, recordOf(a))
	}
}

// Count returns the number of attributes on obj.
func (s *Store) Count(obj dbref.Ref) int {
	return len(s.objs[obj])
}

// List returns obj's attributes in collation order.
func (s *Store) List(obj dbref.Ref) []*Attribute {
	return slices.Clone(s.objs[obj])
}

// Get returns the attribute named name on obj itself, resolving standard
// aliases. Invalid names and missing attributes yield nil.
func (s *Store) Get(obj dbref.Ref, name string) *Attribute {
	name = strings.ToUpper(name)
	if !s.ValidName(name) {
		return nil
	}
	if a := s.lookup(obj, name); a != nil {
		return a
	}
	if canon, ok := s.std.Canonical(name); ok {
		return s.lookup(obj, canon)
	}
	return nil
}

// chain returns obj followed by its parents and then its ancestor's chain,
// bounded by MaxParents. An ancestor that already appears among the
// parents is not visited twice.
func (s *Store) chain(obj dbref.Ref) []dbref.Ref {
	ancestor := world.AncestorOf(s.graph, obj)
	var out []dbref.Ref
	target, depth := obj, 0
	for depth < s.limits.MaxParents && s.graph.Good(target) {
		if target == ancestor {
			ancestor = dbref.Nothing
		}
		out = append(out, target)
		depth++
		target = s.graph.Parent(target)
		if !s.graph.Good(target) {
			depth = 0
			target = ancestor
			ancestor = dbref.Nothing
		}
	}
	return out
}

// GetInherited finds name on obj or the first object in its parent chain
// that defines it. Private attributes and branches on parents hide the
// name. With commandOnly, an attribute under a no_command branch is also
// hidden. The second result is the object the attribute was found on.
func (s *Store) GetInherited(obj dbref.Ref, name string, commandOnly bool) (*Attribute, dbref.Ref) {
	name = strings.ToUpper(name)
	if !s.ValidName(name) {
		return nil, dbref.Nothing
	}
	if a, where := s.getWithParent(obj, name, commandOnly); a != nil {
		return a, where
	}
	if canon, ok := s.std.Canonical(name); ok && canon != name {
		return s.getWithParent(obj, canon, commandOnly)
	}
	return nil, dbref.Nothing
}

func (s *Store) getWithParent(obj dbref.Ref, name string, commandOnly bool) (*Attribute, dbref.Ref) {
	hidden := func(target dbref.Ref, a *Attribute) bool {
		return (target != obj && a.flags&FlagPrivate != 0) || (commandOnly && a.flags&FlagNoProg != 0)
	}
next:
	for _, target := range s.chain(obj) {
		if target != obj || commandOnly {
			for _, b := range branches(name) {
				root := s.lookup(target, b)
				if root == nil {
					continue next
				}
				if hidden(target, root) {
					return nil, dbref.Nothing
				}
			}
		}
		if a := s.lookup(target, name); a != nil {
			if hidden(target, a) {
				return nil, dbref.Nothing
			}
			return a, target
		}
	}
	return nil, dbref.Nothing
}

// Add sets name on obj to value on behalf of actor. Missing branch
// attributes are created as roots. flags are added to the defaults from
// the standard attribute table.
func (s *Store) Add(obj dbref.Ref, name, value string, actor dbref.Ref, flags Flags) Result {
	name = strings.ToUpper(name)
	if value == "" && !s.limits.EmptyAttrs {
		return s.Clear(obj, name, actor)
	}
	if !s.ValidName(name) {
		return Result{Code: BadName}
	}
	flags &^= internalFlags

	a := s.lookup(obj, name)
	if a != nil {
		if a.flags&FlagSafe != 0 {
			return Result{Code: Safe}
		}
		if r := s.checkWrite(actor, obj, a, true); !r.OK() {
			return r
		}
	} else {
		if r := s.checkCreate(actor, obj, name, flags); !r.OK() {
			return r
		}
		owner := s.graph.Owner(actor)
		for _, b := range branches(name) {
			root := s.lookup(obj, b)
			if root == nil {
				root = &Attribute{name: unique.Make(b), creator: owner}
				root.flags = (s.defaultFlags(b, flags) &^ (FlagCommand | FlagListen)) | FlagRoot
				if !s.limits.EmptyAttrs {
					root.setValue(" ")
				}
				s.insert(obj, root)
				s.touch(obj, root)
			} else {
				root.flags |= FlagRoot
			}
			s.notifySet(obj, root)
		}
		a = &Attribute{name: unique.Make(name), flags: s.defaultFlags(name, flags)}
		s.insert(obj, a)
	}

	s.touch(obj, a)
	a.creator = s.graph.Owner(actor)
	a.setValue(value)
	a.flags &^= FlagCommand | FlagListen
	a.flags |= commandFlags(value)
	if a.flags&(FlagCommand|FlagListen) != 0 && a.flags&FlagRegexp != 0 && !isAnchored(value) {
		s.logger.Debug("unanchored regexp command", "object", obj.String(), "attribute", name)
	}
	s.notifySet(obj, a)
	return Result{Code: OK}
}

func (s *Store) defaultFlags(name string, flags Flags) Flags {
	if std, ok := s.std.Lookup(name); ok {
		return std.Flags | flags
	}
	return flags
}

func (s *Store) touch(obj dbref.Ref, a *Attribute) {
	if s.graph.Type(obj) != world.TypePlayer && a.flags&FlagNoDump == 0 {
		s.graph.Touch(obj)
	}
}

// commandFlags returns the COMMAND or LISTEN flag for values that look
// like $ or ^ patterns.
func commandFlags(value string) Flags {
	if len(value) < 2 || !pattern.HasUnescaped(value, pattern.DefaultDelimiter) {
		return 0
	}
	switch value[0] {
	case '$':
		return FlagCommand
	case '^':
		return FlagListen
	}
	return 0
}

func isAnchored(value string) bool {
	return len(value) > 1 && value[1] == '^'
}

// SetFlags changes flags on an existing attribute. The SAFE flag does not
// block flag changes.
func (s *Store) SetFlags(obj dbref.Ref, name string, actor dbref.Ref, set, clear Flags) Result {
	name = strings.ToUpper(name)
	a := s.lookup(obj, name)
	if a == nil {
		return Result{Code: NotFound}
	}
	if r := s.checkWrite(actor, obj, a, false); !r.OK() {
		return r
	}
	if (set|clear)&FlagWizard != 0 && !world.Wizard(s.graph, actor) {
		return Result{Code: Failed}
	}
	a.flags = (a.flags | (set &^ internalFlags)) &^ (clear &^ internalFlags)
	s.notifySet(obj, a)
	return Result{Code: OK}
}

// Clear removes a leaf attribute. A branch attribute with children cannot
// be cleared this way.
func (s *Store) Clear(obj dbref.Ref, name string, actor dbref.Ref) Result {
	return s.clear(obj, strings.ToUpper(name), actor, false)
}

// Wipe removes an attribute and every child actor may write. If any child
// survives the attribute is kept and Tree is returned; children already
// removed stay removed.
func (s *Store) Wipe(obj dbref.Ref, name string, actor dbref.Ref) Result {
	return s.clear(obj, strings.ToUpper(name), actor, true)
}

func (s *Store) clear(obj dbref.Ref, name string, actor dbref.Ref, wipe bool) Result {
	a := s.lookup(obj, name)
	if a == nil {
		return Result{Code: NotFound}
	}
	if a.flags&FlagSafe != 0 {
		return Result{Code: Safe}
	}
	if r := s.checkWrite(actor, obj, a, true); !r.OK() {
		return r
	}
	if a.IsRoot() {
		if !wipe {
			return Result{Code: Tree}
		}
		s.clearChildren(obj, name, actor)
		if s.hasChildren(obj, name) {
			return Result{Code: Tree}
		}
	}

	s.touch(obj, a)
	s.remove(obj, name)
	s.pruneRoot(obj, name)
	return Result{Code: OK}
}

// clearChildren removes the writable descendants of name, deepest first.
func (s *Store) clearChildren(obj dbref.Ref, name string, actor dbref.Ref) {
	kids := s.subtree(obj, name)
	slices.Reverse(kids)
	for _, a := range kids {
		if a.flags&FlagSafe != 0 || !s.checkWrite(actor, obj, a, true).OK() {
			continue
		}
		if a.IsRoot() && s.hasChildren(obj, a.Name()) {
			continue
		}
		s.touch(obj, a)
		s.remove(obj, a.Name())
		s.pruneRoot(obj, a.Name())
	}
}

// subtree returns the descendants of name in collation order.
func (s *Store) subtree(obj dbref.Ref, name string) []*Attribute {
	list := s.objs[obj]
	i, _ := s.search(obj, name)
	if i < len(list) && list[i].Name() == name {
		i++
	}
	var out []*Attribute
	for ; i < len(list) && childOf(list[i].Name(), name); i++ {
		out = append(out, list[i])
	}
	return out
}

func (s *Store) hasChildren(obj dbref.Ref, name string) bool {
	list := s.objs[obj]
	i, found := s.search(obj, name)
	if found {
		i++
	}
	return i < len(list) && childOf(list[i].Name(), name)
}

// pruneRoot drops the root flag from name's immediate branch once it has
// no children left.
func (s *Store) pruneRoot(obj dbref.Ref, name string) {
	bs := branches(name)
	if len(bs) == 0 {
		return
	}
	parent := s.lookup(obj, bs[len(bs)-1])
	if parent != nil && !s.hasChildren(obj, parent.Name()) {
		parent.flags &^= FlagRoot
		s.notifySet(obj, parent)
	}
}

// FreeAll removes every attribute from obj.
func (s *Store) FreeAll(obj dbref.Ref) {
	if _, ok := s.objs[obj]; !ok {
		return
	}
	delete(s.objs, obj)
	if s.graph.Good(obj) && s.graph.Type(obj) != world.TypePlayer {
		s.graph.Touch(obj)
	}
	if s.observer != nil {
		s.observer.AttributesFreed(obj)
	}
}

// Copy copies src's attributes onto dst, skipping no_clone attributes and
// everything below a no_clone branch, and stopping at dst's attribute
// ceiling. It returns the number copied.
func (s *Store) Copy(dst, src dbref.Ref) int {
	limit := s.maxAttrs(dst)
	n := 0
	var skipped []string
	for _, a := range s.objs[src] {
		name := a.Name()
		if a.flags&FlagNoCopy != 0 {
			skipped = append(skipped, name+"`")
			continue
		}
		if slices.ContainsFunc(skipped, func(prefix string) bool { return strings.HasPrefix(name, prefix) }) {
			continue
		}
		if s.Count(dst) >= limit {
			break
		}
		cp := &Attribute{name: a.name, data: slices.Clone(a.data), flags: a.flags, creator: a.creator}
		if i, ok := s.search(dst, name); ok {
			s.objs[dst][i] = cp
		} else {
			s.insert(dst, cp)
		}
		s.notifySet(dst, cp)
		n++
	}
	if n > 0 && s.graph.Type(dst) != world.TypePlayer {
		s.graph.Touch(dst)
	}
	return n
}

func (s *Store) maxAttrs(obj dbref.Ref) int {
	if s.graph.HasPower(obj, "MANY_ATTRIBS") {
		return s.limits.HugeAttrs
	}
	return s.limits.MaxAttrs
}
