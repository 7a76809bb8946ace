// Package grafo compiles object-oriented graph query descriptions into
// Cypher text plus a parameter map, and ships the transport glue to run
// the result against FalkorDB or Neo4j.
package grafo

import (
	"fmt"
	"strings"
)

// Kind distinguishes node descriptors from edge descriptors.
type Kind int

// Entity kinds.
const (
	KindNode Kind = iota
	KindEdge
)

func (k Kind) String() string {
	if k == KindEdge {
		return "edge"
	}
	return "node"
}

// Entity describes a declared record type: its display name (label for
// nodes, relation for edges), declared fields, and optional primary key.
// Descriptors are immutable once constructed; Alias returns a distinct
// copy so that alias maps can key on descriptor identity.
type Entity struct {
	kind       Kind
	name       string
	alias      string
	fields     []string
	primaryKey []string
}

// EntityOption configures an Entity during construction.
type EntityOption func(*Entity)

// Fields declares the field names of the entity.
func Fields(names ...string) EntityOption {
	return func(e *Entity) { e.fields = names }
}

// PrimaryKey declares the ordered primary-key field list. The fields must
// be among the declared Fields.
func PrimaryKey(fields ...string) EntityOption {
	return func(e *Entity) { e.primaryKey = fields }
}

// NewNode constructs a node descriptor. The label must be non-empty and
// primary-key fields must be declared fields.
func NewNode(label string, opts ...EntityOption) (*Entity, error) {
	return newEntity(KindNode, label, opts)
}

// NewEdge constructs an edge descriptor. The relation name must be
// non-empty and primary-key fields must be declared fields.
func NewEdge(relation string, opts ...EntityOption) (*Entity, error) {
	return newEntity(KindEdge, relation, opts)
}

// MustNode is like NewNode but panics on configuration errors. Intended
// for package-level declarative setup.
func MustNode(label string, opts ...EntityOption) *Entity {
	e, err := NewNode(label, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// MustEdge is like NewEdge but panics on configuration errors.
func MustEdge(relation string, opts ...EntityOption) *Entity {
	e, err := NewEdge(relation, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

func newEntity(kind Kind, name string, opts []EntityOption) (*Entity, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: %s name must be a non-empty string", ErrConfiguration, kind)
	}

	e := &Entity{kind: kind, name: name}
	for _, opt := range opts {
		opt(e)
	}

	if len(e.primaryKey) > 0 && len(e.fields) > 0 {
		declared := make(map[string]bool, len(e.fields))
		for _, f := range e.fields {
			declared[f] = true
		}
		for _, pk := range e.primaryKey {
			if !declared[pk] {
				return nil, fmt.Errorf("%w: primary-key field %q is not a declared field of %s %s",
					ErrConfiguration, pk, kind, name)
			}
		}
	}

	return e, nil
}

// Kind reports whether the descriptor is a node or an edge.
func (e *Entity) Kind() Kind { return e.kind }

// Name returns the display name: the label for nodes, the relation for edges.
func (e *Entity) Name() string { return e.name }

// ExplicitAlias returns the alias set via Alias, or "" if none was set.
func (e *Entity) ExplicitAlias() string { return e.alias }

// Fields returns the declared field names.
func (e *Entity) Fields() []string { return e.fields }

// PrimaryKeyFields returns the ordered primary-key field list.
func (e *Entity) PrimaryKeyFields() []string { return e.primaryKey }

// Alias returns a copy of the descriptor bound to an explicit alias. The
// copy has its own identity, so the same record type may appear under
// several aliases within one statement. An empty name panics: aliases are
// declarative setup and an empty one is a configuration bug, not a
// runtime condition.
func (e *Entity) Alias(name string) *Entity {
	if name == "" {
		panic(fmt.Errorf("%w: alias must be a non-empty string", ErrConfiguration))
	}

	aliased := *e
	aliased.alias = name
	return &aliased
}

// Field returns a field reference for use in expressions. This is the
// only expression-factory entry point; reading values off record
// instances is an ordinary map access on Node/Edge records.
func (e *Entity) Field(name string) *FieldRef {
	return &FieldRef{entity: e, name: name}
}

// defaultAlias resolves the textual alias for an entity outside any alias
// map: the explicit alias if set, else the lower-cased display name, else
// the generic fallback token.
func (e *Entity) defaultAlias() string {
	switch {
	case e == nil:
		return fallbackAlias
	case e.alias != "":
		return e.alias
	case e.name != "":
		return strings.ToLower(e.name)
	default:
		return fallbackAlias
	}
}

// fallbackAlias is used when nothing else is determinable. Referencing an
// entity that was never matched yields this token rather than an error.
const fallbackAlias = "n"

// pattern marks *Entity as a match pattern (a single node or edge).
func (e *Entity) pattern() {}

// edgePattern marks *Entity as usable in the edge slot of a Path.
func (e *Entity) edgePattern() {}
