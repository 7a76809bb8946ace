package grafo

import (
	"fmt"
	"strconv"
)

// Pattern is a logical match item: a single entity, a directed
// source-edge-destination triple, or a raw Cypher escape hatch.
type Pattern interface {
	pattern()
}

// Raw is a verbatim Cypher pattern fragment. It does not extend the alias
// map; the caller is responsible for any aliases it introduces.
type Raw string

func (Raw) pattern() {}

// Path is a directed triple: (src)-[edge]->(dst), always left-to-right.
type Path struct {
	Src  *Entity
	Edge EdgePattern
	Dst  *Entity
}

func (Path) pattern() {}

// EdgePattern is the edge slot of a Path: a normal edge descriptor or a
// variable-length descriptor.
type EdgePattern interface {
	edgePattern()
}

// VarLength describes a variable-length relationship: [:REL*MIN..MAX].
// Nil bounds are unbounded. Variable-length edges never carry an alias.
type VarLength struct {
	edge    *Entity
	minHops *int
	maxHops *int
}

func (VarLength) edgePattern() {}

// Hops returns a hop-count bound for VariableLength.
func Hops(n int) *int { return &n }

// VariableLength builds a variable-length edge descriptor. Bounds must be
// non-negative and min <= max when both are set.
func VariableLength(edge *Entity, minHops, maxHops *int) (VarLength, error) {
	if edge == nil {
		return VarLength{}, fmt.Errorf("%w: variable-length edge descriptor is required", ErrConfiguration)
	}
	if minHops != nil && *minHops < 0 {
		return VarLength{}, fmt.Errorf("%w: min hops must be >= 0", ErrConfiguration)
	}
	if maxHops != nil && *maxHops < 0 {
		return VarLength{}, fmt.Errorf("%w: max hops must be >= 0", ErrConfiguration)
	}
	if minHops != nil && maxHops != nil && *minHops > *maxHops {
		return VarLength{}, fmt.Errorf("%w: min hops must be <= max hops", ErrConfiguration)
	}

	return VarLength{edge: edge, minHops: minHops, maxHops: maxHops}, nil
}

// suffix renders the hop-range grammar: `*` unbounded, `*N` exact,
// `*MIN..MAX` bounded, `*MIN..` bounded below. There is no `*..MAX` form.
func (v VarLength) suffix() string {
	switch {
	case v.minHops == nil:
		return "*"
	case v.maxHops == nil:
		return "*" + strconv.Itoa(*v.minHops) + ".."
	case *v.minHops == *v.maxHops:
		return "*" + strconv.Itoa(*v.minHops)
	default:
		return "*" + strconv.Itoa(*v.minHops) + ".." + strconv.Itoa(*v.maxHops)
	}
}

// matchItem is a pattern with its optional-match flag, as accumulated by
// Match and OptionalMatch calls.
type matchItem struct {
	optional bool
	p        Pattern
}

// lowerPattern converts a pattern to Cypher text, registering any aliases
// it introduces into the map. Raw patterns pass through untouched.
func lowerPattern(p Pattern, aliases AliasMap) (string, error) {
	switch item := p.(type) {
	case *Entity:
		return lowerEntity(item, aliases)
	case Path:
		return lowerPath(item, aliases)
	case Raw:
		return string(item), nil
	default:
		return "", fmt.Errorf("%w: unsupported match pattern %T", ErrConfiguration, p)
	}
}

func lowerEntity(e *Entity, aliases AliasMap) (string, error) {
	if e == nil {
		return "", fmt.Errorf("%w: nil entity in match pattern", ErrConfiguration)
	}
	if e.Name() == "" && e.ExplicitAlias() == "" {
		return "", fmt.Errorf("%w: entity has neither a label nor an alias", ErrConfiguration)
	}

	alias := aliases.register(e)
	if e.Kind() == KindEdge {
		return "[" + alias + ":" + e.Name() + "]", nil
	}

	return "(" + alias + ":" + e.Name() + ")", nil
}

func lowerPath(p Path, aliases AliasMap) (string, error) {
	src, err := lowerEntity(p.Src, aliases)
	if err != nil {
		return "", fmt.Errorf("path source: %w", err)
	}

	edge, err := lowerEdge(p.Edge, aliases)
	if err != nil {
		return "", err
	}

	dst, err := lowerEntity(p.Dst, aliases)
	if err != nil {
		return "", fmt.Errorf("path destination: %w", err)
	}

	return src + "-" + edge + "->" + dst, nil
}

func lowerEdge(e EdgePattern, aliases AliasMap) (string, error) {
	switch edge := e.(type) {
	case *Entity:
		if edge == nil {
			return "", fmt.Errorf("%w: nil edge in path pattern", ErrConfiguration)
		}
		alias := aliases.register(edge)
		return "[" + alias + ":" + edge.Name() + "]", nil
	case VarLength:
		if edge.edge == nil {
			return "", fmt.Errorf("%w: variable-length edge descriptor is required", ErrConfiguration)
		}
		return "[:" + edge.edge.Name() + edge.suffix() + "]", nil
	case nil:
		return "", fmt.Errorf("%w: path pattern requires an edge", ErrConfiguration)
	default:
		return "", fmt.Errorf("%w: unsupported edge pattern %T", ErrConfiguration, e)
	}
}

// entitiesOf extracts the projectable entities of a pattern for RETURN
// auto-derivation: a triple contributes its source and destination, never
// the edge; a single entity contributes itself; raw patterns contribute
// nothing.
func entitiesOf(p Pattern) []*Entity {
	switch item := p.(type) {
	case *Entity:
		return []*Entity{item}
	case Path:
		return []*Entity{item.Src, item.Dst}
	default:
		return nil
	}
}
