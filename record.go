package grafo

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

// Node is one concrete record of a node descriptor: a property bag bound
// to a label. Instances carry their own alias so several records of the
// same label can appear in one query.
type Node struct {
	entity *Entity
	alias  string
	props  map[string]any
}

// Edge is one concrete relationship record between two node instances.
type Edge struct {
	entity *Entity
	alias  string
	src    *Node
	dst    *Node
	props  map[string]any
}

// Record builds a node instance of this descriptor. The instance gets a
// random alias; use SetAlias to pick one explicitly.
func (e *Entity) Record(props map[string]any) (*Node, error) {
	if e.kind != KindNode {
		return nil, fmt.Errorf("%w: %s %s cannot back a node record", ErrConfiguration, e.kind, e.name)
	}
	if props == nil {
		props = map[string]any{}
	}

	return &Node{entity: e, alias: randomAlias(), props: props}, nil
}

// Connect builds an edge instance of this descriptor between two node
// instances.
func (e *Entity) Connect(src, dst *Node, props map[string]any) (*Edge, error) {
	if e.kind != KindEdge {
		return nil, fmt.Errorf("%w: %s %s cannot back an edge record", ErrConfiguration, e.kind, e.name)
	}
	if src == nil || dst == nil {
		return nil, fmt.Errorf("%w: both src and dst must be provided", ErrConfiguration)
	}
	if props == nil {
		props = map[string]any{}
	}

	return &Edge{entity: e, alias: randomAlias(), src: src, dst: dst, props: props}, nil
}

// Entity returns the descriptor the record was built from.
func (n *Node) Entity() *Entity { return n.entity }

// Alias returns the record's query alias.
func (n *Node) Alias() string { return n.alias }

// SetAlias overrides the record's query alias.
func (n *Node) SetAlias(alias string) { n.alias = alias }

// Properties returns the record's property bag.
func (n *Node) Properties() map[string]any { return n.props }

// Property returns one property value, or nil when unset.
func (n *Node) Property(name string) any { return n.props[name] }

// Set assigns one property value.
func (n *Node) Set(name string, value any) { n.props[name] = value }

// PKPattern renders the record's primary-key match pattern, e.g.
// (a:Page{path:"/home"}). Without a declared primary key the pattern
// carries no property map.
func (n *Node) PKPattern() (string, error) {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(n.alias)
	b.WriteString(":")
	b.WriteString(n.entity.name)

	if pk := n.entity.primaryKey; len(pk) > 0 {
		pkProps := make(map[string]any, len(pk))
		for _, field := range pk {
			v, ok := n.props[field]
			if !ok || v == nil {
				return "", fmt.Errorf("%w: primary-key field %q has no value on %s record",
					ErrConfiguration, field, n.entity.name)
			}
			pkProps[field] = v
		}
		b.WriteString(formatPropertyMap(pkProps))
	}

	b.WriteString(")")
	return b.String(), nil
}

// MergeCypher renders the upsert query for the record: MERGE on the
// primary-key pattern, then ON CREATE SET / ON MATCH SET for every
// non-key property. Nil-valued properties are skipped so a merge never
// erases server-side state.
func (n *Node) MergeCypher() (string, error) {
	pkPattern, err := n.PKPattern()
	if err != nil {
		return "", err
	}

	assignments := n.setClauses(nil)
	if len(assignments) == 0 {
		return "MERGE " + pkPattern, nil
	}

	set := strings.Join(assignments, ", ")
	return "MERGE " + pkPattern + " ON CREATE SET " + set + " ON MATCH SET " + set, nil
}

// setClauses renders alias.field=value assignments for every non-nil
// non-primary-key property, sorted by field name. extraSkip excludes
// additional fields.
func (n *Node) setClauses(extraSkip map[string]bool) []string {
	skip := make(map[string]bool, len(n.entity.primaryKey)+len(extraSkip))
	for _, pk := range n.entity.primaryKey {
		skip[pk] = true
	}
	for f := range extraSkip {
		skip[f] = true
	}

	fields := make([]string, 0, len(n.props))
	for f := range n.props {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	clauses := make([]string, 0, len(fields))
	for _, f := range fields {
		if skip[f] || n.props[f] == nil {
			continue
		}
		clauses = append(clauses, n.alias+"."+f+"="+FormatValue(n.props[f]))
	}
	return clauses
}

// Entity returns the descriptor the record was built from.
func (e *Edge) Entity() *Entity { return e.entity }

// Alias returns the record's query alias.
func (e *Edge) Alias() string { return e.alias }

// SetAlias overrides the record's query alias.
func (e *Edge) SetAlias(alias string) { e.alias = alias }

// Src returns the source node instance.
func (e *Edge) Src() *Node { return e.src }

// Dst returns the destination node instance.
func (e *Edge) Dst() *Node { return e.dst }

// Properties returns the record's property bag.
func (e *Edge) Properties() map[string]any { return e.props }

// Pattern renders the relationship pattern between the endpoint aliases,
// e.g. (a)-[:links{weight:2}]->(b). Endpoints appear by alias only; the
// caller is responsible for binding them earlier in the query.
func (e *Edge) Pattern() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(e.src.alias)
	b.WriteString(")-[:")
	b.WriteString(e.entity.name)
	b.WriteString(formatPropertyMap(e.props))
	b.WriteString("]->(")
	b.WriteString(e.dst.alias)
	b.WriteString(")")
	return b.String()
}

// MergeCypher renders the upsert query for the edge. Both endpoints are
// matched by their primary-key patterns first so the MERGE binds existing
// nodes instead of creating anonymous ones.
func (e *Edge) MergeCypher() (string, error) {
	srcPattern, err := e.src.PKPattern()
	if err != nil {
		return "", err
	}
	dstPattern, err := e.dst.PKPattern()
	if err != nil {
		return "", err
	}

	return "MATCH " + srcPattern + " MATCH " + dstPattern + " MERGE " + e.Pattern(), nil
}

const aliasAlphabet = "abcdefghijklmnopqrstuvwxyz"

// randomAlias returns a 10-character lowercase alias for a record.
func randomAlias() string {
	b := make([]byte, 10)
	for i := range b {
		b[i] = aliasAlphabet[rand.IntN(len(aliasAlphabet))]
	}
	return string(b)
}
