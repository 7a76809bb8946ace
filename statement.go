package grafo

import "strings"

// Compiled is the output of compiling a statement: Cypher source text
// plus the parameter map. ParamOrder lists parameter names in the exact
// order serialization generated them.
type Compiled struct {
	Query      string
	Params     map[string]any
	ParamOrder []string
}

// Statement is any compilable statement (Select or Delete).
type Statement interface {
	Compile() (Compiled, error)
}

// AliasedEntity is a WITH projection that rebinds an entity to a new
// alias, visible to all subsequent clauses.
type AliasedEntity struct {
	entity *Entity
	name   string
}

// As projects an entity under a new alias in a WITH clause.
func As(e *Entity, name string) AliasedEntity {
	return AliasedEntity{entity: e, name: name}
}

// statement holds the clause accumulators shared by Select and Delete.
// Mutation happens only through the clause-adding methods; Compile reads
// the accumulators without modifying them.
type statement struct {
	entities []*Entity

	matchItems     []matchItem
	matchAfterWith []matchItem

	wherePre        []Expr
	whereAfterWith  []Expr
	whereAfterMatch []Expr

	withItems  []any
	withCalled bool
}

// addMatch routes patterns into the pre- or post-WITH accumulator
// depending on whether With has been called. A Match issued after With
// must not retroactively appear before the WITH clause.
func (s *statement) addMatch(optional bool, patterns []Pattern) {
	target := &s.matchItems
	if s.withCalled && !optional {
		target = &s.matchAfterWith
	}
	for _, p := range patterns {
		*target = append(*target, matchItem{optional: optional, p: p})
	}
}

func (s *statement) addWhere(conds []Expr) {
	switch {
	case s.withCalled && len(s.matchAfterWith) > 0:
		s.whereAfterMatch = append(s.whereAfterMatch, conds...)
	case s.withCalled:
		s.whereAfterWith = append(s.whereAfterWith, conds...)
	default:
		s.wherePre = append(s.wherePre, conds...)
	}
}

func (s *statement) addWith(items []any) {
	s.withItems = append(s.withItems, items...)
	s.withCalled = true
}

// buildMatchClauses lowers match items to clause strings, registering
// aliases as a side effect on the context. Plain patterns are combined
// into one MATCH clause; each optional pattern gets its own
// OPTIONAL MATCH clause after it.
func buildMatchClauses(items []matchItem, cx *compileContext) ([]string, error) {
	var plain, optional []string

	for _, item := range items {
		text, err := lowerPattern(item.p, cx.aliases)
		if err != nil {
			return nil, err
		}
		if item.optional {
			optional = append(optional, text)
		} else {
			plain = append(plain, text)
		}
	}

	var clauses []string
	if len(plain) > 0 {
		clauses = append(clauses, "MATCH "+strings.Join(plain, ", "))
	}
	for _, p := range optional {
		clauses = append(clauses, "OPTIONAL MATCH "+p)
	}

	return clauses, nil
}

// buildWhereClause serializes conditions into a WHERE clause, joining
// multiple conditions with AND. Returns "" when there are none.
func buildWhereClause(conds []Expr, cx *compileContext) string {
	if len(conds) == 0 {
		return ""
	}

	parts := make([]string, len(conds))
	for i, cond := range conds {
		parts[i] = cond.cypher(cx)
	}

	return "WHERE " + strings.Join(parts, " AND ")
}

// buildWithClause serializes the WITH projection and applies its alias
// rebindings. Rebindings take effect only after every item has
// serialized, so items within one WITH still see the pre-WITH aliases.
// Flips the context's afterWith flag.
func (s *statement) buildWithClause(cx *compileContext) string {
	if len(s.withItems) == 0 {
		return ""
	}

	parts := make([]string, 0, len(s.withItems))
	rebinds := make(map[*Entity]string)

	for _, item := range s.withItems {
		switch it := item.(type) {
		case AliasedEntity:
			parts = append(parts, cx.aliases.aliasFor(it.entity)+" AS "+it.name)
			rebinds[it.entity] = it.name
		case *Entity:
			parts = append(parts, cx.aliases.aliasFor(it))
		case Expr:
			parts = append(parts, it.cypher(cx))
		case string:
			parts = append(parts, it)
		default:
			parts = append(parts, FormatValue(it))
		}
	}

	for e, alias := range rebinds {
		cx.aliases.rebind(e, alias)
	}
	cx.afterWith = true

	return "WITH " + strings.Join(parts, ", ")
}

// projectionCypher serializes one RETURN/WITH-style item: strings pass
// through verbatim (wildcards, bare labels), entities resolve to their
// alias, expressions serialize normally.
func projectionCypher(item any, cx *compileContext) string {
	switch it := item.(type) {
	case string:
		return it
	case *Entity:
		return cx.aliases.aliasFor(it)
	case Expr:
		return it.cypher(cx)
	default:
		return FormatValue(it)
	}
}

// registerEntities records the aliases of explicitly supplied entities
// without emitting text, so expressions over unmatched entities resolve
// consistently.
func registerEntities(entities []*Entity, aliases AliasMap) {
	for _, e := range entities {
		if e != nil {
			aliases.register(e)
		}
	}
}
