package grafo

import (
	"strconv"
	"strings"
)

// Select builds a Cypher read statement: MATCH / OPTIONAL MATCH / WHERE /
// WITH / REMOVE / RETURN / ORDER BY / SKIP / LIMIT. Clause-adding methods
// may be called in any order; Compile assembles the clauses in grammar
// order. A Select is not safe for concurrent mutation, but a fully built
// statement may be compiled repeatedly and concurrently: each Compile
// call works on its own context.
type Select struct {
	statement

	returnItems []any
	distinct    bool
	orderBy     []any
	removeItems []*RemoveExpr
	skipVal     *int
	limitVal    *int
}

// NewSelect creates a Select statement. Entities given here serve as a
// fallback for MATCH and RETURN derivation when Match is never called.
func NewSelect(entities ...*Entity) *Select {
	s := &Select{}
	s.entities = entities

	return s
}

// Match adds patterns to the MATCH clause. After With has been called,
// patterns go to a second MATCH emitted after the WITH clause.
func (s *Select) Match(patterns ...Pattern) *Select {
	s.addMatch(false, patterns)
	return s
}

// OptionalMatch adds patterns matched with OPTIONAL MATCH.
func (s *Select) OptionalMatch(patterns ...Pattern) *Select {
	s.addMatch(true, patterns)
	return s
}

// Where adds filter conditions, joined with AND. Conditions added after
// With apply after the WITH clause.
func (s *Select) Where(conds ...Expr) *Select {
	s.addWhere(conds)
	return s
}

// With adds a WITH projection. Items may be entities, As rebindings,
// expressions, or verbatim strings. Aliases introduced here shadow
// earlier bindings for all following clauses.
func (s *Select) With(items ...any) *Select {
	s.addWith(items)
	return s
}

// Remove adds field references to the REMOVE clause.
func (s *Select) Remove(items ...*RemoveExpr) *Select {
	s.removeItems = append(s.removeItems, items...)
	return s
}

// Returns sets the RETURN projection explicitly. With no items the
// projection is still derived from the match items, so a statement
// always renders a RETURN clause.
func (s *Select) Returns(items ...any) *Select {
	if len(items) > 0 {
		s.returnItems = items
	}

	return s
}

// ReturnsDistinct sets the RETURN DISTINCT projection.
func (s *Select) ReturnsDistinct(items ...any) *Select {
	s.distinct = true
	return s.Returns(items...)
}

// OrderBy adds ordering terms: OrderByExpr values or verbatim strings.
func (s *Select) OrderBy(items ...any) *Select {
	s.orderBy = append(s.orderBy, items...)
	return s
}

// Skip sets the SKIP count. SKIP always precedes LIMIT in output.
func (s *Select) Skip(n int) *Select {
	s.skipVal = &n
	return s
}

// Limit sets the LIMIT count.
func (s *Select) Limit(n int) *Select {
	s.limitVal = &n
	return s
}

// Compile assembles the statement into Cypher text and parameters. The
// statement is not mutated; compiling twice yields identical output.
func (s *Select) Compile() (Compiled, error) {
	cx := newCompileContext()

	var parts []string

	// Phase 1: lower pre-WITH patterns, extending the alias map.
	items := s.matchItems
	if len(items) == 0 && len(s.entities) > 0 {
		items = entityMatchItems(s.entities)
	}

	clauses, err := buildMatchClauses(items, cx)
	if err != nil {
		return Compiled{}, err
	}
	parts = append(parts, clauses...)
	registerEntities(s.entities, cx.aliases)

	// Phase 2: filters against the pre-WITH alias map.
	if w := buildWhereClause(s.wherePre, cx); w != "" {
		parts = append(parts, w)
	}

	// Phase 3: WITH projection; may rebind aliases for later phases.
	if w := s.buildWithClause(cx); w != "" {
		parts = append(parts, w)
	}

	// Phase 4: post-WITH filters, then post-WITH matches and theirs.
	if w := buildWhereClause(s.whereAfterWith, cx); w != "" {
		parts = append(parts, w)
	}
	if len(s.matchAfterWith) > 0 {
		clauses, err := buildMatchClauses(s.matchAfterWith, cx)
		if err != nil {
			return Compiled{}, err
		}
		parts = append(parts, clauses...)

		if w := buildWhereClause(s.whereAfterMatch, cx); w != "" {
			parts = append(parts, w)
		}
	}

	// Phase 5: REMOVE.
	if len(s.removeItems) > 0 {
		removes := make([]string, len(s.removeItems))
		for i, r := range s.removeItems {
			removes[i] = r.cypher(cx)
		}
		parts = append(parts, "REMOVE "+strings.Join(removes, ", "))
	}

	// Phase 6: RETURN, auto-derived from pre-WITH matches unless set.
	returns := s.returnItems
	if len(returns) == 0 {
		returns = s.deriveReturn()
	}
	if len(returns) > 0 {
		projected := make([]string, len(returns))
		for i, item := range returns {
			projected[i] = projectionCypher(item, cx)
		}

		keyword := "RETURN "
		if s.distinct {
			keyword = "RETURN DISTINCT "
		}
		parts = append(parts, keyword+strings.Join(projected, ", "))
	}

	// Phase 7: ORDER BY, then SKIP strictly before LIMIT.
	if len(s.orderBy) > 0 {
		terms := make([]string, len(s.orderBy))
		for i, item := range s.orderBy {
			terms[i] = projectionCypher(item, cx)
		}
		parts = append(parts, "ORDER BY "+strings.Join(terms, ", "))
	}
	if s.skipVal != nil {
		parts = append(parts, "SKIP "+strconv.Itoa(*s.skipVal))
	}
	if s.limitVal != nil {
		parts = append(parts, "LIMIT "+strconv.Itoa(*s.limitVal))
	}

	return Compiled{
		Query:      strings.Join(parts, " "),
		Params:     cx.params.Map(),
		ParamOrder: cx.params.Names(),
	}, nil
}

// deriveReturn derives the RETURN projection from the pre-WITH match
// items, optional ones included: triples contribute source and
// destination (never the edge), single entities contribute themselves,
// raw patterns contribute nothing. Each descriptor projects once.
// Falls back to the explicit entities, then to a wildcard.
func (s *Select) deriveReturn() []any {
	var derived []any
	seen := make(map[*Entity]bool)

	add := func(e *Entity) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true
		derived = append(derived, e)
	}

	for _, item := range s.matchItems {
		for _, e := range entitiesOf(item.p) {
			add(e)
		}
	}

	if len(derived) == 0 {
		for _, e := range s.entities {
			add(e)
		}
	}
	if len(derived) == 0 {
		derived = []any{"*"}
	}

	return derived
}

// entityMatchItems turns explicit constructor entities into plain match
// items, for statements built without a Match call.
func entityMatchItems(entities []*Entity) []matchItem {
	items := make([]matchItem, 0, len(entities))
	for _, e := range entities {
		if e != nil {
			items = append(items, matchItem{p: e})
		}
	}

	return items
}
