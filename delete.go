package grafo

import "strings"

// Delete builds a Cypher DELETE or DETACH DELETE statement. The delete
// targets are extracted from the match patterns (source, edge, and
// destination aliases of each triple) or, failing that, from the
// explicit entities; a statement with no resolvable target still
// compiles, deleting the generic fallback alias.
type Delete struct {
	statement

	detach      bool
	returnItems []any
}

// NewDelete creates a Delete statement. Entities given here serve as a
// fallback source of match patterns and delete targets.
func NewDelete(entities ...*Entity) *Delete {
	d := &Delete{}
	d.entities = entities

	return d
}

// Match adds patterns to the MATCH clause.
func (d *Delete) Match(patterns ...Pattern) *Delete {
	d.addMatch(false, patterns)
	return d
}

// OptionalMatch adds patterns matched with OPTIONAL MATCH.
func (d *Delete) OptionalMatch(patterns ...Pattern) *Delete {
	d.addMatch(true, patterns)
	return d
}

// Where adds filter conditions, joined with AND.
func (d *Delete) Where(conds ...Expr) *Delete {
	d.addWhere(conds)
	return d
}

// With adds a WITH projection between the matches and the delete.
func (d *Delete) With(items ...any) *Delete {
	d.addWith(items)
	return d
}

// Detach switches the statement to DETACH DELETE. It affects no other
// clause.
func (d *Delete) Detach() *Delete {
	d.detach = true
	return d
}

// Returns adds an optional RETURN clause after the delete.
func (d *Delete) Returns(items ...any) *Delete {
	d.returnItems = append(d.returnItems, items...)
	return d
}

// Compile assembles the statement into Cypher text and parameters.
func (d *Delete) Compile() (Compiled, error) {
	cx := newCompileContext()

	var parts []string

	items := d.matchItems
	if len(items) == 0 && len(d.entities) > 0 {
		items = entityMatchItems(d.entities)
	}

	clauses, err := buildMatchClauses(items, cx)
	if err != nil {
		return Compiled{}, err
	}
	parts = append(parts, clauses...)
	registerEntities(d.entities, cx.aliases)

	if w := d.buildWithClause(cx); w != "" {
		parts = append(parts, w)
	}

	conds := make([]Expr, 0, len(d.wherePre)+len(d.whereAfterWith)+len(d.whereAfterMatch))
	conds = append(conds, d.wherePre...)
	conds = append(conds, d.whereAfterWith...)
	conds = append(conds, d.whereAfterMatch...)
	if w := buildWhereClause(conds, cx); w != "" {
		parts = append(parts, w)
	}

	keyword := "DELETE"
	if d.detach {
		keyword = "DETACH DELETE"
	}
	parts = append(parts, keyword+" "+strings.Join(d.deleteTargets(cx), ", "))

	if len(d.returnItems) > 0 {
		projected := make([]string, len(d.returnItems))
		for i, item := range d.returnItems {
			projected[i] = projectionCypher(item, cx)
		}
		parts = append(parts, "RETURN "+strings.Join(projected, ", "))
	}

	return Compiled{
		Query:      strings.Join(parts, " "),
		Params:     cx.params.Map(),
		ParamOrder: cx.params.Names(),
	}, nil
}

// deleteTargets resolves the aliases the delete applies to, in match
// order, deduplicated. Optional and raw patterns contribute nothing.
func (d *Delete) deleteTargets(cx *compileContext) []string {
	var targets []string
	seen := make(map[string]bool)

	add := func(e *Entity) {
		if e == nil {
			return
		}
		alias := cx.aliases.aliasFor(e)
		if !seen[alias] {
			seen[alias] = true
			targets = append(targets, alias)
		}
	}

	for _, item := range d.matchItems {
		if item.optional {
			continue
		}
		switch p := item.p.(type) {
		case *Entity:
			add(p)
		case Path:
			add(p.Src)
			if edge, ok := p.Edge.(*Entity); ok {
				add(edge)
			}
			add(p.Dst)
		}
	}

	if len(targets) == 0 {
		for _, e := range d.entities {
			add(e)
		}
	}
	if len(targets) == 0 {
		targets = []string{fallbackAlias}
	}

	return targets
}
