package grafo

import "strings"

// Expr is a node in the expression tree. Serialization is a pure function
// of the node and the compile context: it never mutates the tree, only
// the context's parameter sink.
type Expr interface {
	cypher(cx *compileContext) string
}

// Comparison operators. Cypher spells "not equal" as <>; the != spelling
// never appears in output.
const (
	opEq         = "="
	opNe         = "<>"
	opLt         = "<"
	opLe         = "<="
	opGt         = ">"
	opGe         = ">="
	opIn         = "IN"
	opNotIn      = "NOT IN"
	opRegex      = "=~"
	opContains   = "CONTAINS"
	opStartsWith = "STARTS WITH"
	opEndsWith   = "ENDS WITH"
	opIsNull     = "IS NULL"
	opIsNotNull  = "IS NOT NULL"
)

// FieldRef references a field of an entity, serialized as <alias>.<field>.
type FieldRef struct {
	entity *Entity
	name   string
}

// Entity returns the referenced entity descriptor.
func (f *FieldRef) Entity() *Entity { return f.entity }

// Name returns the referenced field name.
func (f *FieldRef) Name() string { return f.name }

func (f *FieldRef) cypher(cx *compileContext) string {
	return cx.aliases.aliasFor(f.entity) + "." + f.name
}

// Comparison constructors.

// Eq builds field = value.
func (f *FieldRef) Eq(v any) *Binary { return &Binary{left: f, op: opEq, right: v} }

// Ne builds field <> value.
func (f *FieldRef) Ne(v any) *Binary { return &Binary{left: f, op: opNe, right: v} }

// Lt builds field < value.
func (f *FieldRef) Lt(v any) *Binary { return &Binary{left: f, op: opLt, right: v} }

// Le builds field <= value.
func (f *FieldRef) Le(v any) *Binary { return &Binary{left: f, op: opLe, right: v} }

// Gt builds field > value.
func (f *FieldRef) Gt(v any) *Binary { return &Binary{left: f, op: opGt, right: v} }

// Ge builds field >= value.
func (f *FieldRef) Ge(v any) *Binary { return &Binary{left: f, op: opGe, right: v} }

// In builds field IN values.
func (f *FieldRef) In(values ...any) *Binary { return &Binary{left: f, op: opIn, right: values} }

// NotIn builds field NOT IN values.
func (f *FieldRef) NotIn(values ...any) *Binary {
	return &Binary{left: f, op: opNotIn, right: values}
}

// Match builds field =~ pattern. FalkorDB does not support =~; prefer
// Contains or StartsWith there.
func (f *FieldRef) Match(pattern string) *Binary {
	return &Binary{left: f, op: opRegex, right: pattern}
}

// Contains builds field CONTAINS value.
func (f *FieldRef) Contains(v any) *Binary { return &Binary{left: f, op: opContains, right: v} }

// StartsWith builds field STARTS WITH value.
func (f *FieldRef) StartsWith(v string) *Binary {
	return &Binary{left: f, op: opStartsWith, right: v}
}

// EndsWith builds field ENDS WITH value.
func (f *FieldRef) EndsWith(v string) *Binary {
	return &Binary{left: f, op: opEndsWith, right: v}
}

// IsNull builds field IS NULL.
func (f *FieldRef) IsNull() *Binary { return &Binary{left: f, op: opIsNull} }

// IsNotNull builds field IS NOT NULL.
func (f *FieldRef) IsNotNull() *Binary { return &Binary{left: f, op: opIsNotNull} }

// Asc orders by this field ascending.
func (f *FieldRef) Asc() *OrderByExpr { return &OrderByExpr{expr: f, direction: Ascending} }

// Desc orders by this field descending.
func (f *FieldRef) Desc() *OrderByExpr { return &OrderByExpr{expr: f, direction: Descending} }

// Remove marks this field for a REMOVE clause.
func (f *FieldRef) Remove() *RemoveExpr { return &RemoveExpr{field: f} }

// Arithmetic constructors.

// Add builds field + value.
func (f *FieldRef) Add(v any) *Arithmetic { return &Arithmetic{left: f, op: "+", right: v} }

// Sub builds field - value.
func (f *FieldRef) Sub(v any) *Arithmetic { return &Arithmetic{left: f, op: "-", right: v} }

// Mul builds field * value.
func (f *FieldRef) Mul(v any) *Arithmetic { return &Arithmetic{left: f, op: "*", right: v} }

// Div builds field / value.
func (f *FieldRef) Div(v any) *Arithmetic { return &Arithmetic{left: f, op: "/", right: v} }

// Binary is a comparison: left operator right. For IS NULL and
// IS NOT NULL no parameter is emitted; every other operator pushes the
// right operand to the parameter sink, unless the right operand is itself
// an expression, which serializes inline.
type Binary struct {
	left  Expr
	op    string
	right any
}

func (b *Binary) cypher(cx *compileContext) string {
	left := b.left.cypher(cx)

	switch b.op {
	case opIsNull, opIsNotNull:
		return left + " " + b.op
	}

	if expr, ok := b.right.(Expr); ok {
		return left + " " + b.op + " " + expr.cypher(cx)
	}

	return left + " " + b.op + " $" + cx.params.Add(b.right)
}

// boolExpr combines two expressions with AND or OR. Nesting is always
// explicit parentheses; output never relies on operator precedence.
type boolExpr struct {
	left, right Expr
	op          string
}

func (b *boolExpr) cypher(cx *compileContext) string {
	return "(" + b.left.cypher(cx) + " " + b.op + " " + b.right.cypher(cx) + ")"
}

// And combines two conditions with AND.
func And(left, right Expr) Expr { return &boolExpr{left: left, right: right, op: "AND"} }

// Or combines two conditions with OR.
func Or(left, right Expr) Expr { return &boolExpr{left: left, right: right, op: "OR"} }

// Arithmetic is left op right with + - * /. Operands may be field
// references, function calls, or literals; literals serialize inline,
// not as parameters.
type Arithmetic struct {
	left  any
	op    string
	right any
	label string
}

// Arith builds an arbitrary arithmetic expression.
func Arith(left any, op string, right any) *Arithmetic {
	return &Arithmetic{left: left, op: op, right: right}
}

// As labels the result (AS <label>).
func (a *Arithmetic) As(label string) *Arithmetic {
	a.label = label
	return a
}

func (a *Arithmetic) cypher(cx *compileContext) string {
	if cx.afterWith && a.label != "" {
		return a.label
	}

	s := operandCypher(cx, a.left) + " " + a.op + " " + operandCypher(cx, a.right)
	if a.label != "" {
		s += " AS " + a.label
	}

	return s
}

// Gt builds arithmetic > value.
func (a *Arithmetic) Gt(v any) *Binary { return &Binary{left: a, op: opGt, right: v} }

// Lt builds arithmetic < value.
func (a *Arithmetic) Lt(v any) *Binary { return &Binary{left: a, op: opLt, right: v} }

// FuncCall is a Cypher function application. Function names are
// uppercased. After a WITH clause, a labeled call renders as its bare
// label so later phases reference the projection, not a re-expansion.
type FuncCall struct {
	name  string
	args  []any
	label string
}

// Func builds a function call; the name is uppercased.
func Func(name string, args ...any) *FuncCall {
	return &FuncCall{name: strings.ToUpper(name), args: args}
}

// As labels the call's result (AS <label>).
func (f *FuncCall) As(label string) *FuncCall {
	f.label = label
	return f
}

// Label returns the attached label, or "".
func (f *FuncCall) Label() string { return f.label }

func (f *FuncCall) cypher(cx *compileContext) string {
	if cx.afterWith && f.label != "" {
		return f.label
	}

	args := make([]string, len(f.args))
	for i, arg := range f.args {
		args[i] = operandCypher(cx, arg)
	}

	s := f.name + "(" + strings.Join(args, ", ") + ")"
	if f.label != "" {
		s += " AS " + f.label
	}

	return s
}

// Comparison constructors, for filtering on aggregates after WITH.

// Eq builds call = value.
func (f *FuncCall) Eq(v any) *Binary { return &Binary{left: f, op: opEq, right: v} }

// Ne builds call <> value.
func (f *FuncCall) Ne(v any) *Binary { return &Binary{left: f, op: opNe, right: v} }

// Lt builds call < value.
func (f *FuncCall) Lt(v any) *Binary { return &Binary{left: f, op: opLt, right: v} }

// Le builds call <= value.
func (f *FuncCall) Le(v any) *Binary { return &Binary{left: f, op: opLe, right: v} }

// Gt builds call > value.
func (f *FuncCall) Gt(v any) *Binary { return &Binary{left: f, op: opGt, right: v} }

// Ge builds call >= value.
func (f *FuncCall) Ge(v any) *Binary { return &Binary{left: f, op: opGe, right: v} }

// Add builds call + value.
func (f *FuncCall) Add(v any) *Arithmetic { return &Arithmetic{left: f, op: "+", right: v} }

// Sub builds call - value.
func (f *FuncCall) Sub(v any) *Arithmetic { return &Arithmetic{left: f, op: "-", right: v} }

// Convenience constructors for common functions.

// Count builds COUNT(...).
func Count(args ...any) *FuncCall { return Func("count", args...) }

// Sum builds SUM(expr).
func Sum(arg any) *FuncCall { return Func("sum", arg) }

// Avg builds AVG(expr).
func Avg(arg any) *FuncCall { return Func("avg", arg) }

// Min builds MIN(expr).
func Min(arg any) *FuncCall { return Func("min", arg) }

// Max builds MAX(expr).
func Max(arg any) *FuncCall { return Func("max", arg) }

// InDegree builds INDEGREE(node).
func InDegree(arg any) *FuncCall { return Func("indegree", arg) }

// OutDegree builds OUTDEGREE(node).
func OutDegree(arg any) *FuncCall { return Func("outdegree", arg) }

// Size builds SIZE(list).
func Size(arg any) *FuncCall { return Func("size", arg) }

// Head builds HEAD(list).
func Head(arg any) *FuncCall { return Func("head", arg) }

// Tail builds TAIL(list).
func Tail(arg any) *FuncCall { return Func("tail", arg) }

// Last builds LAST(list).
func Last(arg any) *FuncCall { return Func("last", arg) }

// CaseBranch is one WHEN/THEN pair of a CASE expression.
type CaseBranch struct {
	cond  Expr
	value any
}

// When builds a CASE branch.
func When(cond Expr, value any) CaseBranch {
	return CaseBranch{cond: cond, value: value}
}

// CaseExpr is a conditional expression: CASE WHEN ... THEN ... END. An
// omitted Else omits the ELSE segment entirely.
type CaseExpr struct {
	branches []CaseBranch
	elseVal  any
	hasElse  bool
	label    string
}

// Case builds a CASE expression from one or more branches.
func Case(branches ...CaseBranch) *CaseExpr {
	return &CaseExpr{branches: branches}
}

// Else sets the ELSE value.
func (c *CaseExpr) Else(v any) *CaseExpr {
	c.elseVal = v
	c.hasElse = true

	return c
}

// As labels the result (AS <label>).
func (c *CaseExpr) As(label string) *CaseExpr {
	c.label = label
	return c
}

func (c *CaseExpr) cypher(cx *compileContext) string {
	var b strings.Builder
	b.WriteString("CASE")

	for _, br := range c.branches {
		b.WriteString(" WHEN ")
		b.WriteString(br.cond.cypher(cx))
		b.WriteString(" THEN ")
		b.WriteString(caseValueCypher(cx, br.value))
	}

	if c.hasElse {
		b.WriteString(" ELSE ")
		b.WriteString(caseValueCypher(cx, c.elseVal))
	}

	b.WriteString(" END")
	if c.label != "" {
		b.WriteString(" AS " + c.label)
	}

	return b.String()
}

// caseValueCypher serializes a THEN/ELSE value: expressions inline,
// literals through the parameter sink.
func caseValueCypher(cx *compileContext, v any) string {
	if expr, ok := v.(Expr); ok {
		return expr.cypher(cx)
	}
	return "$" + cx.params.Add(v)
}

// OrderByExpr is an ordering term: <expr> ASC|DESC.
type OrderByExpr struct {
	expr      Expr
	direction string
}

func (o *OrderByExpr) cypher(cx *compileContext) string {
	return o.expr.cypher(cx) + " " + o.direction
}

// RemoveExpr marks a field reference for a REMOVE clause. No parameter
// is ever emitted.
type RemoveExpr struct {
	field *FieldRef
}

func (r *RemoveExpr) cypher(cx *compileContext) string {
	return r.field.cypher(cx)
}

// operandCypher serializes a function or arithmetic operand: expressions
// recurse, entities resolve to their alias, strings pass through verbatim
// (raw identifiers like "*"), anything else formats as a literal.
func operandCypher(cx *compileContext, v any) string {
	switch t := v.(type) {
	case Expr:
		return t.cypher(cx)
	case *Entity:
		return cx.aliases.aliasFor(t)
	case string:
		return t
	default:
		return FormatValue(t)
	}
}
