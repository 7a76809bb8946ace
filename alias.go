package grafo

import "strconv"

// AliasMap tracks which textual alias refers to which logical entity
// within one compile pass. Keys are descriptor identities: an aliased
// variant of a record type is a distinct descriptor with its own entry.
// Entries are only ever added or overwritten; a WITH projection that
// re-aliases an entity overwrites its mapping for all subsequent phases.
type AliasMap map[*Entity]string

// aliasFor resolves the alias for an entity: the map entry if present,
// else the entity's default alias. An entity that never appeared in a
// match item still renders under its default name rather than erroring.
func (m AliasMap) aliasFor(e *Entity) string {
	if a, ok := m[e]; ok {
		return a
	}
	return e.defaultAlias()
}

// register binds an entity to its resolved alias, keeping an existing
// binding if one was already made this pass. Returns the alias in effect.
func (m AliasMap) register(e *Entity) string {
	if a, ok := m[e]; ok {
		return a
	}
	a := e.defaultAlias()
	m[e] = a

	return a
}

// rebind overwrites an entity's alias. WITH projections are the only
// caller: rebinding is the single legal alias mutation after first
// assignment.
func (m AliasMap) rebind(e *Entity, alias string) {
	m[e] = alias
}

// ParamSink accumulates query parameters in serialization order. The
// generated names param_0, param_1, ... are part of a statement's
// observable contract.
type ParamSink struct {
	names  []string
	values map[string]any
}

func newParamSink() *ParamSink {
	return &ParamSink{values: make(map[string]any)}
}

// Add appends a value and returns its generated parameter name.
func (p *ParamSink) Add(v any) string {
	name := "param_" + strconv.Itoa(len(p.names))
	p.names = append(p.names, name)
	p.values[name] = v

	return name
}

// Names returns the parameter names in insertion order.
func (p *ParamSink) Names() []string { return p.names }

// Map returns the accumulated name-to-value map.
func (p *ParamSink) Map() map[string]any { return p.values }

// Len returns the number of accumulated parameters.
func (p *ParamSink) Len() int { return len(p.names) }

// compileContext threads the per-compile working state through the whole
// serialization tree. Each Compile call constructs a fresh context, so
// compiling the same statement twice yields byte-identical output and
// never mutates statement state.
type compileContext struct {
	aliases AliasMap
	params  *ParamSink

	// afterWith flips once the WITH clause has been serialized; labeled
	// functions and arithmetic then render as their bare label.
	afterWith bool
}

func newCompileContext() *compileContext {
	return &compileContext{
		aliases: make(AliasMap),
		params:  newParamSink(),
	}
}
