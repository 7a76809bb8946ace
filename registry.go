package grafo

import (
	"fmt"
	"sort"
)

// Registry maps display names back to their descriptors, for callers that
// deserialize results into typed records. It is a plain value constructed
// once at declarative-setup time, not a process-wide singleton.
type Registry struct {
	nodes map[string]*Entity
	edges map[string]*Entity
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes: make(map[string]*Entity),
		edges: make(map[string]*Entity),
	}
}

// Add registers a descriptor under its display name. A later Add with the
// same name overwrites the earlier descriptor.
func (r *Registry) Add(e *Entity) {
	if e == nil {
		return
	}
	if e.Kind() == KindEdge {
		r.edges[e.Name()] = e
	} else {
		r.nodes[e.Name()] = e
	}
}

// Node looks up a node descriptor by label.
func (r *Registry) Node(label string) (*Entity, error) {
	e, ok := r.nodes[label]
	if !ok {
		return nil, fmt.Errorf("%w: node label %q (known labels: %v)",
			ErrNotRegistered, label, sortedKeys(r.nodes))
	}
	return e, nil
}

// Edge looks up an edge descriptor by relation name.
func (r *Registry) Edge(relation string) (*Entity, error) {
	e, ok := r.edges[relation]
	if !ok {
		return nil, fmt.Errorf("%w: edge relation %q (known relations: %v)",
			ErrNotRegistered, relation, sortedKeys(r.edges))
	}
	return e, nil
}

// Labels returns the registered node labels, sorted.
func (r *Registry) Labels() []string { return sortedKeys(r.nodes) }

// Relations returns the registered relation names, sorted.
func (r *Registry) Relations() []string { return sortedKeys(r.edges) }

func sortedKeys(m map[string]*Entity) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
