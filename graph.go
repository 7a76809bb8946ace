package grafo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Graph is a session against one named graph: it stages node and edge
// records locally, flushes them as MERGE queries, and runs compiled
// statements and schema operations through the configured database.
type Graph struct {
	name   string
	db     Database
	logger *zap.Logger

	nodes map[string]*Node
	edges map[string]*Edge
}

// GraphOption configures a Graph during construction.
type GraphOption func(*Graph)

// WithLogger attaches a structured logger to the session.
func WithLogger(logger *zap.Logger) GraphOption {
	return func(g *Graph) { g.logger = logger }
}

// NewGraph opens a session against the named graph.
func NewGraph(name string, db Database, opts ...GraphOption) (*Graph, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: graph name must be a non-empty string", ErrConfiguration)
	}
	if db == nil {
		return nil, fmt.Errorf("%w: database must be provided", ErrConfiguration)
	}

	g := &Graph{
		name:   name,
		db:     db,
		logger: zap.NewNop(),
		nodes:  map[string]*Node{},
		edges:  map[string]*Edge{},
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Database returns the underlying database connection.
func (g *Graph) Database() Database { return g.db }

// AddNode stages a node record for the next Flush. It reports whether the
// record was new; a record whose primary key matches an already staged
// one is skipped.
func (g *Graph) AddNode(node *Node) bool {
	if existing := g.findStagedNode(node); existing != nil {
		return false
	}
	g.nodes[node.alias] = node
	return true
}

// AddEdge stages an edge record for the next Flush, staging its endpoint
// nodes first when they are not staged yet. It reports whether the record
// was new.
func (g *Graph) AddEdge(edge *Edge) bool {
	g.AddNode(edge.src)
	g.AddNode(edge.dst)

	for _, existing := range g.edges {
		if sameEdge(existing, edge) {
			return false
		}
	}
	g.edges[edge.alias] = edge
	return true
}

// Pending reports the number of staged records.
func (g *Graph) Pending() int { return len(g.nodes) + len(g.edges) }

// Flush writes every staged record to the database, nodes first so edges
// always merge between existing endpoints. Each record runs as its own
// query. The staging area is cleared on success.
func (g *Graph) Flush(ctx context.Context) error {
	for _, node := range sortedByAlias(g.nodes) {
		query, err := node.MergeCypher()
		if err != nil {
			return err
		}
		g.logger.Debug("flushing node",
			zap.String("graph", g.name),
			zap.String("label", node.entity.name))
		if _, err := g.db.Exec(ctx, g.name, query, nil, ExecOptions{}); err != nil {
			return err
		}
	}

	for _, edge := range sortedByAlias(g.edges) {
		query, err := edge.MergeCypher()
		if err != nil {
			return err
		}
		g.logger.Debug("flushing edge",
			zap.String("graph", g.name),
			zap.String("relation", edge.entity.name))
		if _, err := g.db.Exec(ctx, g.name, query, nil, ExecOptions{}); err != nil {
			return err
		}
	}

	g.nodes = map[string]*Node{}
	g.edges = map[string]*Edge{}
	return nil
}

// Query runs a raw Cypher query against the graph.
func (g *Graph) Query(ctx context.Context, query string, params map[string]any, opts ExecOptions) (*Result, error) {
	g.logger.Debug("query", zap.String("graph", g.name), zap.String("cypher", query))
	return g.db.Exec(ctx, g.name, query, params, opts)
}

// Execute compiles and runs a statement. Delete statements are always
// write operations regardless of opts.ReadOnly.
func (g *Graph) Execute(ctx context.Context, stmt Statement, opts ExecOptions) (*Result, error) {
	compiled, err := stmt.Compile()
	if err != nil {
		return nil, err
	}

	if _, isDelete := stmt.(*Delete); isDelete {
		opts.ReadOnly = false
	}

	return g.Query(ctx, compiled.Query, compiled.Params, opts)
}

// UpdateNode updates a stored node matched by its primary-key pattern:
// set assigns properties, remove drops them. At least one of the two must
// be non-empty. The record's own property bag is updated on success.
func (g *Graph) UpdateNode(ctx context.Context, node *Node, set map[string]any, remove []string) (*Result, error) {
	if len(set) == 0 && len(remove) == 0 {
		return nil, fmt.Errorf("%w: nothing to set or remove", ErrConfiguration)
	}

	pkPattern, err := node.PKPattern()
	if err != nil {
		return nil, err
	}

	parts := []string{"MATCH " + pkPattern}

	if len(set) > 0 {
		fields := make([]string, 0, len(set))
		for f := range set {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		assignments := make([]string, 0, len(fields))
		for _, f := range fields {
			if set[f] == nil {
				continue
			}
			assignments = append(assignments, node.alias+"."+f+"="+FormatValue(set[f]))
		}
		if len(assignments) > 0 {
			parts = append(parts, "SET "+strings.Join(assignments, ", "))
		}
	}

	if len(remove) > 0 {
		targets := make([]string, len(remove))
		for i, f := range remove {
			targets[i] = node.alias + "." + f
		}
		parts = append(parts, "REMOVE "+strings.Join(targets, ", "))
	}

	parts = append(parts, "RETURN "+node.alias)

	result, err := g.Query(ctx, strings.Join(parts, " "), nil, ExecOptions{})
	if err != nil {
		return nil, err
	}

	for f, v := range set {
		if v == nil {
			continue
		}
		node.props[f] = v
	}
	for _, f := range remove {
		delete(node.props, f)
	}

	return result, nil
}

// DeleteNode deletes a stored node matched by its primary-key pattern.
// With detach set, relationships are removed along with the node.
func (g *Graph) DeleteNode(ctx context.Context, node *Node, detach bool) (*Result, error) {
	pkPattern, err := node.PKPattern()
	if err != nil {
		return nil, err
	}

	keyword := "DELETE"
	if detach {
		keyword = "DETACH DELETE"
	}
	query := "MATCH " + pkPattern + " " + keyword + " " + node.alias

	return g.Query(ctx, query, nil, ExecOptions{})
}

// DeleteEdge deletes a stored relationship matched by its endpoints'
// primary-key patterns and its relation name.
func (g *Graph) DeleteEdge(ctx context.Context, edge *Edge) (*Result, error) {
	srcPattern, err := edge.src.PKPattern()
	if err != nil {
		return nil, err
	}
	dstPattern, err := edge.dst.PKPattern()
	if err != nil {
		return nil, err
	}

	query := "MATCH " + srcPattern + "-[" + edge.alias + ":" + edge.entity.name + "]->" + dstPattern +
		" DELETE " + edge.alias

	return g.Query(ctx, query, nil, ExecOptions{})
}

// Labels lists the node labels present in the graph.
func (g *Graph) Labels(ctx context.Context) ([]string, error) {
	return g.callSchemaProcedure(ctx, g.db.Dialect().ProcedureLabels())
}

// PropertyKeys lists the property keys present in the graph.
func (g *Graph) PropertyKeys(ctx context.Context) ([]string, error) {
	return g.callSchemaProcedure(ctx, g.db.Dialect().ProcedurePropertyKeys())
}

// RelationshipTypes lists the relationship types present in the graph.
func (g *Graph) RelationshipTypes(ctx context.Context) ([]string, error) {
	return g.callSchemaProcedure(ctx, g.db.Dialect().ProcedureRelationshipTypes())
}

// Index describes one index reported by the database.
type Index struct {
	Label      string
	Properties []string
}

// Indexes lists the indexes present in the graph.
func (g *Graph) Indexes(ctx context.Context) ([]Index, error) {
	result, err := g.Query(ctx, "CALL "+g.db.Dialect().ProcedureIndexes(), nil, ExecOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}

	indexes := make([]Index, 0, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) < 2 {
			continue
		}
		idx := Index{Label: fmt.Sprintf("%v", row[0])}
		switch props := row[1].(type) {
		case []any:
			for _, p := range props {
				idx.Properties = append(idx.Properties, fmt.Sprintf("%v", p))
			}
		case []string:
			idx.Properties = props
		default:
			idx.Properties = []string{fmt.Sprintf("%v", props)}
		}
		indexes = append(indexes, idx)
	}

	return indexes, nil
}

// CreateIndex creates an index on a label property. Creating an index
// that already exists is not an error.
func (g *Graph) CreateIndex(ctx context.Context, label, property string) error {
	indexes, err := g.Indexes(ctx)
	if err == nil {
		for _, idx := range indexes {
			if idx.Label != label {
				continue
			}
			for _, p := range idx.Properties {
				if p == property {
					g.logger.Debug("index already exists",
						zap.String("label", label),
						zap.String("property", property))
					return nil
				}
			}
		}
	}

	_, err = g.Query(ctx, g.db.Dialect().CreateIndex(label, property), nil, ExecOptions{})
	if err != nil {
		msg := strings.ToLower(err.Error())
		// Lost the race against a concurrent creator.
		if strings.Contains(msg, "already indexed") || strings.Contains(msg, "already exists") {
			return nil
		}
		return err
	}
	return nil
}

// DropIndex drops an index on a label property.
func (g *Graph) DropIndex(ctx context.Context, label, property string) error {
	_, err := g.Query(ctx, g.db.Dialect().DropIndex(label, property), nil, ExecOptions{})
	return err
}

// Drop deletes the whole graph from the database.
func (g *Graph) Drop(ctx context.Context) error {
	g.logger.Info("dropping graph", zap.String("graph", g.name))
	return g.db.Command(ctx, CommandDelete, g.name)
}

func (g *Graph) callSchemaProcedure(ctx context.Context, procedure string) ([]string, error) {
	result, err := g.Query(ctx, "CALL "+procedure, nil, ExecOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if len(row) == 0 {
			continue
		}
		values = append(values, fmt.Sprintf("%v", row[0]))
	}
	return values, nil
}

// findStagedNode returns the staged node matching by alias or by
// primary-key values, or nil.
func (g *Graph) findStagedNode(node *Node) *Node {
	if staged, ok := g.nodes[node.alias]; ok {
		return staged
	}

	pk := node.entity.primaryKey
	if len(pk) == 0 {
		return nil
	}
	for _, staged := range g.nodes {
		if staged.entity.name != node.entity.name {
			continue
		}
		match := true
		for _, f := range pk {
			if staged.props[f] != node.props[f] {
				match = false
				break
			}
		}
		if match {
			return staged
		}
	}
	return nil
}

func sameEdge(a, b *Edge) bool {
	if a.entity.name != b.entity.name {
		return false
	}
	if a.src != b.src && a.src.alias != b.src.alias {
		return false
	}
	if a.dst != b.dst && a.dst.alias != b.dst.alias {
		return false
	}
	if len(a.props) != len(b.props) {
		return false
	}
	for k, v := range a.props {
		if b.props[k] != v {
			return false
		}
	}
	return true
}

func sortedByAlias[T any](m map[string]T) []T {
	aliases := make([]string, 0, len(m))
	for alias := range m {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	out := make([]T, len(aliases))
	for i, alias := range aliases {
		out[i] = m[alias]
	}
	return out
}
