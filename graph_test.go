package grafo_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/rlch/grafo"
)

// fakeDatabase records executed queries and serves canned results.
type fakeDatabase struct {
	queries  []string
	params   []map[string]any
	opts     []grafo.ExecOptions
	commands []grafo.Command

	results map[string]*grafo.Result
	err     error
}

func newFakeDatabase() *fakeDatabase {
	return &fakeDatabase{results: map[string]*grafo.Result{}}
}

func (f *fakeDatabase) Exec(_ context.Context, _ string, query string, params map[string]any, opts grafo.ExecOptions) (*grafo.Result, error) {
	f.queries = append(f.queries, query)
	f.params = append(f.params, params)
	f.opts = append(f.opts, opts)

	if f.err != nil {
		return nil, f.err
	}
	if result, ok := f.results[query]; ok {
		return result, nil
	}

	return &grafo.Result{}, nil
}

func (f *fakeDatabase) Command(_ context.Context, cmd grafo.Command, _ string) error {
	f.commands = append(f.commands, cmd)

	return f.err
}

func (f *fakeDatabase) Dialect() grafo.Dialect { return grafo.FalkorDBDialect{} }

func (f *fakeDatabase) Close() error { return nil }

func TestNewGraph_Validation(t *testing.T) {
	t.Parallel()

	if _, err := grafo.NewGraph("", newFakeDatabase()); !errors.Is(err, grafo.ErrConfiguration) {
		t.Errorf("empty name: got %v, want ErrConfiguration", err)
	}
	if _, err := grafo.NewGraph("site", nil); !errors.Is(err, grafo.ErrConfiguration) {
		t.Errorf("nil database: got %v, want ErrConfiguration", err)
	}
}

func TestGraph_FlushNodesBeforeEdges(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	src, err := page().Record(map[string]any{"path": "/a"})
	require.NoError(t, err)
	dst, err := page().Record(map[string]any{"path": "/b"})
	require.NoError(t, err)

	links := grafo.MustEdge("links")
	edge, err := links.Connect(src, dst, nil)
	require.NoError(t, err)

	require.True(t, graph.AddEdge(edge))
	require.Equal(t, 3, graph.Pending())

	require.NoError(t, graph.Flush(context.Background()))
	require.Equal(t, 0, graph.Pending())

	require.Len(t, db.queries, 3)
	for _, q := range db.queries[:2] {
		if !strings.HasPrefix(q, "MERGE (") {
			t.Errorf("node merge %q does not lead", q)
		}
	}
	if !strings.HasPrefix(db.queries[2], "MATCH (") {
		t.Errorf("edge merge %q did not run last", db.queries[2])
	}
}

func TestGraph_AddNodeDedupByPrimaryKey(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	first, err := page().Record(map[string]any{"path": "/a"})
	require.NoError(t, err)
	second, err := page().Record(map[string]any{"path": "/a"})
	require.NoError(t, err)

	require.True(t, graph.AddNode(first))
	require.False(t, graph.AddNode(second))
	require.Equal(t, 1, graph.Pending())
}

func TestGraph_ExecuteDeleteIsNeverReadOnly(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	p := page().Alias("p")
	stmt := grafo.NewDelete().Match(p).Detach()

	_, err = graph.Execute(context.Background(), stmt, grafo.ExecOptions{ReadOnly: true})
	require.NoError(t, err)

	require.Len(t, db.opts, 1)
	require.False(t, db.opts[0].ReadOnly, "delete ran read-only")
}

func TestGraph_ExecutePassesCompiledParams(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	p := page().Alias("p")
	stmt := grafo.NewSelect().Match(p).Where(p.Field("path").Eq("/home"))

	_, err = graph.Execute(context.Background(), stmt, grafo.ExecOptions{ReadOnly: true})
	require.NoError(t, err)

	require.Len(t, db.queries, 1)
	require.Equal(t, "MATCH (p:Page) WHERE p.path = $param_0 RETURN p", db.queries[0])
	require.Equal(t, map[string]any{"param_0": "/home"}, db.params[0])
	require.True(t, db.opts[0].ReadOnly)
}

func TestGraph_UpdateNode(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	node, err := page().Record(map[string]any{"path": "/home", "title": "Old"})
	require.NoError(t, err)
	node.SetAlias("a")

	_, err = graph.UpdateNode(context.Background(), node,
		map[string]any{"title": "New", "views": 3}, []string{"status"})
	require.NoError(t, err)

	want := `MATCH (a:Page{path:"/home"}) SET a.title="New", a.views=3 REMOVE a.status RETURN a`
	require.Equal(t, []string{want}, db.queries)

	require.Equal(t, "New", node.Property("title"))
	require.Equal(t, 3, node.Property("views"))
	require.Nil(t, node.Property("status"))
}

func TestGraph_UpdateNodeSkipsNilValues(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	node, err := page().Record(map[string]any{"path": "/home"})
	require.NoError(t, err)
	node.SetAlias("a")

	_, err = graph.UpdateNode(context.Background(), node,
		map[string]any{"title": "New", "status": nil}, nil)
	require.NoError(t, err)

	want := `MATCH (a:Page{path:"/home"}) SET a.title="New" RETURN a`
	require.Equal(t, []string{want}, db.queries)

	require.Equal(t, "New", node.Property("title"))
	require.Nil(t, node.Property("status"))
	if _, ok := node.Properties()["status"]; ok {
		t.Error("nil-valued field was written into the local record")
	}
}

func TestGraph_UpdateNodeRequiresWork(t *testing.T) {
	t.Parallel()

	graph, err := grafo.NewGraph("site", newFakeDatabase())
	require.NoError(t, err)

	node, err := page().Record(map[string]any{"path": "/home"})
	require.NoError(t, err)

	_, err = graph.UpdateNode(context.Background(), node, nil, nil)
	require.ErrorIs(t, err, grafo.ErrConfiguration)
}

func TestGraph_DeleteNode(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	node, err := page().Record(map[string]any{"path": "/home"})
	require.NoError(t, err)
	node.SetAlias("a")

	_, err = graph.DeleteNode(context.Background(), node, true)
	require.NoError(t, err)

	require.Equal(t, []string{`MATCH (a:Page{path:"/home"}) DETACH DELETE a`}, db.queries)
}

func TestGraph_Labels(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	db.results["CALL db.labels()"] = &grafo.Result{
		Columns: []string{"label"},
		Rows:    [][]any{{"Page"}, {"Author"}},
	}

	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	labels, err := graph.Labels(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"Page", "Author"}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	require.True(t, db.opts[0].ReadOnly, "schema procedures should run read-only")
}

func TestGraph_CreateIndexIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	db.results["CALL db.indexes() YIELD label, properties"] = &grafo.Result{
		Columns: []string{"label", "properties"},
		Rows:    [][]any{{"Page", []any{"path"}}},
	}

	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	require.NoError(t, graph.CreateIndex(context.Background(), "Page", "path"))

	for _, q := range db.queries {
		if strings.HasPrefix(q, "CREATE INDEX") {
			t.Errorf("existing index was re-created: %q", q)
		}
	}
}

func TestGraph_CreateIndexIssuesQuery(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	require.NoError(t, graph.CreateIndex(context.Background(), "Page", "path"))
	require.Contains(t, db.queries, "CREATE INDEX ON :Page(path)")
}

func TestGraph_Drop(t *testing.T) {
	t.Parallel()

	db := newFakeDatabase()
	graph, err := grafo.NewGraph("site", db)
	require.NoError(t, err)

	require.NoError(t, graph.Drop(context.Background()))
	require.Equal(t, []grafo.Command{grafo.CommandDelete}, db.commands)
}
