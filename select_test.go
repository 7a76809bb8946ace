package grafo_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rlch/grafo"
)

func page() *grafo.Entity {
	return grafo.MustNode("Page",
		grafo.Fields("path", "title", "status", "views"),
		grafo.PrimaryKey("path"),
	)
}

func TestSelect_EndToEnd(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")

	compiled, err := grafo.NewSelect().
		Match(p).
		Where(p.Field("path").Eq("/home")).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := "MATCH (p:Page) WHERE p.path = $param_0 RETURN p"
	if compiled.Query != want {
		t.Errorf("Query = %q, want %q", compiled.Query, want)
	}
	if diff := cmp.Diff(map[string]any{"param_0": "/home"}, compiled.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_DefaultAliasIsLowercasedLabel(t *testing.T) {
	t.Parallel()

	compiled, err := grafo.NewSelect().Match(page()).Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if got, want := compiled.Query, "MATCH (page:Page) RETURN page"; got != want {
		t.Errorf("Query = %q, want %q", got, want)
	}
}

func TestSelect_AutoReturnFromPath(t *testing.T) {
	t.Parallel()

	src := page().Alias("a")
	dst := page().Alias("b")
	links := grafo.MustEdge("links")

	compiled, err := grafo.NewSelect().
		Match(grafo.Path{Src: src, Edge: links, Dst: dst}).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := "MATCH (a:Page)-[links:links]->(b:Page) RETURN a, b"
	if compiled.Query != want {
		t.Errorf("Query = %q, want %q", compiled.Query, want)
	}
}

func TestSelect_AutoReturnFallsBackToWildcard(t *testing.T) {
	t.Parallel()

	compiled, err := grafo.NewSelect().
		Match(grafo.Raw("(n)")).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if got, want := compiled.Query, "MATCH (n) RETURN *"; got != want {
		t.Errorf("Query = %q, want %q", got, want)
	}
}

func TestSelect_OptionalMatch(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")
	q := page().Alias("q")
	links := grafo.MustEdge("links")

	compiled, err := grafo.NewSelect().
		Match(p).
		OptionalMatch(grafo.Path{Src: p, Edge: links, Dst: q}).
		Returns(p, q).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := "MATCH (p:Page) OPTIONAL MATCH (p:Page)-[links:links]->(q:Page) RETURN p, q"
	if compiled.Query != want {
		t.Errorf("Query = %q, want %q", compiled.Query, want)
	}
}

func TestSelect_VariableLengthSuffixes(t *testing.T) {
	t.Parallel()

	links := grafo.MustEdge("links")

	tests := []struct {
		name     string
		min, max *int
		suffix   string
	}{
		{name: "unbounded", min: nil, max: nil, suffix: "*"},
		{name: "bounded both", min: grafo.Hops(1), max: grafo.Hops(3), suffix: "*1..3"},
		{name: "exact", min: grafo.Hops(2), max: grafo.Hops(2), suffix: "*2"},
		{name: "bounded below", min: grafo.Hops(1), max: nil, suffix: "*1.."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			vl, err := grafo.VariableLength(links, tt.min, tt.max)
			if err != nil {
				t.Fatalf("VariableLength: %v", err)
			}

			compiled, err := grafo.NewSelect().
				Match(grafo.Path{Src: page().Alias("a"), Edge: vl, Dst: page().Alias("b")}).
				Compile()
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}

			want := "[:links" + tt.suffix + "]"
			if !strings.Contains(compiled.Query, want) {
				t.Errorf("query %q does not contain %q", compiled.Query, want)
			}
		})
	}
}

func TestVariableLength_RejectsBadBounds(t *testing.T) {
	t.Parallel()

	links := grafo.MustEdge("links")

	if _, err := grafo.VariableLength(links, grafo.Hops(3), grafo.Hops(1)); err == nil {
		t.Error("min > max did not error")
	}
	if _, err := grafo.VariableLength(links, grafo.Hops(-1), nil); err == nil {
		t.Error("negative min did not error")
	}
	if _, err := grafo.VariableLength(nil, nil, nil); err == nil {
		t.Error("nil edge did not error")
	}
}

func TestSelect_ZeroVariableLengthEdge(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")
	q := page().Alias("q")

	_, err := grafo.NewSelect().
		Match(grafo.Path{Src: p, Edge: grafo.VarLength{}, Dst: q}).
		Compile()
	if !errors.Is(err, grafo.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestSelect_OptionalMatchDerivedReturn(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")
	q := page().Alias("q")
	links := grafo.MustEdge("links")

	compiled, err := grafo.NewSelect().
		Match(p).
		OptionalMatch(grafo.Path{Src: p, Edge: links, Dst: q}).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := "MATCH (p:Page) OPTIONAL MATCH (p:Page)-[links:links]->(q:Page) RETURN p, q"
	if compiled.Query != want {
		t.Errorf("Query = %q, want %q", compiled.Query, want)
	}
}

func TestSelect_EmptyReturnsDerivesProjection(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")

	compiled, err := grafo.NewSelect().
		Match(p).
		Returns().
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if got, want := compiled.Query, "MATCH (p:Page) RETURN p"; got != want {
		t.Errorf("Query = %q, want %q", got, want)
	}
}

func TestSelect_WithLiteralItem(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")

	compiled, err := grafo.NewSelect().
		Match(p).
		With(p, 1).
		Returns(p).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if got, want := compiled.Query, "MATCH (p:Page) WITH p, 1 RETURN p"; got != want {
		t.Errorf("Query = %q, want %q", got, want)
	}
}

func TestSelect_SkipPrecedesLimit(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")

	compiled, err := grafo.NewSelect().
		Match(p).
		Limit(10).
		Skip(5).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	skipIdx := strings.Index(compiled.Query, "SKIP 5")
	limitIdx := strings.Index(compiled.Query, "LIMIT 10")
	if skipIdx == -1 || limitIdx == -1 {
		t.Fatalf("query %q missing SKIP or LIMIT", compiled.Query)
	}
	if skipIdx > limitIdx {
		t.Errorf("SKIP appears after LIMIT in %q", compiled.Query)
	}
}

func TestSelect_OrderBy(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")

	compiled, err := grafo.NewSelect().
		Match(p).
		Returns(p).
		OrderBy(p.Field("views").Desc(), p.Field("path").Asc()).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := "ORDER BY p.views DESC, p.path ASC"
	if !strings.Contains(compiled.Query, want) {
		t.Errorf("query %q does not contain %q", compiled.Query, want)
	}
}

func TestSelect_Remove(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")

	compiled, err := grafo.NewSelect().
		Match(p).
		Where(p.Field("status").Eq("gone")).
		Remove(p.Field("title").Remove(), p.Field("views").Remove()).
		Returns(p).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := "MATCH (p:Page) WHERE p.status = $param_0 REMOVE p.title, p.views RETURN p"
	if compiled.Query != want {
		t.Errorf("Query = %q, want %q", compiled.Query, want)
	}
}

func TestSelect_ReturnsDistinct(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")

	compiled, err := grafo.NewSelect().
		Match(p).
		ReturnsDistinct(p.Field("status")).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if !strings.Contains(compiled.Query, "RETURN DISTINCT p.status") {
		t.Errorf("query %q missing RETURN DISTINCT", compiled.Query)
	}
}

func TestSelect_WithAggregateAndPostFilter(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")
	total := grafo.Count(p).As("total")

	compiled, err := grafo.NewSelect().
		Match(p).
		With(total).
		Where(total.Gt(5)).
		Returns("total").
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := "MATCH (p:Page) WITH COUNT(p) AS total WHERE total > $param_0 RETURN total"
	if compiled.Query != want {
		t.Errorf("Query = %q, want %q", compiled.Query, want)
	}
	if diff := cmp.Diff(map[string]any{"param_0": 5}, compiled.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_WithRebindsAlias(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")

	compiled, err := grafo.NewSelect().
		Match(p).
		With(grafo.As(p, "pg")).
		Where(p.Field("status").Eq("live")).
		Returns(p).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := "MATCH (p:Page) WITH p AS pg WHERE pg.status = $param_0 RETURN pg"
	if compiled.Query != want {
		t.Errorf("Query = %q, want %q", compiled.Query, want)
	}
}

func TestSelect_MatchAfterWithStaysAfterWith(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")
	q := page().Alias("q")

	compiled, err := grafo.NewSelect().
		Match(p).
		With(p).
		Match(q).
		Where(q.Field("status").Eq("live")).
		Returns(p, q).
		Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	want := "MATCH (p:Page) WITH p MATCH (q:Page) WHERE q.status = $param_0 RETURN p, q"
	if compiled.Query != want {
		t.Errorf("Query = %q, want %q", compiled.Query, want)
	}
}

func TestSelect_CompileIsIdempotent(t *testing.T) {
	t.Parallel()

	p := page().Alias("p")
	stmt := grafo.NewSelect().
		Match(p).
		Where(p.Field("status").Eq("live"), p.Field("views").Gt(10)).
		OrderBy(p.Field("views").Desc()).
		Skip(5).
		Limit(10)

	first, err := stmt.Compile()
	if err != nil {
		t.Fatalf("first Compile: %v", err)
	}
	second, err := stmt.Compile()
	if err != nil {
		t.Fatalf("second Compile: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("recompile mismatch (-first +second):\n%s", diff)
	}
}

func TestSelect_ConstructorEntitiesAsFallbackMatch(t *testing.T) {
	t.Parallel()

	compiled, err := grafo.NewSelect(page().Alias("p")).Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if got, want := compiled.Query, "MATCH (p:Page) RETURN p"; got != want {
		t.Errorf("Query = %q, want %q", got, want)
	}
}
