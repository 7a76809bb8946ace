package grafo_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rlch/grafo"
)

func TestNewNode(t *testing.T) {
	t.Parallel()

	page, err := grafo.NewNode("Page",
		grafo.Fields("path", "title", "status"),
		grafo.PrimaryKey("path"),
	)
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	if got := page.Name(); got != "Page" {
		t.Errorf("Name() = %q, want %q", got, "Page")
	}
	if got := page.Kind(); got != grafo.KindNode {
		t.Errorf("Kind() = %v, want %v", got, grafo.KindNode)
	}
	if diff := cmp.Diff([]string{"path"}, page.PrimaryKeyFields()); diff != "" {
		t.Errorf("PrimaryKeyFields() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewNode_Errors(t *testing.T) {
	t.Parallel()

	_, err := grafo.NewNode("")
	if !errors.Is(err, grafo.ErrConfiguration) {
		t.Errorf("empty label: got %v, want ErrConfiguration", err)
	}

	_, err = grafo.NewNode("Page",
		grafo.Fields("path"),
		grafo.PrimaryKey("missing"),
	)
	if !errors.Is(err, grafo.ErrConfiguration) {
		t.Errorf("undeclared primary key: got %v, want ErrConfiguration", err)
	}
}

func TestNewEdge_Errors(t *testing.T) {
	t.Parallel()

	_, err := grafo.NewEdge("")
	if !errors.Is(err, grafo.ErrConfiguration) {
		t.Errorf("empty relation: got %v, want ErrConfiguration", err)
	}
}

func TestEntity_Alias(t *testing.T) {
	t.Parallel()

	page := grafo.MustNode("Page", grafo.Fields("path"))
	aliased := page.Alias("p")

	if aliased == page {
		t.Fatal("Alias() must return a distinct descriptor")
	}
	if got := aliased.ExplicitAlias(); got != "p" {
		t.Errorf("ExplicitAlias() = %q, want %q", got, "p")
	}
	if got := page.ExplicitAlias(); got != "" {
		t.Errorf("original descriptor alias = %q, want unset", got)
	}
}

func TestEntity_AliasEmptyPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("Alias(\"\") did not panic")
		}
	}()

	grafo.MustNode("Page").Alias("")
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	page := grafo.MustNode("Page", grafo.Fields("path"))
	links := grafo.MustEdge("links")

	reg := grafo.NewRegistry()
	reg.Add(page)
	reg.Add(links)

	got, err := reg.Node("Page")
	if err != nil {
		t.Fatalf("Node(Page): %v", err)
	}
	if got != page {
		t.Error("Node(Page) returned a different descriptor")
	}

	if _, err := reg.Node("Missing"); !errors.Is(err, grafo.ErrNotRegistered) {
		t.Errorf("unknown label: got %v, want ErrNotRegistered", err)
	}
	if _, err := reg.Edge("missing"); !errors.Is(err, grafo.ErrNotRegistered) {
		t.Errorf("unknown relation: got %v, want ErrNotRegistered", err)
	}

	if diff := cmp.Diff([]string{"Page"}, reg.Labels()); diff != "" {
		t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"links"}, reg.Relations()); diff != "" {
		t.Errorf("Relations() mismatch (-want +got):\n%s", diff)
	}
}
