//nolint:testpackage
package neo4j

import (
	"testing"

	"github.com/rlch/grafo"
)

func TestDatabase_ImplementsInterface(_ *testing.T) {
	var _ grafo.Database = (*Database)(nil)
}

func TestDatabase_Registration(t *testing.T) {
	found := false
	for _, name := range grafo.RegisteredDatabases() {
		if name == grafo.DatabaseNeo4j {
			found = true
			break
		}
	}

	if !found {
		t.Error("neo4j database not registered")
	}
}

func TestDatabase_Dialect(t *testing.T) {
	d := &Database{}

	if got := d.Dialect().Name(); got != grafo.DatabaseNeo4j {
		t.Errorf("Dialect().Name() = %q, want %q", got, grafo.DatabaseNeo4j)
	}
}
