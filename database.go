package grafo

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ExecOptions tunes a single query execution.
type ExecOptions struct {
	// TimeoutMS aborts the query server-side after this many
	// milliseconds. Zero means no timeout.
	TimeoutMS int

	// ReadOnly routes the query to a read-only execution path when the
	// database distinguishes one.
	ReadOnly bool
}

// Statistics holds the mutation counters a database reports after a
// write query. Databases that don't report a counter leave it zero.
type Statistics struct {
	NodesCreated         int
	NodesDeleted         int
	RelationshipsCreated int
	RelationshipsDeleted int
	PropertiesSet        int
	LabelsAdded          int
	ExecutionTimeMS      float64
}

// Result is the outcome of one query execution.
type Result struct {
	Columns    []string
	Rows       [][]any
	Statistics Statistics
}

// Database is a connection to one named graph.
type Database interface {
	// Exec runs a Cypher query with parameters against the graph.
	Exec(ctx context.Context, graph string, query string, params map[string]any, opts ExecOptions) (*Result, error)

	// Command runs a non-Cypher graph command, e.g. dropping the graph.
	Command(ctx context.Context, cmd Command, graph string) error

	// Dialect returns the Cypher dialect the database speaks.
	Dialect() Dialect

	// Close releases the underlying connection.
	Close() error
}

// DatabaseFactory builds a Database from its decoded configuration.
type DatabaseFactory func(cfg map[string]any) (Database, error)

var (
	databasesMu sync.RWMutex
	databases   = map[string]DatabaseFactory{}
)

// RegisterDatabase makes a database implementation available by name.
// It is meant to be called from an implementation package's init.
func RegisterDatabase(name string, factory DatabaseFactory) {
	databasesMu.Lock()
	defer databasesMu.Unlock()
	if _, dup := databases[name]; dup {
		panic(fmt.Sprintf("grafo: database %q registered twice", name))
	}
	databases[name] = factory
}

// OpenDatabase builds the named database implementation from cfg.
func OpenDatabase(name string, cfg map[string]any) (Database, error) {
	databasesMu.RLock()
	factory, ok := databases[name]
	databasesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownDatabase, name, RegisteredDatabases())
	}
	return factory(cfg)
}

// RegisteredDatabases returns the names of all registered
// implementations, sorted.
func RegisteredDatabases() []string {
	databasesMu.RLock()
	defer databasesMu.RUnlock()
	names := make([]string, 0, len(databases))
	for name := range databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
