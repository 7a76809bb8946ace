// Package neo4j provides a grafo Database implementation for Neo4j.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rlch/grafo"
)

//nolint:gochecknoinits // Database self-registration pattern
func init() {
	grafo.RegisterDatabase(grafo.DatabaseNeo4j, func(cfg map[string]any) (grafo.Database, error) {
		uri, _ := cfg["uri"].(string)
		if uri == "" {
			return nil, fmt.Errorf("%w: neo4j requires uri", grafo.ErrConfiguration)
		}
		username, _ := cfg["username"].(string)
		password, _ := cfg["password"].(string)
		database, _ := cfg["database"].(string)

		return New(uri, username, password, database)
	})
}

// Database implements grafo.Database for Neo4j.
type Database struct {
	driver neo4j.DriverWithContext
	db     string
}

// New creates a Neo4j connection and verifies it. database names the
// Neo4j database sessions default to; the per-call graph name overrides
// it when non-empty.
func New(uri, username, password, database string) (*Database, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}

	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", grafo.ErrConnection, err)
	}

	ctx := context.Background()

	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		_ = driver.Close(ctx)

		return nil, fmt.Errorf("%w: %v", grafo.ErrConnection, err)
	}

	return &Database{driver: driver, db: database}, nil
}

// Exec runs a Cypher query in a session scoped to the graph's database.
func (d *Database) Exec(ctx context.Context, graph string, query string, params map[string]any, opts grafo.ExecOptions) (*grafo.Result, error) {
	session := d.session(ctx, graph, opts.ReadOnly)
	defer func() { _ = session.Close(ctx) }()

	var configurers []func(*neo4j.TransactionConfig)
	if opts.TimeoutMS > 0 {
		configurers = append(configurers,
			neo4j.WithTxTimeout(time.Duration(opts.TimeoutMS)*time.Millisecond))
	}

	result, err := session.Run(ctx, query, params, configurers...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", grafo.ErrQueryFailed, err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", grafo.ErrQueryFailed, err)
	}

	out := &grafo.Result{}
	if len(records) > 0 {
		out.Columns = records[0].Keys
	}
	out.Rows = make([][]any, len(records))
	for i, record := range records {
		out.Rows[i] = record.Values
	}

	summary, err := result.Consume(ctx)
	if err == nil {
		counters := summary.Counters()
		out.Statistics = grafo.Statistics{
			NodesCreated:         counters.NodesCreated(),
			NodesDeleted:         counters.NodesDeleted(),
			RelationshipsCreated: counters.RelationshipsCreated(),
			RelationshipsDeleted: counters.RelationshipsDeleted(),
			PropertiesSet:        counters.PropertiesSet(),
			LabelsAdded:          counters.LabelsAdded(),
		}
	}

	return out, nil
}

// Command runs a non-Cypher graph command. Neo4j has no graph-delete
// command, so CommandDelete clears the graph's contents instead.
func (d *Database) Command(ctx context.Context, cmd grafo.Command, graph string) error {
	switch cmd {
	case grafo.CommandDelete:
		_, err := d.Exec(ctx, graph, "MATCH (n) DETACH DELETE n", nil, grafo.ExecOptions{})

		return err
	default:
		return fmt.Errorf("%w: unsupported command %s", grafo.ErrQueryFailed, cmd)
	}
}

// Dialect returns the Neo4j Cypher dialect.
func (d *Database) Dialect() grafo.Dialect { return grafo.Neo4jDialect{} }

// Close releases the driver.
func (d *Database) Close() error {
	return d.driver.Close(context.Background())
}

func (d *Database) session(ctx context.Context, graph string, readOnly bool) neo4j.SessionWithContext {
	cfg := neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite}
	if readOnly {
		cfg.AccessMode = neo4j.AccessModeRead
	}

	switch {
	case graph != "":
		cfg.DatabaseName = graph
	case d.db != "":
		cfg.DatabaseName = d.db
	}

	return d.driver.NewSession(ctx, cfg)
}
