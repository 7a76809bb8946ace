// Package falkordb provides a grafo Database implementation for
// FalkorDB/RedisGraph, speaking the graph commands over the Redis
// protocol.
package falkordb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/rlch/grafo"
)

//nolint:gochecknoinits // Database self-registration pattern
func init() {
	grafo.RegisterDatabase(grafo.DatabaseFalkorDB, func(cfg map[string]any) (grafo.Database, error) {
		addr, _ := cfg["addr"].(string)
		if addr == "" {
			return nil, fmt.Errorf("%w: falkordb requires addr", grafo.ErrConfiguration)
		}
		username, _ := cfg["username"].(string)
		password, _ := cfg["password"].(string)

		return New(addr, username, password, intOption(cfg["db"]))
	})
}

// Database implements grafo.Database for FalkorDB.
type Database struct {
	client *redis.Client
}

// New creates a FalkorDB connection and verifies it.
func New(addr, username, password string, db int) (*Database, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("%w: %s: %v", grafo.ErrConnection, addr, err)
	}

	return &Database{client: client}, nil
}

// Exec runs a Cypher query against the named graph. Parameters travel in
// the CYPHER header of the query argument; FalkorDB resolves $name
// references against it server-side. ReadOnly routes through
// GRAPH.RO_QUERY, falling back to GRAPH.QUERY on servers that predate it.
func (d *Database) Exec(ctx context.Context, graph string, query string, params map[string]any, opts grafo.ExecOptions) (*grafo.Result, error) {
	return d.exec(ctx, graph, query, params, opts)
}

func (d *Database) exec(ctx context.Context, graph string, query string, params map[string]any, opts grafo.ExecOptions) (*grafo.Result, error) {
	cmd := grafo.CommandQuery
	if opts.ReadOnly {
		cmd = grafo.CommandReadOnlyQuery
	}

	full := query
	if len(params) > 0 {
		full = paramsHeader(params) + query
	}

	args := []any{string(cmd), graph, full, "--compact"}
	if opts.TimeoutMS > 0 {
		args = append(args, "timeout", opts.TimeoutMS)
	}

	reply, err := d.client.Do(ctx, args...).Result()
	if err != nil {
		msg := err.Error()
		// GRAPH.RO_QUERY is unavailable on older servers.
		if opts.ReadOnly && strings.Contains(strings.ToLower(msg), "unknown command") {
			opts.ReadOnly = false

			return d.exec(ctx, graph, query, params, opts)
		}
		if isConnectionError(err) {
			return nil, fmt.Errorf("%w: %v", grafo.ErrConnection, err)
		}

		return nil, fmt.Errorf("%w: %s", grafo.ErrQueryFailed, msg)
	}

	return parseReply(reply)
}

// Command runs a non-Cypher graph command.
func (d *Database) Command(ctx context.Context, cmd grafo.Command, graph string) error {
	err := d.client.Do(ctx, string(cmd), graph).Err()
	if err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("%w: %v", grafo.ErrConnection, err)
		}

		return fmt.Errorf("%w: %v", grafo.ErrQueryFailed, err)
	}

	return nil
}

// Dialect returns the FalkorDB Cypher dialect.
func (d *Database) Dialect() grafo.Dialect { return grafo.FalkorDBDialect{} }

// Close releases the Redis connection.
func (d *Database) Close() error { return d.client.Close() }

// paramsHeader renders the CYPHER parameter header FalkorDB expects in
// front of a parameterized query. Keys are emitted in sorted order so the
// header is deterministic.
func paramsHeader(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("CYPHER ")
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(grafo.FormatValue(params[k]))
		b.WriteString(" ")
	}

	return b.String()
}

// parseReply decodes a GRAPH.QUERY reply: [header, rows, statistics] for
// result-bearing queries, [statistics] for pure writes.
func parseReply(reply any) (*grafo.Result, error) {
	top, ok := reply.([]any)
	if !ok {
		// Simple replies (e.g. from management commands) carry no result set.
		return &grafo.Result{}, nil
	}

	result := &grafo.Result{}

	switch len(top) {
	case 0:
		return result, nil
	case 1:
		result.Statistics = parseStatistics(top[0])

		return result, nil
	}

	if header, ok := top[0].([]any); ok {
		result.Columns = make([]string, len(header))
		for i, col := range header {
			result.Columns[i] = columnName(col)
		}
	}

	if rows, ok := top[1].([]any); ok {
		result.Rows = make([][]any, len(rows))
		for i, row := range rows {
			if cells, ok := row.([]any); ok {
				result.Rows[i] = cells
			} else {
				result.Rows[i] = []any{row}
			}
		}
	}

	if len(top) > 2 {
		result.Statistics = parseStatistics(top[2])
	}

	return result, nil
}

// columnName extracts a column name from a header cell. In compact
// format each cell is a [type, name] pair; otherwise it is the name
// itself.
func columnName(cell any) string {
	if pair, ok := cell.([]any); ok && len(pair) == 2 {
		return asString(pair[1])
	}

	return asString(cell)
}

func parseStatistics(raw any) grafo.Statistics {
	var stats grafo.Statistics

	lines, ok := raw.([]any)
	if !ok {
		return stats
	}

	for _, line := range lines {
		text := asString(line)
		name, value, found := strings.Cut(text, ": ")
		if !found {
			continue
		}

		switch name {
		case "Nodes created":
			stats.NodesCreated = atoi(value)
		case "Nodes deleted":
			stats.NodesDeleted = atoi(value)
		case "Relationships created":
			stats.RelationshipsCreated = atoi(value)
		case "Relationships deleted":
			stats.RelationshipsDeleted = atoi(value)
		case "Properties set":
			stats.PropertiesSet = atoi(value)
		case "Labels added":
			stats.LabelsAdded = atoi(value)
		case "Query internal execution time":
			value = strings.TrimSuffix(value, " milliseconds")
			stats.ExecutionTimeMS, _ = strconv.ParseFloat(value, 64)
		}
	}

	return stats
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)

	return n
}

func intOption(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func isConnectionError(err error) bool {
	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "closed")
}
