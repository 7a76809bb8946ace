package grafo

// Command is the wire command used to dispatch a query to the server.
type Command string

// Graph commands.
const (
	CommandQuery         Command = "GRAPH.QUERY"
	CommandReadOnlyQuery Command = "GRAPH.RO_QUERY"
	CommandDelete        Command = "GRAPH.DELETE"
)

// Database names.
const (
	DatabaseFalkorDB = "falkordb"
	DatabaseNeo4j    = "neo4j"
)

// Sort directions.
const (
	Ascending  = "ASC"
	Descending = "DESC"
)
