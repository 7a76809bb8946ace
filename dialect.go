package grafo

// Dialect supplies DB-specific Cypher syntax: index DDL and schema
// procedure call strings. Dialects provide query fragments only;
// transport stays in the Database implementations.
type Dialect interface {
	// Name returns the dialect identifier.
	Name() string

	// CreateIndex returns the CREATE INDEX query string.
	CreateIndex(label, property string) string

	// DropIndex returns the DROP INDEX query string.
	DropIndex(label, property string) string

	// ProcedureLabels returns the procedure call listing node labels.
	ProcedureLabels() string

	// ProcedurePropertyKeys returns the procedure call listing property keys.
	ProcedurePropertyKeys() string

	// ProcedureRelationshipTypes returns the procedure call listing
	// relationship types.
	ProcedureRelationshipTypes() string

	// ProcedureIndexes returns the full procedure call, with YIELD, for
	// listing indexes with predictable columns.
	ProcedureIndexes() string
}

// FalkorDBDialect is the dialect for FalkorDB/RedisGraph.
type FalkorDBDialect struct{}

func (FalkorDBDialect) Name() string { return DatabaseFalkorDB }

func (FalkorDBDialect) CreateIndex(label, property string) string {
	return "CREATE INDEX ON :" + label + "(" + property + ")"
}

func (FalkorDBDialect) DropIndex(label, property string) string {
	return "DROP INDEX ON :" + label + "(" + property + ")"
}

func (FalkorDBDialect) ProcedureLabels() string { return "db.labels()" }

func (FalkorDBDialect) ProcedurePropertyKeys() string { return "db.propertyKeys()" }

func (FalkorDBDialect) ProcedureRelationshipTypes() string { return "db.relationshipTypes()" }

func (FalkorDBDialect) ProcedureIndexes() string {
	return "db.indexes() YIELD label, properties"
}

// Neo4jDialect is the dialect for Neo4j.
type Neo4jDialect struct{}

func (Neo4jDialect) Name() string { return DatabaseNeo4j }

func (Neo4jDialect) CreateIndex(label, property string) string {
	return "CREATE INDEX IF NOT EXISTS FOR (n:" + label + ") ON (n." + property + ")"
}

func (Neo4jDialect) DropIndex(label, property string) string {
	return "DROP INDEX ON :" + label + "(" + property + ")"
}

func (Neo4jDialect) ProcedureLabels() string { return "db.labels()" }

func (Neo4jDialect) ProcedurePropertyKeys() string { return "db.propertyKeys()" }

func (Neo4jDialect) ProcedureRelationshipTypes() string { return "db.relationshipTypes()" }

func (Neo4jDialect) ProcedureIndexes() string {
	return "db.indexes() YIELD label, properties"
}
