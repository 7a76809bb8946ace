// Command grafo runs graph queries and schema operations against a
// configured FalkorDB or Neo4j database.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rlch/grafo"
	_ "github.com/rlch/grafo/databases/falkordb"
	_ "github.com/rlch/grafo/databases/neo4j"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// CLI errors.
var (
	ErrNoDatabase = errors.New("no database configured (use flags or a .grafo.yaml)")
	ErrNoGraph    = errors.New("no graph name specified (use --graph or a .grafo.yaml)")
)

var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "grafo",
		Usage:   "Run graph queries against FalkorDB or Neo4j",
		Version: version,
		Commands: []*cli.Command{
			queryCommand(),
			schemaCommand(),
			indexCommand(),
			dropCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// connectionFlags are shared by every subcommand that talks to a
// database.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Usage:   "database backend to use (overrides config)",
		},
		&cli.StringFlag{
			Name:    "graph",
			Aliases: []string{"g"},
			Usage:   "graph name (overrides config)",
		},
		&cli.StringFlag{
			Name:    "uri",
			Usage:   "database connection URI or address",
			Sources: cli.EnvVars("GRAFO_URI"),
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "database username",
			Sources: cli.EnvVars("GRAFO_USER"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "database password",
			Sources: cli.EnvVars("GRAFO_PASS"),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "verbose output",
		},
	}
}

// openGraph resolves connection settings (flags over config) and opens a
// session. The caller closes the returned database.
func openGraph(cmd *cli.Command) (*grafo.Graph, grafo.Database, error) {
	loadedCfg, configErr := grafo.LoadConfig(".")

	databaseName := cmd.String("database")
	if databaseName == "" && configErr == nil {
		databaseName = loadedCfg.DatabaseName()
	}
	if databaseName == "" {
		return nil, nil, ErrNoDatabase
	}

	dbCfg := map[string]any{}
	if configErr == nil {
		if fromConfig := loadedCfg.DatabaseConfig(); loadedCfg.DatabaseName() == databaseName && fromConfig != nil {
			dbCfg = fromConfig
		}
	}
	if uri := cmd.String("uri"); uri != "" {
		// FalkorDB speaks plain addresses, Neo4j speaks URIs.
		dbCfg["addr"] = uri
		dbCfg["uri"] = uri
	}
	if username := cmd.String("username"); username != "" {
		dbCfg["username"] = username
	}
	if password := cmd.String("password"); password != "" {
		dbCfg["password"] = password
	}

	graphName := cmd.String("graph")
	if graphName == "" && configErr == nil {
		graphName = loadedCfg.Graph
	}
	if graphName == "" {
		return nil, nil, ErrNoGraph
	}

	db, err := grafo.OpenDatabase(databaseName, dbCfg)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.NewNop()
	if cmd.Bool("verbose") {
		logger, err = zap.NewDevelopment()
		if err != nil {
			_ = db.Close()

			return nil, nil, err
		}
	}

	graph, err := grafo.NewGraph(graphName, db, grafo.WithLogger(logger))
	if err != nil {
		_ = db.Close()

		return nil, nil, err
	}

	return graph, db, nil
}
