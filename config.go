package grafo

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the .grafo.yaml configuration file.
type Config struct {
	// Database-specific configurations. Only one should be set; the
	// presence of a database config determines which backend to use.
	FalkorDB *FalkorDBConfig `yaml:"falkordb,omitempty"`
	Neo4j    *Neo4jConfig    `yaml:"neo4j,omitempty"`

	// Graph is the default graph name queries run against.
	Graph string `yaml:"graph,omitempty"`
}

// FalkorDBConfig holds FalkorDB/RedisGraph connection settings.
type FalkorDBConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// DatabaseName returns the configured database name, or empty if none.
func (c *Config) DatabaseName() string {
	switch {
	case c.FalkorDB != nil:
		return DatabaseFalkorDB
	case c.Neo4j != nil:
		return DatabaseNeo4j
	default:
		return ""
	}
}

// DatabaseConfig returns the configured backend's settings as the
// generic map a DatabaseFactory consumes.
func (c *Config) DatabaseConfig() map[string]any {
	switch {
	case c.FalkorDB != nil:
		return map[string]any{
			"addr":     c.FalkorDB.Addr,
			"username": c.FalkorDB.Username,
			"password": c.FalkorDB.Password,
			"db":       c.FalkorDB.DB,
		}
	case c.Neo4j != nil:
		return map[string]any{
			"uri":      c.Neo4j.URI,
			"username": c.Neo4j.Username,
			"password": c.Neo4j.Password,
			"database": c.Neo4j.Database,
		}
	default:
		return nil
	}
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".grafo.yaml", ".grafo.yml", "grafo.yaml", "grafo.yml"}

// LoadConfig finds and loads the nearest config file walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
