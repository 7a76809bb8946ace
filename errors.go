package grafo

import "errors"

// Sentinel errors.
var (
	// ErrConfiguration is returned for invalid declarative setup: empty
	// labels or relation names, bad variable-length bounds, missing
	// primary-key values.
	ErrConfiguration = errors.New("grafo: invalid configuration")

	// ErrNotRegistered is returned when a label or relation name has no
	// descriptor in the registry.
	ErrNotRegistered = errors.New("grafo: not registered")

	// ErrUnknownDatabase is returned when an unknown database backend is requested.
	ErrUnknownDatabase = errors.New("grafo: unknown database")

	// ErrQueryFailed is returned when the server rejects or aborts a query.
	ErrQueryFailed = errors.New("grafo: query failed")

	// ErrConnection is returned when the database cannot be reached.
	ErrConnection = errors.New("grafo: connection failed")

	// ErrConfigNotFound is returned when no config file exists in the
	// directory tree.
	ErrConfigNotFound = errors.New("grafo: no config file found")
)
