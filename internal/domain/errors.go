package domain

import "errors"

// Failure classes surfaced by the engine and embedder wrappers. Callers
// match them with errors.Is; wrapped errors carry the underlying detail.
var (
	// ErrSchemaConflict means index creation failed for a reason other
	// than "already exists". Fatal at startup.
	ErrSchemaConflict = errors.New("index schema conflict")

	// ErrEncoding means the embedding model could not produce a vector.
	// Callers must propagate it; substituting a zero vector would corrupt
	// similarity geometry for every query sharing the index.
	ErrEncoding = errors.New("embedding failed")

	// ErrEngineUnavailable means the search engine was unreachable or
	// returned a transport-level failure.
	ErrEngineUnavailable = errors.New("search engine unavailable")
)
