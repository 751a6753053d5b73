// Package jobs records every video generation attempt in a small SQLite
// database so runs can be listed and audited after the fact.
//
// The store uses the pure-Go modernc.org/sqlite driver in WAL mode and
// retries briefly on SQLITE_BUSY, which lets concurrent CLI invocations share
// one history file. Schema changes bump schemaVersion; older databases are
// rejected with ErrSchemaMismatch rather than migrated.
package jobs
