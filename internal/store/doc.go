// Package store persists datasheet analysis records, their metadata tags, and
// generated checklist items in a SQLite database.
//
// The store opens with WAL journaling and foreign keys enabled, applies
// embedded SQL migrations under a schema_migrations version table, and
// rebuilds legacy tables that still carry obsolete columns. Each write runs in
// its own transaction so concurrent pipeline workers for different filenames
// cannot leave partial rows behind; the (filename, file_hash) uniqueness
// constraint turns duplicate inserts into ErrDuplicateAnalysis atomically.
package store
