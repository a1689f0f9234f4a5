// Package sqlite provides the SQLite-backed knowledge table and user
// profile stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share one connection:
//
//   - KnowledgeStore: product and vendor definitions, kept in import order
//   - ProfileStore: per-user role and focus areas for answer personalisation
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docask/data/docask.db
package sqlite
