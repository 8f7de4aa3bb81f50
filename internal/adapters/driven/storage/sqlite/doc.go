// Package sqlite provides a SQLite-based implementation of the driven
// store interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single database connection serves:
//
//   - ProjectStore: project definitions, including exclusion patterns
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each applied version is recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.codekeeper/data/codekeeper.db
package sqlite
