// Package source loads dynamic records for a schema from files and SQLite
// tables.
//
// Files hold a YAML (or JSON) list of maps. Tables are read through
// database/sql with the go-sqlite3 driver; simple conjunctive filters are
// pushed down into a parameterized WHERE clause so fewer rows cross the
// driver, and the in-memory view still applies the complete filter.
package source
