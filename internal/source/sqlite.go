package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/sieve/internal/accessor"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/schema"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DB is a SQLite database holding record tables.
type DB struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - a single connection
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &DB{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// columns lists the flat fields of s, which are the ones stored as columns.
// Nested records have no column and always read as missing.
func columns(s *schema.Schema) []schema.Field {
	var cols []schema.Field
	for _, f := range s.Fields {
		if f.Nested == nil {
			cols = append(cols, f)
		}
	}
	return cols
}

// ReadTable loads the rows of table as records of s, in rowid order.
//
// Conjunctive numeric predicates of filter are pushed down into the query.
// The result may still contain rows the filter rejects; callers apply the
// full filter in memory.
func (d *DB) ReadTable(ctx context.Context, table string, s *schema.Schema, filter queryir.Group) ([]schema.Record, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	cols := columns(s)
	if len(cols) == 0 {
		return nil, fmt.Errorf("schema has no flat fields to read from %s", table)
	}

	names := make([]string, len(cols))
	for i, f := range cols {
		names[i] = quoteIdent(f.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), quoteIdent(table))
	where, params, err := compileWhere(s, filter)
	if err != nil {
		return nil, err
	}
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY rowid ASC"

	rows, err := d.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var recs []schema.Record
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", table, len(recs), err)
		}

		raw := make(map[string]any, len(cols))
		for i, f := range cols {
			v := values[i]
			if f.Kind == accessor.KindOpaque {
				if v, err = unmarshalOpaque(v); err != nil {
					return nil, fmt.Errorf("%s row %d column %s: %w", table, len(recs), f.Name, err)
				}
			} else if b, ok := v.([]byte); ok {
				v = string(b)
			}
			raw[f.Name] = v
		}

		rec, err := s.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", table, len(recs), err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return recs, nil
}

var columnTypes = map[accessor.Kind]string{
	accessor.KindText:    "TEXT",
	accessor.KindTextual: "TEXT",
	accessor.KindInt:     "INTEGER",
	accessor.KindFloat:   "REAL",
	accessor.KindBool:    "BOOLEAN",
	accessor.KindTime:    "TIMESTAMP",
	accessor.KindOpaque:  "TEXT",
}

// CreateTable creates table with one column per flat field of s.
// Every column accepts NULL; a NULL in a non-nullable field reads as the
// field's zero value. This function is idempotent.
func (d *DB) CreateTable(ctx context.Context, table string, s *schema.Schema) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	defs := make([]string, 0, len(s.Fields))
	for _, f := range columns(s) {
		defs = append(defs, quoteIdent(f.Name)+" "+columnTypes[f.Kind])
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

// Insert appends recs to table in a single transaction.
func (d *DB) Insert(ctx context.Context, table string, s *schema.Schema, recs []schema.Record) (err error) {
	if !tableName.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	cols := columns(s)

	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, f := range cols {
		names[i] = quoteIdent(f.Name)
		marks[i] = "?"
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", "))

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for i, rec := range recs {
		args := make([]any, len(cols))
		for j, f := range cols {
			args[j] = rec[f.Name]
			if f.Kind == accessor.KindOpaque {
				if args[j], err = marshalOpaque(args[j]); err != nil {
					return fmt.Errorf("insert %s row %d column %s: %w", table, i, f.Name, err)
				}
			}
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", table, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}
