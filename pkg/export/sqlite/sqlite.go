// Package sqlite exports projected entity tables to a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/modelviz/pkg/schema"
)

// CatalogTable describes every exported column.
const CatalogTable = "modelviz_columns"

const catalogSchema = `
CREATE TABLE IF NOT EXISTS modelviz_columns (
	table_name  TEXT NOT NULL,
	position    INTEGER NOT NULL,
	column_name TEXT NOT NULL,
	label       TEXT NOT NULL,
	kind        TEXT NOT NULL,
	unresolved  TEXT,
	PRIMARY KEY (table_name, position)
);
`

// Exporter writes DataSets into one database file.
type Exporter struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path.
func Open(path string) (*Exporter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Exporter{db: db, path: path}, nil
}

// Path returns the database file path.
func (e *Exporter) Path() string { return e.path }

// Close closes the database.
func (e *Exporter) Close() error { return e.db.Close() }

// Write replaces every table of ds in the database, in one transaction.
func (e *Exporter) Write(ctx context.Context, ds *schema.DataSet) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, t := range ds.Tables {
		if err := writeTable(ctx, tx, t); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

func writeTable(ctx context.Context, tx *sql.Tx, t *schema.Table) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(t.Name)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+CatalogTable+" WHERE table_name = ?", t.Name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, createTable(t)); err != nil {
		return err
	}
	for i, c := range t.Columns {
		var unresolved any
		if c.Unresolved != "" {
			unresolved = c.Unresolved
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO modelviz_columns (table_name, position, column_name, label, kind, unresolved)
			VALUES (?, ?, ?, ?, ?, ?)
		`, t.Name, i, c.Name, c.Label, c.Kind.String(), unresolved)
		if err != nil {
			return err
		}
	}
	return nil
}

// createTable builds the CREATE TABLE statement. Opaque columns carry no
// declared type. A table without columns gets a rowid-only placeholder column.
func createTable(t *schema.Table) string {
	cols := make([]string, 0, len(t.Columns))
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		name := c.Name
		if seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		def := quote(name)
		if typ := c.Kind.SQLType(); typ != "" {
			def += " " + typ
		}
		cols = append(cols, def)
	}
	if len(cols) == 0 {
		cols = append(cols, quote("_id")+" INTEGER PRIMARY KEY")
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quote(t.Name), strings.Join(cols, ", "))
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Tables lists the exported entity tables.
func (e *Exporter) Tables(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, "SELECT DISTINCT table_name FROM "+CatalogTable+" ORDER BY table_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ColumnTypes returns the declared SQLite type of each column of table, in
// order.
func (e *Exporter) ColumnTypes(ctx context.Context, table string) (map[string]string, error) {
	rows, err := e.db.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make(map[string]string)
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, err
		}
		types[name] = typ
	}
	return types, rows.Err()
}
