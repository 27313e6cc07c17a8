// Package sqlite implements the driver interface on the embedded
// single-file engine through modernc.org/sqlite (pure Go, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/keibalab/racefeed/pkg/driver"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/layout"
)

// Driver is the sqlite implementation of driver.Driver.
type Driver struct {
	path string
	db   *sql.DB
}

// New returns an unconnected driver for the given database file path.
// ":memory:" opens an in-memory database.
func New(path string) *Driver {
	return &Driver{path: path}
}

// Connect opens the database file.
func (d *Driver) Connect(ctx context.Context) error {
	db, err := sql.Open("sqlite", d.path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to open sqlite database")
	}
	// The vendor pipeline has exactly one writer; a second connection
	// only risks SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to ping sqlite database")
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to enable WAL")
	}
	d.db = db
	return nil
}

// Close releases the connection.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Ping verifies the connection.
func (d *Driver) Ping(ctx context.Context) error {
	if d.db == nil {
		return errors.New(errors.ErrorTypeConnection, "sqlite driver not connected")
	}
	return d.db.PingContext(ctx)
}

// Exec runs one statement.
func (d *Driver) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if d.db == nil {
		return 0, errors.New(errors.ErrorTypeConnection, "sqlite driver not connected")
	}
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeQuery, "exec failed")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Query runs a statement and materialises the rows.
func (d *Driver) Query(ctx context.Context, query string, args ...interface{}) ([]driver.Row, error) {
	if d.db == nil {
		return nil, errors.New(errors.ErrorTypeConnection, "sqlite driver not connected")
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "query failed")
	}
	defer rows.Close()
	return scanRows(rows)
}

// Begin opens a transaction.
func (d *Driver) Begin(ctx context.Context) (driver.Tx, error) {
	if d.db == nil {
		return nil, errors.New(errors.ErrorTypeConnection, "sqlite driver not connected")
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to begin transaction")
	}
	return &sqliteTx{tx: tx}, nil
}

// QuoteIdent quotes an identifier with double quotes, doubling embedded
// quotes.
func (d *Driver) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// TypeName maps logical types to sqlite storage classes.
func (d *Driver) TypeName(t layout.Type) string {
	switch t {
	case layout.Int:
		return "INTEGER"
	case layout.BigInt:
		return "BIGINT"
	case layout.Real:
		return "REAL"
	default:
		return "TEXT"
	}
}

// UpsertTemplate renders the sqlite insert-or-replace dialect.
func (d *Driver) UpsertTemplate(table string, columns, keyColumns []string) string {
	var b strings.Builder
	b.WriteString("INSERT OR REPLACE INTO ")
	b.WriteString(d.QuoteIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(c))
	}
	b.WriteString(") VALUES (")
	for i := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('?')
	}
	b.WriteString(")")
	return b.String()
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeQuery, "exec failed")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (t *sqliteTx) BulkExec(ctx context.Context, query string, paramRows [][]interface{}) error {
	stmt, err := t.tx.PrepareContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeQuery, "prepare failed")
	}
	defer stmt.Close()
	for _, args := range paramRows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrap(err, errors.ErrorTypeQuery, "bulk exec failed")
		}
	}
	return nil
}

func (t *sqliteTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback()
}

func scanRows(rows *sql.Rows) ([]driver.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read columns")
	}
	var out []driver.Row
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "scan failed")
		}
		row := make(driver.Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
