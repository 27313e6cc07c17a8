// Package postgres implements the driver interface on the client-server
// engine through the pgx stdlib adapter.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/keibalab/racefeed/pkg/driver"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/layout"
)

// Driver is the postgres implementation of driver.Driver.
type Driver struct {
	dsn string
	db  *sql.DB
}

// New returns an unconnected driver for the given DSN.
func New(dsn string) *Driver {
	return &Driver{dsn: dsn}
}

// Connect opens the connection pool.
func (d *Driver) Connect(ctx context.Context) error {
	db, err := sql.Open("pgx", d.dsn)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to open postgres connection")
	}
	// The writer is the only user of this connection.
	db.SetMaxOpenConns(2)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to ping postgres")
	}
	d.db = db
	return nil
}

// Close releases the pool.
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
		return errors.New(errors.ErrorTypeConnection, "postgres driver not connected")
	}
	return d.db.PingContext(ctx)
}

// Exec runs one statement.
func (d *Driver) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if d.db == nil {
		return 0, errors.New(errors.ErrorTypeConnection, "postgres driver not connected")
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
		return nil, errors.New(errors.ErrorTypeConnection, "postgres driver not connected")
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "query failed")
	}
	defer rows.Close()

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

// Begin opens a transaction.
func (d *Driver) Begin(ctx context.Context) (driver.Tx, error) {
	if d.db == nil {
		return nil, errors.New(errors.ErrorTypeConnection, "postgres driver not connected")
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to begin transaction")
	}
	return &pgTx{tx: tx}, nil
}

// QuoteIdent quotes an identifier with double quotes, doubling embedded
// quotes.
func (d *Driver) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// TypeName maps logical types to postgres column types.
func (d *Driver) TypeName(t layout.Type) string {
	switch t {
	case layout.Int:
		return "INTEGER"
	case layout.BigInt:
		return "BIGINT"
	case layout.Real:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// UpsertTemplate renders the ON CONFLICT upsert dialect.
func (d *Driver) UpsertTemplate(table string, columns, keyColumns []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
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
		fmt.Fprintf(&b, "$%d", i+1)
	}
	b.WriteString(") ON CONFLICT (")
	for i, k := range keyColumns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(k))
	}
	b.WriteString(") DO UPDATE SET ")
	key := make(map[string]bool, len(keyColumns))
	for _, k := range keyColumns {
		key[k] = true
	}
	first := true
	for _, c := range columns {
		if key[c] {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(d.QuoteIdent(c))
		b.WriteString(" = EXCLUDED.")
		b.WriteString(d.QuoteIdent(c))
	}
	return b.String()
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeQuery, "exec failed")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (t *pgTx) BulkExec(ctx context.Context, query string, paramRows [][]interface{}) error {
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

func (t *pgTx) Commit(ctx context.Context) error   { return t.tx.Commit() }
func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback() }
