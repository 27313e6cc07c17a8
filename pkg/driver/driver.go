// Package driver defines the small capability set the writer relies on to
// talk to a database. Implementations exist for the embedded single-file
// engine (sqlite) and the client-server engine (postgres). The writer
// never branches on a driver's identity: identifier quoting, type names
// and the upsert dialect are all resolved through this interface.
package driver

import (
	"context"

	"github.com/keibalab/racefeed/pkg/layout"
)

// Row is one result row, column name to value.
type Row map[string]interface{}

// Tx is one open transaction.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (int64, error)
	// BulkExec runs one statement once per parameter row inside the
	// transaction; batch flush uses it.
	BulkExec(ctx context.Context, sql string, paramRows [][]interface{}) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Driver is the database capability surface.
type Driver interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	Exec(ctx context.Context, sql string, args ...interface{}) (int64, error)
	Query(ctx context.Context, sql string, args ...interface{}) ([]Row, error)
	Begin(ctx context.Context) (Tx, error)

	// QuoteIdent quotes an identifier. Any column name that is not a plain
	// ASCII alpha identifier must pass through it in every generated
	// statement.
	QuoteIdent(name string) string
	// TypeName maps a logical column type to the engine's DDL type.
	TypeName(t layout.Type) string
	// UpsertTemplate produces the engine's insert-or-replace statement
	// with placeholders bound in column order.
	UpsertTemplate(table string, columns, keyColumns []string) string
}

// NeedsQuoting reports whether an identifier requires quoting: anything
// that is not purely ASCII letters and underscores, including names with
// digits or non-ASCII codepoints. Drivers quote unconditionally; this
// exists so tests can assert the obligation.
func NeedsQuoting(name string) bool {
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '_':
		default:
			return true
		}
	}
	return false
}
