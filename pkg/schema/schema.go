// Package schema owns the destination-table catalogue and the router that
// maps (feed, path, record kind) to a table. Column definitions derive
// from the layout declarations so parser output and table shape cannot
// drift apart. Every table declares a primary key; a keyless layout fails
// catalogue construction rather than shipping.
package schema

import (
	"sort"
	"strings"

	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/layout"
)

// Column is one destination-table column.
type Column struct {
	Name string
	Type layout.Type
}

// TableDef is the fixed structural definition of one destination table.
type TableDef struct {
	Name    string
	Kind    string
	Feed    feed.Feed
	Path    feed.Path
	Columns []Column
	Key     []string
}

// ColumnNames returns the declared column order used for binding.
func (t *TableDef) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Quoter resolves identifier quoting and type names for DDL generation;
// database drivers implement it.
type Quoter interface {
	QuoteIdent(name string) string
	TypeName(t layout.Type) string
}

// CreateSQL renders the CREATE TABLE IF NOT EXISTS statement for t.
func (t *TableDef) CreateSQL(q Quoter) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(q.QuoteIdent(t.Name))
	b.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(q.QuoteIdent(c.Name))
		b.WriteByte(' ')
		b.WriteString(q.TypeName(c.Type))
	}
	b.WriteString(", PRIMARY KEY (")
	for i, k := range t.Key {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(q.QuoteIdent(k))
	}
	b.WriteString("))")
	return b.String()
}

// rtKinds are the record kinds delivered on the real-time path and backed
// by an RT_ table. Real-time records of any other kind land in the
// accumulated table for their kind.
var rtKinds = map[string]bool{
	"RA": true, "SE": true, "HR": true, "HA": true,
	"O1": true, "O1W": true, "O2": true, "O3": true, "O4": true, "O5": true, "O6": true,
	"H1": true, "H6": true,
	"WE": true, "WH": true, "AV": true, "JC": true, "TC": true, "CC": true,
	"HC": true, "TM": true, "DM": true, "WF": true,
}

var catalogue = buildCatalogue()

func buildCatalogue() map[string]*TableDef {
	cat := make(map[string]*TableDef)
	add := func(f feed.Feed, l *layout.Layout) {
		paths := []feed.Path{feed.Accumulated}
		if rtKinds[l.Kind] {
			paths = append(paths, feed.RealTime)
		}
		for _, p := range paths {
			name := tableName(f, p, l.Kind)
			if _, dup := cat[name]; dup {
				continue
			}
			cat[name] = tableDef(name, f, p, l.Kind, l)
		}
	}
	for _, f := range []feed.Feed{feed.Central, feed.Regional} {
		for _, kind := range layout.Kinds(f) {
			l, _ := layout.Lookup(f, kind)
			add(f, l)
			// Sub families (the bracket-quinella family inside O1) get
			// their own destination tables.
			for _, sub := range l.Sub {
				add(f, sub)
			}
		}
	}
	return cat
}

func tableDef(name string, f feed.Feed, p feed.Path, kind string, l *layout.Layout) *TableDef {
	cols := make([]Column, 0, len(l.Fields)+8)
	for _, fd := range l.Fields {
		cols = append(cols, Column{Name: fd.Name, Type: fd.Typ})
	}
	for _, b := range l.Blocks {
		for _, fd := range b.Fields {
			cols = append(cols, Column{Name: fd.Name, Type: fd.Typ})
		}
	}
	if len(l.Key) == 0 {
		// layout.normalize already refuses this; guard the catalogue too.
		panic("schema: table " + name + " has no primary key")
	}
	return &TableDef{
		Name:    name,
		Kind:    kind,
		Feed:    f,
		Path:    p,
		Columns: cols,
		Key:     append([]string(nil), l.Key...),
	}
}

func tableName(f feed.Feed, p feed.Path, kind string) string {
	return p.TablePrefix() + kind + f.TableSuffix()
}

// Route resolves the destination table for a record kind on a feed and
// path. Sub-family kinds (O1W) route like top-level kinds.
func Route(f feed.Feed, p feed.Path, kind string) (string, error) {
	if _, ok := layout.Resolve(f, kind); !ok {
		return "", errors.Newf(errors.ErrorTypeData, "no destination for kind %q on feed %s", kind, f)
	}
	if p == feed.RealTime && !rtKinds[kind] {
		p = feed.Accumulated
	}
	return tableName(f, p, kind), nil
}

// Lookup returns the table definition for a destination table name.
func Lookup(table string) (*TableDef, bool) {
	t, ok := catalogue[table]
	return t, ok
}

// Tables returns every table definition, sorted by name.
func Tables() []*TableDef {
	out := make([]*TableDef, 0, len(catalogue))
	for _, t := range catalogue {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TablesFor returns the table definitions of one feed, sorted by name.
func TablesFor(f feed.Feed) []*TableDef {
	out := make([]*TableDef, 0, 64)
	for _, t := range catalogue {
		if t.Feed == f {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
