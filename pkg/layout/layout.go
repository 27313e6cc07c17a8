// Package layout declares the static field layouts of every vendor record
// kind: field names, byte offsets, lengths, value types, implicit scales
// and primary keys. Parsers read buffers through these tables and the
// schema catalogue derives its column definitions from them, so the two
// can never drift apart.
package layout

import (
	"fmt"
	"sort"

	"github.com/keibalab/racefeed/pkg/feed"
)

// Type is the logical value type of a field.
type Type int

const (
	// Text fields are Shift-JIS, stored as UTF-8.
	Text Type = iota
	// Int fields are ASCII integers.
	Int
	// BigInt fields are ASCII integers that may exceed 32 bits
	// (vote totals, payout sums).
	BigInt
	// Real fields are ASCII integers with an implicit power-of-ten scale.
	Real
)

// Field is one fixed-offset field inside a record or a repeated block.
type Field struct {
	Name  string
	Off   int
	Len   int
	Typ   Type
	Scale int // power of ten divisor for Real fields
}

// Block is a fixed-length sub-layout repeated Count times. A layout may
// declare several parallel blocks; they must share Count, and repetition
// i of every block contributes to the same output row. The first block's
// first field is the combination key; a repetition whose key bytes are
// all padding is skipped.
type Block struct {
	Off    int
	Stride int
	Count  int
	Fields []Field // offsets relative to the repetition start
}

// Layout is the full declaration of one record kind. Sub layouts describe
// record families that ride inside the same buffer but have a different
// combinatorial key and their own destination table (the bracket-quinella
// family inside O1); they are parsed whenever the parent kind is parsed
// and are not addressable by a wire tag of their own.
type Layout struct {
	Kind   string
	Length int
	Fields []Field
	Blocks []*Block
	Sub    []*Layout
	Key    []string
}

// FieldNames returns the output column names: header fields followed by
// the fields of each block in declaration order. Sub-layout fields belong
// to the sub layout's own table and are not included.
func (l *Layout) FieldNames() []string {
	n := len(l.Fields)
	for _, b := range l.Blocks {
		n += len(b.Fields)
	}
	names := make([]string, 0, n)
	for _, f := range l.Fields {
		names = append(names, f.Name)
	}
	for _, b := range l.Blocks {
		for _, f := range b.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}

// normalize renames duplicated field names by appending a numeric suffix
// so every output key is unique, and validates offsets, block shapes and
// keys. Sub layouts normalize recursively.
func (l *Layout) normalize() {
	seen := make(map[string]int)
	rename := func(fs []Field) {
		for i := range fs {
			name := fs[i].Name
			seen[name]++
			if n := seen[name]; n > 1 {
				fs[i].Name = fmt.Sprintf("%s%d", name, n)
			}
		}
	}
	rename(l.Fields)
	for _, b := range l.Blocks {
		rename(b.Fields)
	}

	for _, f := range l.Fields {
		if f.Off+f.Len > l.Length {
			panic(fmt.Sprintf("layout %s: field %s exceeds record length", l.Kind, f.Name))
		}
	}
	for _, b := range l.Blocks {
		if b.Off+b.Stride*b.Count > l.Length {
			panic(fmt.Sprintf("layout %s: block exceeds record length", l.Kind))
		}
		if b.Count != l.Blocks[0].Count {
			panic(fmt.Sprintf("layout %s: parallel blocks must share a repetition count", l.Kind))
		}
		for _, f := range b.Fields {
			if f.Off+f.Len > b.Stride {
				panic(fmt.Sprintf("layout %s: block field %s exceeds stride", l.Kind, f.Name))
			}
		}
	}

	if len(l.Key) == 0 {
		panic(fmt.Sprintf("layout %s: no primary key declared", l.Kind))
	}
	names := make(map[string]bool)
	for _, n := range l.FieldNames() {
		names[n] = true
	}
	for _, k := range l.Key {
		if !names[k] {
			panic(fmt.Sprintf("layout %s: key column %s not declared", l.Kind, k))
		}
	}

	for _, sub := range l.Sub {
		sub.normalize()
	}
}

var (
	central  = make(map[string]*Layout)
	regional = make(map[string]*Layout)
)

// register adds a central-feed layout; the regional feed reuses it unless
// a regional override is registered for the same kind.
func register(l *Layout) *Layout {
	l.normalize()
	if _, dup := central[l.Kind]; dup {
		panic("duplicate layout: " + l.Kind)
	}
	central[l.Kind] = l
	return l
}

// registerRegional adds a regional-only layout or a regional override of a
// central kind whose byte layout differs.
func registerRegional(l *Layout) *Layout {
	l.normalize()
	if _, dup := regional[l.Kind]; dup {
		panic("duplicate regional layout: " + l.Kind)
	}
	regional[l.Kind] = l
	return l
}

// Lookup returns the layout whose wire tag is kind under the given feed.
func Lookup(f feed.Feed, kind string) (*Layout, bool) {
	if f == feed.Regional {
		if l, ok := regional[kind]; ok {
			return l, true
		}
	}
	l, ok := central[kind]
	return l, ok
}

// Resolve returns the layout for a kind, searching sub layouts as well.
// The router uses it so sub families route to their own tables even
// though they have no wire tag.
func Resolve(f feed.Feed, kind string) (*Layout, bool) {
	if l, ok := Lookup(f, kind); ok {
		return l, true
	}
	for _, top := range Kinds(f) {
		l, _ := Lookup(f, top)
		for _, sub := range l.Sub {
			if sub.Kind == kind {
				return sub, true
			}
		}
	}
	return nil, false
}

// Kinds returns the sorted wire-tag record kinds available to a feed.
func Kinds(f feed.Feed) []string {
	set := make(map[string]bool, len(central))
	for k := range central {
		set[k] = true
	}
	if f == feed.Regional {
		for k := range regional {
			set[k] = true
		}
	}
	kinds := make([]string, 0, len(set))
	for k := range set {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
