// Package parser turns vendor record buffers into typed records bound for
// their destination tables. Layouts are declared in pkg/layout; parsing is
// pure — no I/O, no allocation beyond the output records.
package parser

import (
	"strings"

	"github.com/keibalab/racefeed/pkg/codec"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/layout"
	"github.com/keibalab/racefeed/pkg/schema"
)

// Record is one parsed row bound for a destination table.
type Record struct {
	Kind   string
	Table  string
	Fields map[string]interface{}
	// Warnings counts fields whose content failed numeric conversion and
	// decoded to null.
	Warnings int
}

// SourceFile returns the vendor file the record came from, when known.
// The session worker stamps it through the pipeline metadata field.
func (r *Record) SourceFile() string {
	f, _ := r.Fields["_source_file"].(string)
	return f
}

// SetSourceFile stamps the originating vendor file name. The writer binds
// only the destination table's schema columns, so the field is never
// stored.
func (r *Record) SetSourceFile(name string) {
	r.Fields["_source_file"] = name
}

// Parse decodes one record buffer under the given feed and path. Kinds
// with a repeated block produce one record per populated repetition;
// everything else produces exactly one record. Rows of any sub layouts
// (O1W inside O1) follow the parent kind's rows.
func Parse(f feed.Feed, p feed.Path, buf []byte) ([]*Record, error) {
	if len(buf) < 3 {
		return nil, errors.Newf(errors.ErrorTypeData, "buffer too short: %d bytes", len(buf)).
			WithDetail("reason", "BufferTooShort")
	}

	kind := string(buf[:2])
	l, ok := layout.Lookup(f, kind)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeData, "unknown record kind %q for feed %s", kind, f).
			WithDetail("reason", "UnknownKind")
	}
	if len(buf) < l.Length {
		return nil, errors.Newf(errors.ErrorTypeData,
			"buffer too short for kind %s: %d < %d", kind, len(buf), l.Length).
			WithDetail("reason", "BufferTooShort")
	}

	records, err := parseLayout(f, p, l, buf)
	if err != nil {
		return nil, err
	}
	// Sub layouts are record families riding inside the same buffer with
	// their own combinatorial key and destination table.
	for _, sub := range l.Sub {
		subRecords, err := parseLayout(f, p, sub, buf)
		if err != nil {
			return nil, err
		}
		records = append(records, subRecords...)
	}
	return records, nil
}

// parseLayout decodes one layout's rows from the buffer: header fields
// shared by every row, and one row per populated repetition across the
// layout's parallel blocks.
func parseLayout(f feed.Feed, p feed.Path, l *layout.Layout, buf []byte) ([]*Record, error) {
	table, err := schema.Route(f, p, l.Kind)
	if err != nil {
		return nil, err
	}

	base := make(map[string]interface{}, len(l.Fields))
	warnings := 0
	for _, fd := range l.Fields {
		v, warn := extract(buf, fd, 0)
		if warn {
			warnings++
		}
		base[fd.Name] = v
	}

	if len(l.Blocks) == 0 {
		return []*Record{{Kind: l.Kind, Table: table, Fields: base, Warnings: warnings}}, nil
	}

	keyBlock := l.Blocks[0]
	keyField := keyBlock.Fields[0]
	records := make([]*Record, 0, 8)
	for i := 0; i < keyBlock.Count; i++ {
		keyOff := keyBlock.Off + i*keyBlock.Stride + keyField.Off
		if blank(buf[keyOff : keyOff+keyField.Len]) {
			continue
		}
		fields := make(map[string]interface{}, len(base)+len(keyBlock.Fields)*len(l.Blocks))
		for k, v := range base {
			fields[k] = v
		}
		w := warnings
		for _, b := range l.Blocks {
			off := b.Off + i*b.Stride
			for _, fd := range b.Fields {
				v, warn := extract(buf, fd, off)
				if warn {
					w++
				}
				fields[fd.Name] = v
			}
		}
		records = append(records, &Record{Kind: l.Kind, Table: table, Fields: fields, Warnings: w})
	}
	return records, nil
}

// IsUnknownKind reports whether err flags an unrecognised record kind.
func IsUnknownKind(err error) bool { return reason(err) == "UnknownKind" }

// IsBufferTooShort reports whether err flags an undersized buffer.
func IsBufferTooShort(err error) bool { return reason(err) == "BufferTooShort" }

func reason(err error) string {
	var e *errors.Error
	if !errors.As(err, &e) || e.Details == nil {
		return ""
	}
	r, _ := e.Details["reason"].(string)
	return r
}

func extract(buf []byte, fd layout.Field, base int) (interface{}, bool) {
	off := base + fd.Off
	switch fd.Typ {
	case layout.Int, layout.BigInt:
		return codec.Int(buf, off, fd.Len)
	case layout.Real:
		return codec.Real(buf, off, fd.Len, fd.Scale)
	default:
		return codec.Text(buf, off, fd.Len), false
	}
}

// blank reports whether the repetition key bytes are empty padding
// (spaces, all zeroes or mask characters).
func blank(b []byte) bool {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return true
	}
	return strings.Trim(s, "0-*") == ""
}
