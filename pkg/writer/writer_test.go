package writer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keibalab/racefeed/pkg/config"
	"github.com/keibalab/racefeed/pkg/driver"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/layout"
	"github.com/keibalab/racefeed/pkg/parser"
	"github.com/keibalab/racefeed/pkg/schema"
	"github.com/keibalab/racefeed/pkg/stats"
)

// fakeDriver keeps upserted rows in memory keyed by primary key so tests
// can assert final table state without a database.
type fakeDriver struct {
	store map[string]map[string][]interface{}
	// failRow makes one bulk row and its per-row retry fail.
	failRow func(table string, args []interface{}) error
	// connErr simulates a lost connection on the next batch.
	connErr    bool
	reconnects int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{store: make(map[string]map[string][]interface{})}
}

func (d *fakeDriver) Connect(ctx context.Context) error { d.reconnects++; return nil }
func (d *fakeDriver) Close() error                      { return nil }
func (d *fakeDriver) Ping(ctx context.Context) error    { return nil }

func (d *fakeDriver) QuoteIdent(name string) string { return `"` + name + `"` }
func (d *fakeDriver) TypeName(t layout.Type) string { return "TEXT" }

func (d *fakeDriver) UpsertTemplate(table string, columns, keyColumns []string) string {
	return "UPSERT " + table
}

func (d *fakeDriver) Exec(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	if strings.HasPrefix(sql, "CREATE TABLE") {
		return 0, nil
	}
	table := strings.TrimPrefix(sql, "UPSERT ")
	if d.failRow != nil {
		if err := d.failRow(table, args); err != nil {
			return 0, err
		}
	}
	d.apply(table, args)
	return 1, nil
}

func (d *fakeDriver) Query(ctx context.Context, sql string, args ...interface{}) ([]driver.Row, error) {
	return nil, nil
}

func (d *fakeDriver) Begin(ctx context.Context) (driver.Tx, error) {
	if d.connErr {
		d.connErr = false
		return nil, errors.New(errors.ErrorTypeConnection, "connection lost")
	}
	return &fakeTx{d: d}, nil
}

func (d *fakeDriver) apply(table string, args []interface{}) {
	def, _ := schema.Lookup(table)
	key := make([]string, 0, len(def.Key))
	cols := def.ColumnNames()
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	for _, k := range def.Key {
		key = append(key, fmt.Sprint(args[idx[k]]))
	}
	if d.store[table] == nil {
		d.store[table] = make(map[string][]interface{})
	}
	d.store[table][strings.Join(key, "|")] = args
}

func (d *fakeDriver) rowCount(table string) int { return len(d.store[table]) }

type fakeTx struct {
	d      *fakeDriver
	staged []func()
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	return 1, nil
}

func (t *fakeTx) BulkExec(ctx context.Context, sql string, paramRows [][]interface{}) error {
	table := strings.TrimPrefix(sql, "UPSERT ")
	for _, args := range paramRows {
		if t.d.failRow != nil {
			if err := t.d.failRow(table, args); err != nil {
				return err
			}
		}
		a := args
		t.staged = append(t.staged, func() { t.d.apply(table, a) })
	}
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	for _, apply := range t.staged {
		apply()
	}
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.staged = nil
	return nil
}

func makeRA(t *testing.T, raceNum string) *parser.Record {
	t.Helper()
	l, _ := layout.Lookup(feed.Central, "RA")
	buf := spaces(l.Length)
	copy(buf, "RA")
	copy(buf[11:], "2024")
	copy(buf[15:], "0601")
	copy(buf[19:], "05")
	copy(buf[21:], "03")
	copy(buf[23:], "01")
	copy(buf[25:], raceNum)
	records, err := parser.Parse(feed.Central, feed.Accumulated, buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func makeSE(t *testing.T, raceNum, umaban string) *parser.Record {
	t.Helper()
	l, _ := layout.Lookup(feed.Central, "SE")
	buf := spaces(l.Length)
	copy(buf, "SE")
	copy(buf[11:], "2024")
	copy(buf[15:], "0601")
	copy(buf[19:], "05")
	copy(buf[21:], "03")
	copy(buf[23:], "01")
	copy(buf[25:], raceNum)
	copy(buf[28:], umaban)
	records, err := parser.Parse(feed.Central, feed.Accumulated, buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func spaces(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = ' '
	}
	return buf
}

func newWriter(drv driver.Driver, counters *stats.Counters, batchSize int) *Writer {
	return New(drv, config.PipelineConfig{BatchSize: batchSize}, config.DatabaseConfig{
		ReconnectAttempts: 2,
	}, counters)
}

func TestWriteAndFlush(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	counters := stats.New()
	w := newWriter(drv, counters, 1000)

	for i := 1; i <= 3; i++ {
		require.NoError(t, w.Write(ctx, makeRA(t, fmt.Sprintf("%02d", i))))
	}
	for i := 1; i <= 48; i++ {
		require.NoError(t, w.Write(ctx, makeSE(t, "01", fmt.Sprintf("%02d", i))))
	}
	require.NoError(t, w.Flush(ctx))

	assert.Equal(t, 3, drv.rowCount("NL_RA"))
	assert.Equal(t, 48, drv.rowCount("NL_SE"))

	s := counters.Snapshot()
	assert.Equal(t, int64(51), s.Imported)
	assert.Equal(t, int64(0), s.Failed)
	assert.Equal(t, int64(1), s.Batches)
}

func TestUpsertIdempotence(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	counters := stats.New()
	w := newWriter(drv, counters, 1000)

	for i := 0; i < 2; i++ {
		require.NoError(t, w.Write(ctx, makeRA(t, "01")))
		require.NoError(t, w.Write(ctx, makeRA(t, "02")))
		require.NoError(t, w.Write(ctx, makeRA(t, "03")))
	}
	require.NoError(t, w.Flush(ctx))

	// Six writes counted, exactly three rows stored.
	assert.Equal(t, int64(6), counters.Snapshot().Imported)
	assert.Equal(t, 3, drv.rowCount("NL_RA"))
}

func TestBatchCapacityTriggersFlush(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	counters := stats.New()
	w := newWriter(drv, counters, 10)

	for i := 1; i <= 25; i++ {
		require.NoError(t, w.Write(ctx, makeSE(t, "01", fmt.Sprintf("%02d", i))))
	}
	assert.Equal(t, 20, drv.rowCount("NL_SE"))
	assert.Equal(t, 5, w.Pending())

	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, 25, drv.rowCount("NL_SE"))
	assert.Equal(t, int64(3), counters.Snapshot().Batches)
}

func TestBatchAtomicityAndRowFallback(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	counters := stats.New()
	w := newWriter(drv, counters, 1000)

	def, _ := schema.Lookup("NL_SE")
	umabanIdx := -1
	for i, c := range def.ColumnNames() {
		if c == "Umaban" {
			umabanIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, umabanIdx, 0)

	drv.failRow = func(table string, args []interface{}) error {
		if table == "NL_SE" && args[umabanIdx] == "07" {
			return errors.New(errors.ErrorTypeQuery, "constraint violated")
		}
		return nil
	}

	for i := 1; i <= 10; i++ {
		require.NoError(t, w.Write(ctx, makeSE(t, "01", fmt.Sprintf("%02d", i))))
	}
	require.NoError(t, w.Flush(ctx))

	// The batch rolled back, then every row but the poisoned one made it
	// through the per-row fallback.
	assert.Equal(t, 9, drv.rowCount("NL_SE"))
	s := counters.Snapshot()
	assert.Equal(t, int64(9), s.Imported)
	assert.Equal(t, int64(1), s.Failed)
}

func TestMissingPrimaryKeyRejected(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	counters := stats.New()
	w := newWriter(drv, counters, 1000)

	rec := makeRA(t, "01")
	rec.Fields["RaceNum"] = nil
	require.NoError(t, w.Write(ctx, rec))
	require.NoError(t, w.Flush(ctx))

	assert.Equal(t, 0, drv.rowCount("NL_RA"))
	assert.Equal(t, int64(1), counters.Snapshot().Failed)
}

func TestConnectionLossReconnects(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	counters := stats.New()
	w := newWriter(drv, counters, 1000)

	drv.connErr = true
	require.NoError(t, w.Write(ctx, makeRA(t, "01")))
	require.NoError(t, w.Flush(ctx))

	assert.GreaterOrEqual(t, drv.reconnects, 1)
	assert.Equal(t, 1, drv.rowCount("NL_RA"))
}

func TestBindOrderFollowsSchema(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	counters := stats.New()
	w := newWriter(drv, counters, 1000)

	rec := makeRA(t, "11")
	require.NoError(t, w.Write(ctx, rec))
	require.NoError(t, w.Flush(ctx))

	def, _ := schema.Lookup("NL_RA")
	cols := def.ColumnNames()
	stored := drv.store["NL_RA"]["2024|0601|05|03|01|11"]
	require.NotNil(t, stored)
	require.Len(t, stored, len(cols))
	for i, c := range cols {
		if c == "RaceNum" {
			assert.Equal(t, "11", stored[i])
		}
	}
}
