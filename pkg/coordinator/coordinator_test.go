package coordinator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keibalab/racefeed/pkg/config"
	"github.com/keibalab/racefeed/pkg/driver/sqlite"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/layout"
	"github.com/keibalab/racefeed/pkg/session"
	"github.com/keibalab/racefeed/pkg/stats"
)

// scriptVendor replays a fixed record sequence; scripts are consumed
// across sessions so a retried or repeated session continues where the
// previous one stopped.
type scriptVendor struct {
	steps []scriptStep
	pos   *int
}

type scriptStep struct {
	code int
	data []byte
	file string
}

func (v *scriptVendor) Initialise(serviceKey string) int { return feed.CodeOK }
func (v *scriptVendor) Open(spec, fromTime string, option int) (int, int, int, string) {
	return feed.CodeOK, len(v.steps), 0, ""
}
func (v *scriptVendor) RealTimeOpen(spec, key string) (int, int) {
	return feed.CodeOK, len(v.steps)
}
func (v *scriptVendor) Status() int { return feed.CodeOK }
func (v *scriptVendor) Read() (int, []byte, string) {
	if *v.pos >= len(v.steps) {
		return feed.CodeOK, nil, ""
	}
	st := v.steps[*v.pos]
	*v.pos++
	if st.code == 0 {
		st.code = len(st.data)
	}
	return st.code, st.data, st.file
}
func (v *scriptVendor) Skip()                        {}
func (v *scriptVendor) FileDelete(fileName string) int { return feed.CodeOK }
func (v *scriptVendor) Cancel()                      {}
func (v *scriptVendor) Close() int                   { return feed.CodeOK }

func scriptFactory(steps []scriptStep) session.Factory {
	pos := 0
	return func() (session.Vendor, error) {
		return &scriptVendor{steps: steps, pos: &pos}, nil
	}
}

// queueFactory hands out one script per created session.
func queueFactory(scripts ...[]scriptStep) session.Factory {
	idx := 0
	return func() (session.Vendor, error) {
		steps := []scriptStep{}
		if idx < len(scripts) {
			steps = scripts[idx]
		}
		idx++
		pos := 0
		return &scriptVendor{steps: steps, pos: &pos}, nil
	}
}

func raBuffer(t *testing.T, monthDay, raceNum string) []byte {
	t.Helper()
	l, ok := layout.Lookup(feed.Central, "RA")
	require.True(t, ok)
	buf := make([]byte, l.Length)
	for i := range buf {
		buf[i] = ' '
	}
	copy(buf, "RA")
	copy(buf[2:], "1")
	copy(buf[3:], "2024"+monthDay)
	copy(buf[11:], "2024")
	copy(buf[15:], monthDay)
	copy(buf[19:], "05")
	copy(buf[21:], "03")
	copy(buf[23:], "01")
	copy(buf[25:], raceNum)
	return buf
}

func seBuffer(t *testing.T, monthDay, raceNum, umaban string) []byte {
	t.Helper()
	l, ok := layout.Lookup(feed.Central, "SE")
	require.True(t, ok)
	buf := make([]byte, l.Length)
	for i := range buf {
		buf[i] = ' '
	}
	copy(buf, "SE")
	copy(buf[11:], "2024")
	copy(buf[15:], monthDay)
	copy(buf[19:], "05")
	copy(buf[21:], "03")
	copy(buf[23:], "01")
	copy(buf[25:], raceNum)
	copy(buf[28:], umaban)
	return buf
}

func testCfg() *config.Config {
	cfg := config.New()
	cfg.Database.Path = ":memory:"
	cfg.Session.RetryDelay = time.Millisecond
	cfg.Session.RateLimitDelay = time.Millisecond
	cfg.Session.StatusInterval = time.Millisecond
	cfg.Session.StallTimeout = 100 * time.Millisecond
	cfg.Monitor.Interval = time.Minute
	return cfg
}

func openTestDriver(t *testing.T) *sqlite.Driver {
	t.Helper()
	drv := sqlite.New(":memory:")
	require.NoError(t, drv.Connect(context.Background()))
	t.Cleanup(func() { drv.Close() })
	return drv
}

func tableCount(t *testing.T, drv *sqlite.Driver, table string) int {
	t.Helper()
	rows, err := drv.Query(context.Background(),
		fmt.Sprintf(`SELECT COUNT(*) AS n FROM %s`, drv.QuoteIdent(table)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	n, ok := rows[0]["n"].(int64)
	require.True(t, ok)
	return int(n)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, s)
	require.NoError(t, err)
	return d
}

func TestBackfillCleanPath(t *testing.T) {
	var steps []scriptStep
	for i := 1; i <= 3; i++ {
		steps = append(steps, scriptStep{data: raBuffer(t, "0601", fmt.Sprintf("%02d", i)), file: "F1.dat"})
	}
	for race := 1; race <= 3; race++ {
		for u := 1; u <= 16; u++ {
			steps = append(steps, scriptStep{
				data: seBuffer(t, "0601", fmt.Sprintf("%02d", race), fmt.Sprintf("%02d", u)),
				file: "F1.dat",
			})
		}
	}

	drv := openTestDriver(t)
	coord := New(testCfg(), feed.Central, drv, scriptFactory(steps))

	var events []stats.ProgressEvent
	coord.OnProgress(func(e stats.ProgressEvent) { events = append(events, e) })

	result, err := coord.RunBackfill(context.Background(), BackfillParams{
		Spec: feed.SpecRace,
		From: date(t, "20240601"),
		To:   date(t, "20240601"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(51), result.Stats.Imported)
	assert.Equal(t, int64(0), result.Stats.Failed)
	assert.Equal(t, int64(1), result.Stats.Batches)
	assert.False(t, result.CompletedWithErrors)

	assert.Equal(t, 3, tableCount(t, drv, "NL_RA"))
	assert.Equal(t, 48, tableCount(t, drv, "NL_SE"))
	assert.NotEmpty(t, events)

	// Progress is monotonically non-decreasing and imported never
	// exceeds parsed never exceeds fetched.
	var prev stats.Snapshot
	for _, e := range events {
		assert.GreaterOrEqual(t, e.Snapshot.Fetched, prev.Fetched)
		assert.GreaterOrEqual(t, e.Snapshot.Imported, prev.Imported)
		assert.LessOrEqual(t, e.Snapshot.Imported, e.Snapshot.Parsed)
		assert.LessOrEqual(t, e.Snapshot.Parsed, e.Snapshot.Fetched)
		prev = e.Snapshot
	}
}

func TestBackfillUpsertReplaces(t *testing.T) {
	var steps []scriptStep
	for pass := 0; pass < 2; pass++ {
		for i := 1; i <= 3; i++ {
			steps = append(steps, scriptStep{data: raBuffer(t, "0601", fmt.Sprintf("%02d", i)), file: "F1.dat"})
		}
	}

	drv := openTestDriver(t)
	coord := New(testCfg(), feed.Central, drv, scriptFactory(steps))

	result, err := coord.RunBackfill(context.Background(), BackfillParams{
		Spec: feed.SpecRace,
		From: date(t, "20240601"),
		To:   date(t, "20240601"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6), result.Stats.Imported)
	assert.Equal(t, 3, tableCount(t, drv, "NL_RA"))
}

func TestBackfillClientSideToDateFilter(t *testing.T) {
	steps := []scriptStep{
		{data: raBuffer(t, "0601", "01"), file: "F1.dat"},
		{data: raBuffer(t, "0602", "01"), file: "F1.dat"},
	}

	drv := openTestDriver(t)
	coord := New(testCfg(), feed.Central, drv, scriptFactory(steps))

	result, err := coord.RunBackfill(context.Background(), BackfillParams{
		Spec: feed.SpecRace,
		From: date(t, "20240601"),
		To:   date(t, "20240601"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Stats.Imported)
	assert.Equal(t, 1, tableCount(t, drv, "NL_RA"))
}

func TestBackfillParserFailuresDoNotAbort(t *testing.T) {
	bad := make([]byte, 64)
	copy(bad, "ZZ")
	steps := []scriptStep{
		{data: raBuffer(t, "0601", "01"), file: "F1.dat"},
		{data: bad, file: "F1.dat"},
		{data: raBuffer(t, "0601", "02"), file: "F1.dat"},
	}

	drv := openTestDriver(t)
	coord := New(testCfg(), feed.Central, drv, scriptFactory(steps))

	result, err := coord.RunBackfill(context.Background(), BackfillParams{
		Spec: feed.SpecRace,
		From: date(t, "20240601"),
		To:   date(t, "20240601"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.Stats.Imported)
	assert.Equal(t, int64(1), result.Stats.Failed)
	assert.True(t, result.CompletedWithErrors)
}

func TestBackfillChunksAndCheckpoint(t *testing.T) {
	steps := []scriptStep{
		{data: raBuffer(t, "0601", "01"), file: "F1.dat"},
	}

	drv := openTestDriver(t)
	cfg := testCfg()
	coord := New(cfg, feed.Central, drv, scriptFactory(steps))

	result, err := coord.RunBackfill(context.Background(), BackfillParams{
		Spec:      feed.SpecRace,
		From:      date(t, "20240601"),
		To:        date(t, "20240603"),
		ChunkDays: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Chunks)
	assert.Equal(t, "20240603", result.LastChunk)
	assert.Equal(t, "20240603", coord.LastCheckpoint(context.Background(), feed.SpecRace))
}

func TestRegionalDefaultsToDayChunks(t *testing.T) {
	cfg := testCfg()
	coord := &Coordinator{cfg: cfg, feed: feed.Regional}
	chunks := coord.splitRange(date(t, "20250101"), date(t, "20250105"), 0)
	assert.Len(t, chunks, 5)

	central := &Coordinator{cfg: cfg, feed: feed.Central}
	chunks = central.splitRange(date(t, "20250101"), date(t, "20250105"), 0)
	assert.Len(t, chunks, 1)

	chunks = central.splitRange(date(t, "20250101"), date(t, "20250105"), 2)
	assert.Len(t, chunks, 3)
}

func TestBackfillCancellationFlushes(t *testing.T) {
	var steps []scriptStep
	for i := 0; i < 5000; i++ {
		steps = append(steps, scriptStep{data: raBuffer(t, "0601", fmt.Sprintf("%02d", (i%12)+1)), file: "F1.dat"})
	}

	drv := openTestDriver(t)
	coord := New(testCfg(), feed.Central, drv, scriptFactory(steps))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := coord.RunBackfill(ctx, BackfillParams{
		Spec: feed.SpecRace,
		From: date(t, "20240601"),
		To:   date(t, "20240601"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// Whatever was read before the cancel was flushed, not dropped.
	snap := coord.Stats()
	if snap.Parsed > 0 {
		assert.Greater(t, snap.Imported, int64(0))
	}
}

func TestBackfillValidation(t *testing.T) {
	drv := openTestDriver(t)
	coord := New(testCfg(), feed.Central, drv, scriptFactory(nil))

	_, err := coord.RunBackfill(context.Background(), BackfillParams{From: date(t, "20240601")})
	assert.Error(t, err)

	_, err = coord.RunBackfill(context.Background(), BackfillParams{Spec: feed.SpecRace})
	assert.Error(t, err)

	_, err = coord.RunBackfill(context.Background(), BackfillParams{
		Spec: feed.SpecRace,
		From: date(t, "20240602"),
		To:   date(t, "20240601"),
	})
	assert.Error(t, err)
}
