// Package coordinator composes the session manager, the parsers, the
// router and the writer into the two public workflows: historical
// backfill over a date range and continuous live monitoring. It owns the
// run statistics, the progress stream, the child-worker supervision and
// the local HTTP control surface.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keibalab/racefeed/pkg/config"
	"github.com/keibalab/racefeed/pkg/driver"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/logger"
	"github.com/keibalab/racefeed/pkg/parser"
	"github.com/keibalab/racefeed/pkg/session"
	"github.com/keibalab/racefeed/pkg/stats"
	"github.com/keibalab/racefeed/pkg/writer"
)

const dateLayout = "20060102"

// Coordinator wires the ingestion pipeline for one feed.
type Coordinator struct {
	cfg      *config.Config
	feed     feed.Feed
	drv      driver.Driver
	factory  session.Factory
	counters *stats.Counters
	log      *zap.Logger

	progress func(stats.ProgressEvent)
	trigger  chan string
}

// New creates a coordinator over a connected driver and a vendor session
// factory.
func New(cfg *config.Config, f feed.Feed, drv driver.Driver, factory session.Factory) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		feed:     f,
		drv:      drv,
		factory:  factory,
		counters: stats.New(),
		log:      logger.Component("coordinator").With(zap.String("feed", f.String())),
		trigger:  make(chan string, 4),
	}
}

// OnProgress installs a progress callback; events are emitted after the
// flush that ends each chunk or monitor cycle, at chunk boundaries and at
// completion. Capacity-triggered flushes inside the writer emit no event.
func (c *Coordinator) OnProgress(fn func(stats.ProgressEvent)) {
	c.progress = fn
}

// Stats returns a consistent snapshot of the run counters.
func (c *Coordinator) Stats() stats.Snapshot {
	return c.counters.Snapshot()
}

func (c *Coordinator) emit(phase stats.Phase, chunk string) {
	snap := c.counters.Snapshot()
	observeSnapshot(c.feed, snap)
	if c.progress == nil {
		return
	}
	c.progress(stats.ProgressEvent{
		Phase:       phase,
		Snapshot:    snap,
		CurrentFile: snap.LastFile,
		Chunk:       chunk,
		At:          time.Now(),
	})
}

// BackfillParams describe one historical run.
type BackfillParams struct {
	Spec string
	From time.Time
	// To is inclusive; zero means today.
	To time.Time
	// BatchSize overrides the configured batch size when positive.
	BatchSize int
	// ChunkDays overrides the configured chunking; the regional feed
	// defaults to one-day chunks.
	ChunkDays int
	Option    feed.OpenOption
}

// RunResult is the outcome of a backfill run.
type RunResult struct {
	Stats               stats.Snapshot `json:"stats"`
	LastChunk           string         `json:"last_chunk"`
	Chunks              int            `json:"chunks"`
	CompletedWithErrors bool           `json:"completed_with_errors"`
}

// RunBackfill ingests the accumulated table family over a date range.
// The range splits into chunks; each chunk runs one session (or one child
// process when worker isolation is on). Cancellation is cooperative: the
// active batch is flushed, the session closed and progress persisted
// before returning.
func (c *Coordinator) RunBackfill(ctx context.Context, params BackfillParams) (RunResult, error) {
	result := RunResult{}

	if params.Spec == "" {
		return result, errors.New(errors.ErrorTypeConfig, "data spec is required")
	}
	if params.From.IsZero() {
		return result, errors.New(errors.ErrorTypeConfig, "from date is required")
	}
	if params.To.IsZero() {
		params.To = time.Now()
	}
	if params.To.Before(params.From) {
		return result, errors.Newf(errors.ErrorTypeConfig, "to date %s precedes from date %s",
			params.To.Format(dateLayout), params.From.Format(dateLayout))
	}
	if params.Option == 0 {
		// Setup is the only open option with deterministic behaviour on
		// both feeds for historical ranges.
		params.Option = feed.OptionSetup
	}

	if err := writer.EnsureTables(ctx, c.drv, c.feed); err != nil {
		return result, err
	}

	batchSize := c.cfg.Pipeline.BatchSize
	if params.BatchSize > 0 {
		batchSize = params.BatchSize
	}

	chunks := c.splitRange(params.From, params.To, params.ChunkDays)
	result.Chunks = len(chunks)
	c.log.Info("backfill starting",
		zap.String("spec", params.Spec),
		zap.String("from", params.From.Format(dateLayout)),
		zap.String("to", params.To.Format(dateLayout)),
		zap.Int("chunks", len(chunks)))

	for _, chunk := range chunks {
		label := chunk.from.Format(dateLayout)

		var err error
		if c.cfg.Pipeline.WorkerIsolation {
			err = c.runChunkChild(ctx, params, chunk)
		} else {
			err = c.runChunk(ctx, params, chunk, batchSize)
		}

		if err != nil {
			if ctx.Err() != nil {
				c.saveCheckpoint(params.Spec, result.LastChunk)
				return c.finish(result, false), ctx.Err()
			}
			c.saveCheckpoint(params.Spec, result.LastChunk)
			return c.finish(result, false), err
		}

		result.LastChunk = label
		c.saveCheckpoint(params.Spec, label)
		c.emit(stats.PhaseChunk, label)
	}

	return c.finish(result, true), nil
}

func (c *Coordinator) finish(result RunResult, completed bool) RunResult {
	result.Stats = c.counters.Snapshot()
	result.CompletedWithErrors = completed && result.Stats.Failed > 0
	c.emit(stats.PhaseDone, result.LastChunk)
	return result
}

type dateChunk struct {
	from, to time.Time
}

// splitRange divides [from, to] into chunkDays-sized pieces. The regional
// feed defaults to one day per chunk to bound a single session's memory.
func (c *Coordinator) splitRange(from, to time.Time, chunkDays int) []dateChunk {
	if chunkDays <= 0 {
		chunkDays = c.cfg.Pipeline.ChunkDays
	}
	if chunkDays <= 0 {
		if c.feed == feed.Regional {
			chunkDays = 1
		} else {
			return []dateChunk{{from: from, to: to}}
		}
	}

	var chunks []dateChunk
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, chunkDays) {
		end := cur.AddDate(0, 0, chunkDays-1)
		if end.After(to) {
			end = to
		}
		chunks = append(chunks, dateChunk{from: cur, to: end})
	}
	return chunks
}

// rawRecord is one buffer in flight between the session worker and the
// parser+writer worker.
type rawRecord struct {
	data []byte
	file string
}

// runChunk executes one chunk in-process: the session worker produces
// record buffers into a bounded channel and a single parser+writer worker
// drains it, preserving the vendor's delivery order.
func (c *Coordinator) runChunk(ctx context.Context, params BackfillParams, chunk dateChunk, batchSize int) error {
	w := writer.New(c.drv, config.PipelineConfig{BatchSize: batchSize}, c.cfg.Database, c.counters)
	mgr := session.NewManager(c.feed, c.cfg.Session, c.factory, c.counters)

	sessParams := session.Params{
		Spec:     params.Spec,
		FromTime: chunk.from.Format(dateLayout) + "000000",
		Option:   int(params.Option),
	}

	bufSize := c.cfg.Pipeline.BufferSize
	if bufSize <= 0 {
		bufSize = 4096
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make(chan rawRecord, bufSize)
	sessErr := make(chan error, 1)
	go func() {
		defer close(records)
		_, err := mgr.Run(runCtx, sessParams, func(data []byte, fileName string) error {
			// The vendor may reuse its buffer between reads.
			buf := append([]byte(nil), data...)
			select {
			case records <- rawRecord{data: buf, file: fileName}:
				return nil
			case <-runCtx.Done():
				return runCtx.Err()
			}
		})
		sessErr <- err
	}()

	toDate := chunk.to.Format(dateLayout)
	handle := c.makeEmit(runCtx, w, feed.Accumulated, toDate)

	var writeErr error
	for rec := range records {
		// After a write failure or a cancellation only drain, so the
		// session worker can exit; pending buffers flush below.
		if writeErr != nil || ctx.Err() != nil {
			continue
		}
		if err := handle(rec.data, rec.file); err != nil {
			writeErr = err
			cancel()
		}
	}

	err := <-sessErr
	if writeErr != nil {
		err = writeErr
	}

	// Flush whatever the session delivered, also on cancellation.
	flushCtx := ctx
	if flushCtx.Err() != nil {
		var cancel context.CancelFunc
		flushCtx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
	}
	if ferr := w.Flush(flushCtx); ferr != nil && err == nil {
		err = ferr
	}
	c.emit(stats.PhaseFlush, chunk.from.Format(dateLayout))
	return err
}

// makeEmit builds the session emit callback: parse, filter, write.
// Parser failures count as failed and never abort the run.
func (c *Coordinator) makeEmit(ctx context.Context, w *writer.Writer, path feed.Path, toDate string) session.EmitFunc {
	return func(data []byte, fileName string) error {
		records, err := parser.Parse(c.feed, path, data)
		if err != nil {
			c.counters.AddFailed(1)
			c.log.Warn("record rejected",
				zap.String("file", fileName), zap.Error(err))
			return nil
		}
		c.counters.AddParsed(int64(len(records)))
		for _, rec := range records {
			if toDate != "" && afterDate(rec, toDate) {
				continue
			}
			rec.SetSourceFile(fileName)
			if err := w.Write(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	}
}

// afterDate filters records dated past the requested to-date; the vendor
// honours from_time but not reliably to_time.
func afterDate(rec *parser.Record, toDate string) bool {
	year, _ := rec.Fields["Year"].(string)
	monthDay, _ := rec.Fields["MonthDay"].(string)
	if year == "" || monthDay == "" {
		return false
	}
	return year+monthDay > toDate
}

// Checkpoints live in a small state table so an interrupted backfill can
// resume from the last completed chunk.

const stateTable = "INGEST_STATE"

func (c *Coordinator) ensureStateTable(ctx context.Context) error {
	q := c.drv.QuoteIdent
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY, %s TEXT)",
		q(stateTable), q("StateKey"), q("StateValue"))
	_, err := c.drv.Exec(ctx, ddl)
	return err
}

func (c *Coordinator) checkpointKey(spec string) string {
	return fmt.Sprintf("backfill:%s:%s:last_chunk", c.feed, spec)
}

func (c *Coordinator) saveCheckpoint(spec, lastChunk string) {
	if lastChunk == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.ensureStateTable(ctx); err != nil {
		c.log.Warn("failed to ensure state table", zap.Error(err))
		return
	}
	sqlText := c.drv.UpsertTemplate(stateTable, []string{"StateKey", "StateValue"}, []string{"StateKey"})
	if _, err := c.drv.Exec(ctx, sqlText, c.checkpointKey(spec), lastChunk); err != nil {
		c.log.Warn("failed to persist checkpoint", zap.Error(err))
	}
}

// LastCheckpoint returns the last completed chunk of a prior backfill for
// the spec, or the empty string.
func (c *Coordinator) LastCheckpoint(ctx context.Context, spec string) string {
	if err := c.ensureStateTable(ctx); err != nil {
		return ""
	}
	q := c.drv.QuoteIdent
	rows, err := c.drv.Query(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
			q("StateValue"), q(stateTable), q("StateKey"), placeholder(c.drv, 1)),
		c.checkpointKey(spec))
	if err != nil || len(rows) == 0 {
		return ""
	}
	v, _ := rows[0]["StateValue"].(string)
	return v
}

// placeholder renders the driver's bind placeholder for position n by
// probing the upsert template rather than branching on identity.
func placeholder(d driver.Driver, n int) string {
	tmpl := d.UpsertTemplate("t", []string{"a", "b"}, []string{"a"})
	if strings.Contains(tmpl, "$1") {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
