// Package writer persists parsed records into their destination tables
// with upsert semantics. Records accumulate per table into batch buffers;
// a full buffer flushes as one transaction. A failed batch rolls back and
// falls back to row-at-a-time inserts so a single bad row cannot sink its
// neighbours. Lost connections reconnect with exponential backoff.
package writer

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/keibalab/racefeed/pkg/config"
	"github.com/keibalab/racefeed/pkg/driver"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/logger"
	"github.com/keibalab/racefeed/pkg/parser"
	"github.com/keibalab/racefeed/pkg/retry"
	"github.com/keibalab/racefeed/pkg/schema"
	"github.com/keibalab/racefeed/pkg/stats"
)

// Writer batches records per destination table and upserts them through
// the driver. It is not safe for concurrent use; the pipeline has exactly
// one writer.
type Writer struct {
	drv       driver.Driver
	batchSize int
	counters  *stats.Counters
	log       *zap.Logger

	reconnect *retry.Policy

	// buffers holds pending rows per table, in arrival order.
	buffers map[string][]*parser.Record
	order   []string
}

// New creates a writer over a connected driver.
func New(drv driver.Driver, cfg config.PipelineConfig, dbCfg config.DatabaseConfig, counters *stats.Counters) *Writer {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 1000
	}
	attempts := dbCfg.ReconnectAttempts
	if attempts <= 0 {
		attempts = 5
	}
	delay := dbCfg.ReconnectDelay
	if delay <= 0 {
		delay = time.Second
	}
	if counters == nil {
		counters = stats.New()
	}
	return &Writer{
		drv:       drv,
		batchSize: batch,
		counters:  counters,
		log:       logger.Component("writer"),
		reconnect: retry.NewPolicy(attempts, delay),
		buffers:   make(map[string][]*parser.Record),
	}
}

// Write enqueues one record, flushing its table's buffer when full. A
// record missing any primary-key column of its destination is rejected
// and counted failed.
func (w *Writer) Write(ctx context.Context, rec *parser.Record) error {
	def, ok := schema.Lookup(rec.Table)
	if !ok {
		w.counters.AddFailed(1)
		w.log.Warn("no schema for destination table", zap.String("table", rec.Table))
		return nil
	}
	if missing := missingKeys(def, rec); len(missing) > 0 {
		w.counters.AddFailed(1)
		w.log.Warn("record missing primary key columns",
			zap.String("table", rec.Table),
			zap.Strings("missing", missing))
		return nil
	}

	if _, exists := w.buffers[rec.Table]; !exists {
		w.order = append(w.order, rec.Table)
	}
	w.buffers[rec.Table] = append(w.buffers[rec.Table], rec)

	if len(w.buffers[rec.Table]) >= w.batchSize {
		if err := w.flushTable(ctx, rec.Table, def); err != nil {
			return err
		}
		w.counters.AddBatches(1)
	}
	return nil
}

// Flush drains every pending buffer as one logical batch. Transactions
// never cross destination tables; within one table rows keep arrival
// order.
func (w *Writer) Flush(ctx context.Context) error {
	flushed := false
	for _, table := range append([]string(nil), w.order...) {
		if len(w.buffers[table]) == 0 {
			continue
		}
		def, ok := schema.Lookup(table)
		if !ok {
			continue
		}
		if err := w.flushTable(ctx, table, def); err != nil {
			return err
		}
		flushed = true
	}
	if flushed {
		w.counters.AddBatches(1)
	}
	return nil
}

// Pending returns the number of buffered, unflushed rows.
func (w *Writer) Pending() int {
	n := 0
	for _, b := range w.buffers {
		n += len(b)
	}
	return n
}

func (w *Writer) flushTable(ctx context.Context, table string, def *schema.TableDef) error {
	batch := w.buffers[table]
	w.buffers[table] = nil
	if len(batch) == 0 {
		return nil
	}

	columns := def.ColumnNames()
	sqlText := w.drv.UpsertTemplate(table, columns, def.Key)

	rows := make([][]interface{}, 0, len(batch))
	kept := make([]*parser.Record, 0, len(batch))
	for _, rec := range batch {
		args, err := bindArgs(def, columns, rec)
		if err != nil {
			w.counters.AddFailed(1)
			w.log.Warn("record does not fit table schema",
				zap.String("table", table), zap.Error(err))
			continue
		}
		rows = append(rows, args)
		kept = append(kept, rec)
	}
	if len(rows) == 0 {
		return nil
	}

	err := w.flushBatch(ctx, sqlText, rows)
	if err == nil {
		w.counters.AddImported(int64(len(rows)))
		w.log.Debug("batch flushed",
			zap.String("table", table), zap.Int("rows", len(rows)))
		return nil
	}

	if errors.IsType(err, errors.ErrorTypeConnection) {
		if rerr := w.recoverConnection(ctx); rerr != nil {
			return rerr
		}
	}

	// Batch failed and rolled back; retry rows one at a time so only the
	// offending rows are lost.
	w.log.Warn("batch insert failed, retrying rows individually",
		zap.String("table", table), zap.Error(err))
	succeeded := int64(0)
	for i, args := range rows {
		if _, rerr := w.drv.Exec(ctx, sqlText, args...); rerr != nil {
			w.counters.AddFailed(1)
			w.log.Error("row insert failed",
				zap.String("table", table),
				zap.String("key", keyString(def, kept[i])),
				zap.Error(rerr))
			continue
		}
		succeeded++
	}
	w.counters.AddImported(succeeded)
	return nil
}

// flushBatch commits the whole batch or rolls it back.
func (w *Writer) flushBatch(ctx context.Context, sqlText string, rows [][]interface{}) error {
	tx, err := w.drv.Begin(ctx)
	if err != nil {
		return err
	}
	if err := tx.BulkExec(ctx, sqlText, rows); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			w.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit(ctx)
}

// recoverConnection re-opens the driver connection with backoff.
func (w *Writer) recoverConnection(ctx context.Context) error {
	err := w.reconnect.ExecuteWithCondition(ctx, func() error {
		_ = w.drv.Close()
		if err := w.drv.Connect(ctx); err != nil {
			return err
		}
		return w.drv.Ping(ctx)
	}, errors.IsRetryable)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "database connection could not be restored")
	}
	w.log.Info("database connection restored")
	return nil
}

// bindArgs orders the record's values by the schema's declared column
// order so one statement template serves every row of the table.
func bindArgs(def *schema.TableDef, columns []string, rec *parser.Record) ([]interface{}, error) {
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		v, ok := rec.Fields[c]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeData, "missing column %q", c)
		}
		args[i] = v
	}
	return args, nil
}

func missingKeys(def *schema.TableDef, rec *parser.Record) []string {
	var missing []string
	for _, k := range def.Key {
		v, ok := rec.Fields[k]
		if !ok || v == nil {
			missing = append(missing, k)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}

func keyString(def *schema.TableDef, rec *parser.Record) string {
	parts := make([]string, 0, len(def.Key))
	for _, k := range def.Key {
		if v, ok := rec.Fields[k]; ok {
			if s, isStr := v.(string); isStr {
				parts = append(parts, k+"="+s)
				continue
			}
		}
		parts = append(parts, k)
	}
	return strings.Join(parts, " ")
}
