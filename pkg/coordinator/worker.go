package coordinator

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/keibalab/racefeed/pkg/config"
	"github.com/keibalab/racefeed/pkg/driver"
	"github.com/keibalab/racefeed/pkg/driver/postgres"
	"github.com/keibalab/racefeed/pkg/driver/sqlite"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/session"
	"github.com/keibalab/racefeed/pkg/stats"
	"github.com/keibalab/racefeed/pkg/writer"
)

// The vendor session object can leak resources over long runs, so a
// backfill chunk can be hosted in a short-lived child process. The parent
// hands the chunk to the child as one JSON request on stdin; the child's
// only return channel is a single JSON result line on stdout at
// termination.

// WorkerRequest is the chunk handed to a child process.
type WorkerRequest struct {
	Feed      feed.Feed `json:"feed"`
	Spec      string    `json:"spec"`
	FromTime  string    `json:"from_time"`
	ToDate    string    `json:"to_date"`
	Option    int       `json:"option"`
	BatchSize int       `json:"batch_size"`
	SkipFiles []string  `json:"skip_files"`
}

// WorkerResult is the single JSON line a child prints at termination.
type WorkerResult struct {
	RecordsFetched int            `json:"records_fetched"`
	Completed      bool           `json:"completed"`
	SkipFiles      []string       `json:"skip_files"`
	Stats          stats.Snapshot `json:"stats"`
	Error          string         `json:"error,omitempty"`
}

// RunWorker is the child-process entry point: it reads one WorkerRequest
// from in, runs the chunk and writes exactly one WorkerResult line to
// out.
func RunWorker(ctx context.Context, cfg *config.Config, factory session.Factory, in io.Reader, out io.Writer) error {
	var req WorkerRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return writeResult(out, WorkerResult{Error: "bad request: " + err.Error()})
	}

	result := runWorkerChunk(ctx, cfg, factory, req)
	return writeResult(out, result)
}

func runWorkerChunk(ctx context.Context, cfg *config.Config, factory session.Factory, req WorkerRequest) WorkerResult {
	counters := stats.New()

	drv, err := openDriver(cfg.Database)
	if err != nil {
		return WorkerResult{Error: err.Error()}
	}
	if err := drv.Connect(ctx); err != nil {
		return WorkerResult{Error: err.Error()}
	}
	defer drv.Close()

	if err := writer.EnsureTables(ctx, drv, req.Feed); err != nil {
		return WorkerResult{Error: err.Error()}
	}

	batch := req.BatchSize
	if batch <= 0 {
		batch = cfg.Pipeline.BatchSize
	}
	w := writer.New(drv, config.PipelineConfig{BatchSize: batch}, cfg.Database, counters)
	mgr := session.NewManager(req.Feed, cfg.Session, factory, counters)

	skip := make(map[string]bool, len(req.SkipFiles))
	for _, f := range req.SkipFiles {
		skip[f] = true
	}

	c := &Coordinator{cfg: cfg, feed: req.Feed, drv: drv, factory: factory, counters: counters,
		log: zap.NewNop(), trigger: make(chan string, 1)}

	sessResult, runErr := mgr.Run(ctx, session.Params{
		Spec:      req.Spec,
		FromTime:  req.FromTime,
		Option:    req.Option,
		SkipFiles: skip,
	}, c.makeEmit(ctx, w, feed.Accumulated, req.ToDate))

	if err := w.Flush(ctx); err != nil && runErr == nil {
		runErr = err
	}

	out := WorkerResult{
		RecordsFetched: sessResult.RecordsFetched,
		Completed:      sessResult.Completed,
		SkipFiles:      keys(sessResult.SkipFiles),
		Stats:          counters.Snapshot(),
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	return out
}

func writeResult(out io.Writer, result WorkerResult) error {
	enc := json.NewEncoder(out)
	return enc.Encode(result)
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func openDriver(cfg config.DatabaseConfig) (driver.Driver, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.New(cfg.DSN), nil
	case "sqlite":
		return sqlite.New(cfg.Path), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown database driver %q", cfg.Driver)
	}
}

// runChunkChild supervises one chunk in a child process: spawn, hand over
// the request, collect the final result line, merge counters and carry
// the skip-files set forward. A child that dies or exceeds the timeout is
// retried as a failed-retryable chunk.
func (c *Coordinator) runChunkChild(ctx context.Context, params BackfillParams, chunk dateChunk) error {
	timeout := c.cfg.Pipeline.WorkerTimeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}

	skip := []string{}
	attempts := c.cfg.Session.RetryAttempts
	if attempts < 0 {
		attempts = 0
	}

	var lastErr error
	for attempt := 0; attempt <= attempts; attempt++ {
		if attempt > 0 {
			c.counters.AddRetries(1)
		}
		result, err := c.spawnWorker(ctx, WorkerRequest{
			Feed:      c.feed,
			Spec:      params.Spec,
			FromTime:  chunk.from.Format(dateLayout) + "000000",
			ToDate:    chunk.to.Format(dateLayout),
			Option:    int(params.Option),
			BatchSize: params.BatchSize,
			SkipFiles: skip,
		}, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			c.log.Warn("chunk worker failed",
				zap.String("chunk", chunk.from.Format(dateLayout)),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		c.counters.Merge(result.Stats)
		if result.Completed {
			return nil
		}
		skip = result.SkipFiles
		if result.Error != "" {
			lastErr = errors.New(errors.ErrorTypeVendor, result.Error)
		}
	}

	return errors.Wrap(lastErr, errors.ErrorTypeVendor, "chunk worker retry budget exhausted")
}

// spawnWorker execs this binary in worker mode and reads the single JSON
// result line from its stdout.
func (c *Coordinator) spawnWorker(ctx context.Context, req WorkerRequest, timeout time.Duration) (WorkerResult, error) {
	var result WorkerResult

	exe, err := os.Executable()
	if err != nil {
		return result, errors.Wrap(err, errors.ErrorTypeInternal, "cannot locate executable")
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, exe, "worker")
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return result, errors.Wrap(err, errors.ErrorTypeInternal, "worker stdin unavailable")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return result, errors.Wrap(err, errors.ErrorTypeInternal, "worker stdout unavailable")
	}

	if err := cmd.Start(); err != nil {
		return result, errors.Wrap(err, errors.ErrorTypeInternal, "failed to start worker")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return result, errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode worker request")
	}
	if _, err := stdin.Write(append(payload, '\n')); err != nil {
		return result, errors.Wrap(err, errors.ErrorTypeInternal, "failed to hand request to worker")
	}
	stdin.Close()

	// The contract is a single JSON line; the last line wins in case the
	// child logged to stdout by mistake.
	var lastLine []byte
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 && line[0] == '{' {
			lastLine = append(lastLine[:0], line...)
		}
	}

	if err := cmd.Wait(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return result, errors.New(errors.ErrorTypeTimeout, "chunk worker timed out").
				WithDetail("timeout", timeout.String())
		}
		return result, errors.Wrap(err, errors.ErrorTypeVendor, "chunk worker died")
	}

	if len(lastLine) == 0 {
		return result, errors.New(errors.ErrorTypeVendor, "chunk worker produced no result")
	}
	if err := json.Unmarshal(lastLine, &result); err != nil {
		return result, errors.Wrap(err, errors.ErrorTypeVendor, "chunk worker result unreadable")
	}
	return result, nil
}
