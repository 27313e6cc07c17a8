// Package stats holds the run-scoped ingestion counters and the progress
// events emitted on batch flushes and chunk boundaries. Counters are
// mutated by the session worker (fetched/parsed/retries) and the writer
// (imported/failed/batches); readers always get a consistent snapshot.
package stats

import (
	"sync"
	"time"
)

// Phase names the pipeline stage a progress event reports on.
type Phase string

const (
	PhaseOpen     Phase = "open"
	PhaseDownload Phase = "download"
	PhaseRead     Phase = "read"
	PhaseFlush    Phase = "flush"
	PhaseChunk    Phase = "chunk"
	PhaseDone     Phase = "done"
)

// Snapshot is a consistent copy of the run counters.
type Snapshot struct {
	Fetched  int64  `json:"fetched"`
	Parsed   int64  `json:"parsed"`
	Imported int64  `json:"imported"`
	Failed   int64  `json:"failed"`
	Batches  int64  `json:"batches"`
	Retries  int64  `json:"retries"`
	LastFile string `json:"last_file"`
}

// ProgressEvent is one progress report.
type ProgressEvent struct {
	Phase       Phase     `json:"phase"`
	Snapshot    Snapshot  `json:"stats"`
	CurrentFile string    `json:"current_file,omitempty"`
	Chunk       string    `json:"chunk,omitempty"`
	At          time.Time `json:"at"`
}

// Counters is the shared run-scoped counter set.
type Counters struct {
	mu sync.Mutex
	s  Snapshot
}

// New returns zeroed counters.
func New() *Counters { return &Counters{} }

// AddFetched increments the fetched count and records the current file.
func (c *Counters) AddFetched(n int64, file string) {
	c.mu.Lock()
	c.s.Fetched += n
	if file != "" {
		c.s.LastFile = file
	}
	c.mu.Unlock()
}

// AddParsed increments the parsed count.
func (c *Counters) AddParsed(n int64) {
	c.mu.Lock()
	c.s.Parsed += n
	c.mu.Unlock()
}

// AddImported increments the imported count.
func (c *Counters) AddImported(n int64) {
	c.mu.Lock()
	c.s.Imported += n
	c.mu.Unlock()
}

// AddFailed increments the failed count.
func (c *Counters) AddFailed(n int64) {
	c.mu.Lock()
	c.s.Failed += n
	c.mu.Unlock()
}

// AddBatches increments the flushed-batch count.
func (c *Counters) AddBatches(n int64) {
	c.mu.Lock()
	c.s.Batches += n
	c.mu.Unlock()
}

// AddRetries increments the session retry count.
func (c *Counters) AddRetries(n int64) {
	c.mu.Lock()
	c.s.Retries += n
	c.mu.Unlock()
}

// Snapshot returns a copy of the counters.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

// Merge folds another snapshot into the counters; used when a child
// worker reports its final result.
func (c *Counters) Merge(s Snapshot) {
	c.mu.Lock()
	c.s.Fetched += s.Fetched
	c.s.Parsed += s.Parsed
	c.s.Imported += s.Imported
	c.s.Failed += s.Failed
	c.s.Batches += s.Batches
	c.s.Retries += s.Retries
	if s.LastFile != "" {
		c.s.LastFile = s.LastFile
	}
	c.mu.Unlock()
}
