package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/keibalab/racefeed/pkg/config"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/logger"
	"github.com/keibalab/racefeed/pkg/retry"
	"github.com/keibalab/racefeed/pkg/stats"
)

// EmitFunc receives each record buffer in the vendor's delivery order.
// Returning an error aborts the run.
type EmitFunc func(data []byte, fileName string) error

// Manager drives vendor sessions with the configured retry, timeout and
// recovery policy. It is single-threaded; the vendor object is not safe
// for concurrent calls.
type Manager struct {
	feed     feed.Feed
	cfg      config.SessionConfig
	factory  Factory
	counters *stats.Counters
	log      *zap.Logger

	state       State
	transitions []State
}

// NewManager creates a session manager for one feed.
func NewManager(f feed.Feed, cfg config.SessionConfig, factory Factory, counters *stats.Counters) *Manager {
	if counters == nil {
		counters = stats.New()
	}
	return &Manager{
		feed:     f,
		cfg:      cfg,
		factory:  factory,
		counters: counters,
		log:      logger.Component("session").With(zap.String("feed", f.String())),
		state:    StateUninitialised,
	}
}

// State returns the current state machine position.
func (m *Manager) State() State { return m.state }

// Transitions returns every state entered so far, in order.
func (m *Manager) Transitions() []State {
	return append([]State(nil), m.transitions...)
}

func (m *Manager) setState(s State) {
	m.state = s
	m.transitions = append(m.transitions, s)
}

// Run executes one logical session: initialise, open, wait for the
// download, read every record, close. Recoverable transport failures
// close the session and reopen it with the delivered-file set preserved,
// up to the configured retry budget.
func (m *Manager) Run(ctx context.Context, params Params, emit EmitFunc) (Result, error) {
	result := Result{SkipFiles: make(map[string]bool, len(params.SkipFiles))}
	for f := range params.SkipFiles {
		result.SkipFiles[f] = true
	}

	option := m.remapOption(params.Option)

	var lastErr error
	for attempt := 0; attempt <= m.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			result.Retries++
			m.counters.AddRetries(1)
			if err := retry.Sleep(ctx, m.cfg.RetryDelay); err != nil {
				return result, err
			}
			m.log.Info("reopening session",
				zap.Int("attempt", attempt),
				zap.Int("skip_files", len(result.SkipFiles)))
		}

		// Each attempt skips everything delivered before it started; the
		// file currently in flight keeps streaming within its own attempt.
		attemptSkip := make(map[string]bool, len(result.SkipFiles))
		for f := range result.SkipFiles {
			attemptSkip[f] = true
		}

		done, err := m.runOnce(ctx, params, option, attemptSkip, &result, emit)
		if err == nil && done {
			result.Completed = true
			return result, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return result, err
			}
			if !errors.IsRetryable(err) {
				return result, err
			}
			lastErr = err
			continue
		}
		// done == false without error means cancellation.
		return result, ctx.Err()
	}

	m.setState(StateFailed)
	return result, errors.Wrap(lastErr, errors.ErrorTypeVendor, "session retry budget exhausted")
}

// runOnce runs a single session attempt. It returns (true, nil) on
// completion, or a retryable/fatal error.
func (m *Manager) runOnce(ctx context.Context, params Params, option int, skip map[string]bool, result *Result, emit EmitFunc) (bool, error) {
	v, err := m.factory()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrorTypeVendor, "failed to create vendor session")
	}
	defer func() {
		v.Close()
		if m.state != StateFailed && m.state != StateFailedRetryable {
			m.setState(StateClosed)
		}
	}()

	if err := m.initialise(v); err != nil {
		m.setState(StateFailed)
		return false, err
	}

	downloadCount, err := m.open(ctx, v, params, option)
	if err != nil {
		return false, err
	}

	if downloadCount > 0 {
		m.setState(StateDownloading)
		if err := m.waitForDownload(ctx, v); err != nil {
			return false, err
		}
	}

	m.setState(StateReading)
	return m.readLoop(ctx, v, skip, result, emit)
}

func (m *Manager) initialise(v Vendor) error {
	key := m.cfg.ServiceKey
	if m.feed == feed.Regional {
		key = feed.RegionalInitKey
	}
	code := v.Initialise(key)
	if code != feed.CodeOK {
		return m.vendorError(code, "vendor initialise failed")
	}
	m.setState(StateInitialised)
	return nil
}

// open wraps the blocking vendor open call in the configured timeout; on
// timeout the vendor is asked to cancel and the attempt is retryable.
func (m *Manager) open(ctx context.Context, v Vendor, params Params, option int) (int, error) {
	m.setState(StateOpening)

	type openResult struct {
		code, readCount, downloadCount int
	}
	ch := make(chan openResult, 1)
	go func() {
		if params.RealTime {
			code, readCount := v.RealTimeOpen(params.Spec, params.RTKey)
			ch <- openResult{code: code, readCount: readCount}
			return
		}
		code, readCount, downloadCount, _ := v.Open(params.Spec, params.FromTime, option)
		ch <- openResult{code: code, readCount: readCount, downloadCount: downloadCount}
	}()

	timeout := m.cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		v.Cancel()
		return 0, ctx.Err()
	case <-timer.C:
		v.Cancel()
		m.setState(StateFailedRetryable)
		return 0, errors.New(errors.ErrorTypeTimeout, "vendor open timed out").
			WithDetail("timeout", timeout.String())
	case r := <-ch:
		if r.code < feed.CodeOK && feed.Classify(r.code) != feed.ClassContinue {
			return 0, m.classifiedError(r.code, "vendor open failed")
		}
		m.log.Info("session opened",
			zap.String("spec", params.Spec),
			zap.Int("read_count", r.readCount),
			zap.Int("download_count", r.downloadCount))
		return r.downloadCount, nil
	}
}

// waitForDownload polls status at the configured cadence, yielding to the
// vendor's message pump between polls, until the vendor reports
// completion. A stalled download is retryable.
func (m *Manager) waitForDownload(ctx context.Context, v Vendor) error {
	interval := m.cfg.StatusInterval
	if interval <= 0 {
		interval = 80 * time.Millisecond
	}
	stall := m.cfg.StallTimeout
	if stall <= 0 {
		stall = 60 * time.Second
	}

	lastProgress := -1
	lastChange := time.Now()

	for {
		if err := retry.Sleep(ctx, interval); err != nil {
			return err
		}

		code := v.Status()
		switch {
		case code == feed.CodeOK:
			return nil
		case code > 0:
			if code != lastProgress {
				lastProgress = code
				lastChange = time.Now()
			} else if time.Since(lastChange) > stall {
				m.setState(StateFailedRetryable)
				return errors.New(errors.ErrorTypeTimeout, "download stalled").
					WithDetail("stall_timeout", stall.String())
			}
		default:
			switch feed.Classify(code) {
			case feed.ClassBackoff:
				if err := retry.Sleep(ctx, m.cfg.RateLimitDelay); err != nil {
					return err
				}
			case feed.ClassRetrySession:
				m.setState(StateFailedRetryable)
				return m.classifiedError(code, "download failed")
			default:
				m.setState(StateFailed)
				return m.vendorError(code, "download failed")
			}
		}
	}
}

// readLoop pulls records synchronously until end-of-stream. Files listed
// in the skip set are consumed without re-emitting their records.
func (m *Manager) readLoop(ctx context.Context, v Vendor, skip map[string]bool, result *Result, emit EmitFunc) (bool, error) {
	budget := m.cfg.ReadBudget
	if budget <= 0 {
		budget = 100000
	}

	for i := 0; i < budget; i++ {
		if ctx.Err() != nil {
			m.log.Info("cancellation requested, closing session")
			return false, nil
		}

		code, data, fileName := v.Read()

		switch {
		case code > 0:
			m.counters.AddFetched(1, fileName)
			result.RecordsFetched++
			if skip[fileName] {
				v.Skip()
				continue
			}
			if fileName != "" {
				result.SkipFiles[fileName] = true
			}
			if err := emit(data, fileName); err != nil {
				m.setState(StateFailed)
				return false, err
			}

		case code == feed.CodeOK:
			return true, nil

		default:
			switch feed.Classify(code) {
			case feed.ClassContinue:
				continue

			case feed.ClassRecoverFile:
				m.log.Warn("corrupted file, deleting and continuing",
					zap.Int("code", code), zap.String("file", fileName))
				v.FileDelete(fileName)
				m.counters.AddFailed(1)
				continue

			case feed.ClassBackoff:
				if err := retry.Sleep(ctx, m.cfg.RateLimitDelay); err != nil {
					return false, err
				}
				continue

			case feed.ClassRetrySession:
				m.setState(StateFailedRetryable)
				return false, m.classifiedError(code, "read failed, session will be retried")

			default:
				m.setState(StateFailed)
				return false, m.vendorError(code, "read failed")
			}
		}
	}

	// Budget exhausted: close and retry rather than spin forever.
	m.setState(StateFailedRetryable)
	return false, errors.New(errors.ErrorTypeVendor, "read budget exhausted").
		WithDetail("budget", budget)
}

// classifiedError builds a retryable vendor error.
func (m *Manager) classifiedError(code int, msg string) error {
	return errors.New(errors.ErrorTypeVendor, msg+": "+feed.CodeMessage(code)).
		WithCode(code).
		WithRemedy(feed.CodeRemedy(m.feed, code))
}

// vendorError builds a fatal error; auth codes surface their remedy.
func (m *Manager) vendorError(code int, msg string) error {
	typ := errors.ErrorTypeInternal
	switch feed.Classify(code) {
	case feed.ClassFatalAuth:
		typ = errors.ErrorTypeAuthentication
	default:
		typ = errors.ErrorTypeData
	}
	return errors.New(typ, msg+": "+feed.CodeMessage(code)).
		WithCode(code).
		WithRemedy(feed.CodeRemedy(m.feed, code))
}

// remapOption applies the regional feed's open-option remap when the
// policy flag is set: normal and this-week map to the setup variants.
func (m *Manager) remapOption(option int) int {
	if m.feed != feed.Regional || !m.cfg.RemapSetupOptions {
		return option
	}
	switch feed.OpenOption(option) {
	case feed.OptionNormal:
		return int(feed.OptionSetup)
	case feed.OptionThisWeek:
		return int(feed.OptionSplitSetup)
	default:
		return option
	}
}
