package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keibalab/racefeed/pkg/config"
	"github.com/keibalab/racefeed/pkg/errors"
	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/stats"
)

// step is one scripted Read outcome.
type step struct {
	code int
	data []byte
	file string
}

// stubVendor replays a scripted sequence of read results. Scripts are
// shared across factory invocations so a retried session resumes the
// script where the previous session stopped (the vendor caches already
// downloaded files).
type stubScript struct {
	steps []step
	pos   int

	initCode     int
	openCode     int
	downloads    int
	opens        int
	inits        int
	closes       int
	cancels      int
	statusSeq    []int
	statusPos    int
	fileDeletes  []string
	rtOpens      int
	downloadSeqs []int // download_count announced per open
}

type stubVendor struct {
	s *stubScript
}

func (v *stubVendor) Initialise(serviceKey string) int {
	v.s.inits++
	return v.s.initCode
}

func (v *stubVendor) Open(spec, fromTime string, option int) (int, int, int, string) {
	v.s.opens++
	dl := 0
	if len(v.s.downloadSeqs) > 0 {
		dl = v.s.downloadSeqs[0]
		v.s.downloadSeqs = v.s.downloadSeqs[1:]
	}
	return v.s.openCode, len(v.s.steps), dl, ""
}

func (v *stubVendor) RealTimeOpen(spec, key string) (int, int) {
	v.s.rtOpens++
	return v.s.openCode, len(v.s.steps)
}

func (v *stubVendor) Status() int {
	if v.s.statusPos < len(v.s.statusSeq) {
		code := v.s.statusSeq[v.s.statusPos]
		v.s.statusPos++
		return code
	}
	return feed.CodeOK
}

func (v *stubVendor) Read() (int, []byte, string) {
	if v.s.pos >= len(v.s.steps) {
		return feed.CodeOK, nil, ""
	}
	st := v.s.steps[v.s.pos]
	v.s.pos++
	if st.code > 0 && st.code != len(st.data) {
		st.code = len(st.data)
	}
	return st.code, st.data, st.file
}

func (v *stubVendor) Skip() {}

func (v *stubVendor) FileDelete(fileName string) int {
	v.s.fileDeletes = append(v.s.fileDeletes, fileName)
	return feed.CodeOK
}

func (v *stubVendor) Cancel()    { v.s.cancels++ }
func (v *stubVendor) Close() int { v.s.closes++; return feed.CodeOK }

func (s *stubScript) factory() Factory {
	return func() (Vendor, error) { return &stubVendor{s: s}, nil }
}

func record(file string, payload string) step {
	return step{code: len(payload), data: []byte(payload), file: file}
}

func testConfig() config.SessionConfig {
	return config.SessionConfig{
		ServiceKey:     "TESTKEY",
		OpenTimeout:    time.Second,
		StatusInterval: time.Millisecond,
		StallTimeout:   50 * time.Millisecond,
		RetryAttempts:  3,
		RetryDelay:     time.Millisecond,
		RateLimitDelay: time.Millisecond,
		ReadBudget:     100000,
	}
}

func collectEmit(records *[]string) EmitFunc {
	return func(data []byte, fileName string) error {
		*records = append(*records, string(data))
		return nil
	}
}

func TestCleanPath(t *testing.T) {
	script := &stubScript{
		steps: []step{
			record("F1.dat", "RA-one"),
			record("F1.dat", "SE-one"),
			{code: feed.CodeFileSwitch},
			record("F2.dat", "SE-two"),
		},
	}
	counters := stats.New()
	m := NewManager(feed.Central, testConfig(), script.factory(), counters)

	var got []string
	result, err := m.Run(context.Background(), Params{Spec: "RACE", FromTime: "20240601000000", Option: 3}, collectEmit(&got))
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.Equal(t, 3, result.RecordsFetched)
	assert.Equal(t, []string{"RA-one", "SE-one", "SE-two"}, got)
	assert.Equal(t, int64(3), counters.Snapshot().Fetched)
	assert.Equal(t, 1, script.closes)
	assert.Equal(t, State(StateClosed), m.State())

	wantOrder := []State{StateInitialised, StateOpening, StateReading, StateClosed}
	assertSubsequence(t, m.Transitions(), wantOrder)
}

func TestDownloadWait(t *testing.T) {
	script := &stubScript{
		steps:        []step{record("F1.dat", "RA-one")},
		downloadSeqs: []int{3},
		statusSeq:    []int{3, 2, 1, 0},
	}
	m := NewManager(feed.Central, testConfig(), script.factory(), nil)

	var got []string
	result, err := m.Run(context.Background(), Params{Spec: "RACE", Option: 3}, collectEmit(&got))
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assertSubsequence(t, m.Transitions(),
		[]State{StateOpening, StateDownloading, StateReading, StateClosed})
}

func TestServerErrorRecoveryWithSkipFiles(t *testing.T) {
	// Twenty files delivered, then the vendor fails with -502. On reopen
	// the script continues with ten more files and completes.
	var steps []step
	for i := 1; i <= 20; i++ {
		steps = append(steps, record(fmt.Sprintf("F%02d.dat", i), fmt.Sprintf("R%02d", i)))
	}
	steps = append(steps, step{code: feed.CodeDownloadFailed})
	for i := 21; i <= 30; i++ {
		steps = append(steps, record(fmt.Sprintf("F%02d.dat", i), fmt.Sprintf("R%02d", i)))
	}

	script := &stubScript{steps: steps, downloadSeqs: []int{20, 0}}
	counters := stats.New()
	m := NewManager(feed.Regional, testConfig(), script.factory(), counters)

	var got []string
	result, err := m.Run(context.Background(), Params{Spec: "RACE", FromTime: "20250101000000", Option: 3}, collectEmit(&got))
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.Equal(t, 30, len(got))
	assert.GreaterOrEqual(t, result.Retries, 1)
	assert.Equal(t, int64(1), counters.Snapshot().Retries)
	assert.Len(t, result.SkipFiles, 30)

	// No duplicates.
	seen := make(map[string]bool)
	for _, r := range got {
		assert.False(t, seen[r], "duplicate record %s", r)
		seen[r] = true
	}

	assertSubsequence(t, m.Transitions(),
		[]State{StateReading, StateFailedRetryable, StateOpening, StateReading, StateClosed})
	assert.Equal(t, 2, script.opens)
	assert.Equal(t, 2, script.closes)
}

func TestSkipFilesNotRedelivered(t *testing.T) {
	script := &stubScript{
		steps: []step{
			record("F1.dat", "R1"),
			record("F2.dat", "R2"),
			record("F3.dat", "R3"),
		},
	}
	m := NewManager(feed.Central, testConfig(), script.factory(), nil)

	var got []string
	result, err := m.Run(context.Background(), Params{
		Spec:      "RACE",
		Option:    3,
		SkipFiles: map[string]bool{"F1.dat": true, "F2.dat": true},
	}, collectEmit(&got))
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.Equal(t, []string{"R3"}, got)
	assert.Len(t, result.SkipFiles, 3)
}

func TestCorruptedFileRecovery(t *testing.T) {
	var steps []step
	for i := 1; i <= 16; i++ {
		steps = append(steps, record(fmt.Sprintf("F%02d.dat", i), fmt.Sprintf("R%02d", i)))
	}
	steps = append(steps, step{code: feed.CodeFileCorrupt, file: "F17.dat"})
	for i := 18; i <= 20; i++ {
		steps = append(steps, record(fmt.Sprintf("F%02d.dat", i), fmt.Sprintf("R%02d", i)))
	}

	script := &stubScript{steps: steps}
	counters := stats.New()
	m := NewManager(feed.Central, testConfig(), script.factory(), counters)

	var got []string
	result, err := m.Run(context.Background(), Params{Spec: "RACE", Option: 3}, collectEmit(&got))
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.Equal(t, []string{"F17.dat"}, script.fileDeletes)
	assert.Equal(t, 19, len(got))
	assert.Equal(t, int64(1), counters.Snapshot().Failed)
	assert.Equal(t, 0, result.Retries)
}

func TestRateLimitBackoff(t *testing.T) {
	script := &stubScript{
		steps: []step{
			record("F1.dat", "R1"),
			{code: feed.CodeRateLimit},
			record("F2.dat", "R2"),
		},
	}
	m := NewManager(feed.Central, testConfig(), script.factory(), nil)

	var got []string
	result, err := m.Run(context.Background(), Params{Spec: "RACE", Option: 3}, collectEmit(&got))
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.Equal(t, []string{"R1", "R2"}, got)
	assert.Equal(t, 0, result.Retries)
}

func TestAuthErrorFatal(t *testing.T) {
	script := &stubScript{initCode: feed.CodeAuthError}
	m := NewManager(feed.Regional, testConfig(), script.factory(), nil)

	_, err := m.Run(context.Background(), Params{Spec: "RACE", Option: 3}, collectEmit(&[]string{}))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuthentication))
	assert.Contains(t, errors.Remedy(err), `"UNKNOWN"`)

	code, ok := errors.Code(err)
	assert.True(t, ok)
	assert.Equal(t, feed.CodeAuthError, code)
	assert.Equal(t, State(StateFailed), m.State())
}

func TestRetryBudgetExhausted(t *testing.T) {
	// Every read fails with -503; the budgeted retries run out.
	var steps []step
	for i := 0; i < 10; i++ {
		steps = append(steps, step{code: feed.CodeServerError})
	}
	script := &stubScript{steps: steps}
	cfg := testConfig()
	cfg.RetryAttempts = 2
	m := NewManager(feed.Regional, cfg, script.factory(), nil)

	_, err := m.Run(context.Background(), Params{Spec: "RACE", Option: 3}, collectEmit(&[]string{}))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeVendor))
	assert.Equal(t, State(StateFailed), m.State())
}

func TestCancellationBoundedLatency(t *testing.T) {
	// An endless record stream; cancel must return within one read plus
	// one poll interval.
	var steps []step
	for i := 0; i < 100000; i++ {
		steps = append(steps, record("F1.dat", "R"))
	}
	script := &stubScript{steps: steps}
	m := NewManager(feed.Central, testConfig(), script.factory(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	emitted := 0
	emit := func(data []byte, fileName string) error {
		emitted++
		if emitted == 50 {
			cancel()
		}
		return nil
	}

	start := time.Now()
	_, err := m.Run(ctx, Params{Spec: "RACE", Option: 3}, emit)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, elapsed, 200*time.Millisecond)
	assert.Equal(t, 1, script.closes)
	assert.Equal(t, State(StateClosed), m.State())
}

func TestReadBudgetBounds(t *testing.T) {
	cfg := testConfig()
	cfg.ReadBudget = 10
	cfg.RetryAttempts = 0

	var steps []step
	for i := 0; i < 50; i++ {
		steps = append(steps, step{code: feed.CodeFileSwitch})
	}
	script := &stubScript{steps: steps}
	m := NewManager(feed.Central, cfg, script.factory(), nil)

	_, err := m.Run(context.Background(), Params{Spec: "RACE", Option: 3}, collectEmit(&[]string{}))
	require.Error(t, err)
	assert.Equal(t, 10, script.pos)
}

func TestDownloadStallRetries(t *testing.T) {
	// Status sticks at 2 long enough to trip the stall detector; the
	// reopened session reports nothing to download and completes.
	stuck := make([]int, 200)
	for i := range stuck {
		stuck[i] = 2
	}
	script := &stubScript{
		steps:        []step{record("F1.dat", "R1")},
		downloadSeqs: []int{5, 0},
		statusSeq:    stuck,
	}
	m := NewManager(feed.Regional, testConfig(), script.factory(), nil)

	var got []string
	result, err := m.Run(context.Background(), Params{Spec: "RACE", Option: 3}, collectEmit(&got))
	require.NoError(t, err)
	assert.True(t, result.Completed)
	assert.GreaterOrEqual(t, result.Retries, 1)
}

func TestRegionalOptionRemap(t *testing.T) {
	cfg := testConfig()
	cfg.RemapSetupOptions = true
	m := NewManager(feed.Regional, cfg, nil, nil)
	assert.Equal(t, int(feed.OptionSetup), m.remapOption(int(feed.OptionNormal)))
	assert.Equal(t, int(feed.OptionSplitSetup), m.remapOption(int(feed.OptionThisWeek)))
	assert.Equal(t, int(feed.OptionSetup), m.remapOption(int(feed.OptionSetup)))

	central := NewManager(feed.Central, cfg, nil, nil)
	assert.Equal(t, int(feed.OptionNormal), central.remapOption(int(feed.OptionNormal)))
}

// assertSubsequence checks that want appears in order within got.
func assertSubsequence(t *testing.T, got, want []State) {
	t.Helper()
	i := 0
	for _, s := range got {
		if i < len(want) && s == want[i] {
			i++
		}
	}
	assert.Equal(t, len(want), i, "transitions %v missing subsequence %v", got, want)
}
