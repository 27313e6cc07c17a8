package coordinator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keibalab/racefeed/pkg/feed"
	"github.com/keibalab/racefeed/pkg/session"
)

func TestRunWorkerProtocol(t *testing.T) {
	// Two records in one replay file, CRLF separated.
	dir := t.TempDir()
	payload := append(raBuffer(t, "0601", "01"), '\r', '\n')
	payload = append(payload, raBuffer(t, "0601", "02")...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "F001.dat"), payload, 0o644))

	cfg := testCfg()
	req := WorkerRequest{
		Feed:     feed.Central,
		Spec:     feed.SpecRace,
		FromTime: "20240601000000",
		ToDate:   "20240601",
		Option:   int(feed.OptionSetup),
	}
	reqJSON, err := json.Marshal(req)
	require.NoError(t, err)

	var out bytes.Buffer
	err = RunWorker(context.Background(), cfg, session.ReplayFactory(dir),
		bytes.NewReader(reqJSON), &out)
	require.NoError(t, err)

	// The child's only return channel is a single JSON line.
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 1)

	var result WorkerResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &result))
	assert.True(t, result.Completed)
	assert.Equal(t, 2, result.RecordsFetched)
	assert.Empty(t, result.Error)
	assert.Equal(t, int64(2), result.Stats.Imported)
	assert.Contains(t, result.SkipFiles, "F001.dat")
}

func TestRunWorkerBadRequest(t *testing.T) {
	var out bytes.Buffer
	err := RunWorker(context.Background(), testCfg(), session.ReplayFactory(t.TempDir()),
		strings.NewReader("not json"), &out)
	require.NoError(t, err)

	var result WorkerResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.NotEmpty(t, result.Error)
}

func TestWorkerRequestRoundTrip(t *testing.T) {
	req := WorkerRequest{
		Feed:      feed.Regional,
		Spec:      feed.SpecRace,
		FromTime:  "20250101000000",
		ToDate:    "20250101",
		Option:    3,
		SkipFiles: []string{"A.dat", "B.dat"},
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)

	var got WorkerRequest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, req, got)
}
