package session

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/keibalab/racefeed/pkg/feed"
)

// ReplayVendor is a file-backed Vendor implementation. It replays record
// buffers from vendor dump files in a directory, one file per vendor
// delivery unit, records separated by CRLF. It backs offline imports and
// the end-to-end tests; the platform-native component replaces it in
// production wiring.
type ReplayVendor struct {
	dir   string
	files []string

	fileIdx   int
	records   [][]byte
	recordIdx int
	opened    bool
}

// NewReplayVendor creates a replay session over a dump directory.
func NewReplayVendor(dir string) *ReplayVendor {
	return &ReplayVendor{dir: dir}
}

// ReplayFactory returns a Factory producing fresh replay sessions.
func ReplayFactory(dir string) Factory {
	return func() (Vendor, error) {
		return NewReplayVendor(dir), nil
	}
}

// Initialise loads the file list. Any service key is accepted.
func (r *ReplayVendor) Initialise(serviceKey string) int {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return feed.CodeSetupIncomplete
	}
	r.files = r.files[:0]
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		r.files = append(r.files, e.Name())
	}
	sort.Strings(r.files)
	return feed.CodeOK
}

// Open positions the replay at the first file. Nothing downloads, so the
// announced download count is always zero.
func (r *ReplayVendor) Open(spec, fromTime string, option int) (int, int, int, string) {
	r.fileIdx = 0
	r.records = nil
	r.recordIdx = 0
	r.opened = true
	return feed.CodeOK, len(r.files), 0, ""
}

// RealTimeOpen behaves like Open.
func (r *ReplayVendor) RealTimeOpen(spec, key string) (int, int) {
	code, n, _, _ := r.Open(spec, "", 0)
	return code, n
}

// Status always reports done.
func (r *ReplayVendor) Status() int { return feed.CodeOK }

// Read yields the next record, emitting a file boundary after each file.
func (r *ReplayVendor) Read() (int, []byte, string) {
	if !r.opened {
		return feed.CodeSetupIncomplete, nil, ""
	}
	for {
		if r.records == nil {
			if r.fileIdx >= len(r.files) {
				return feed.CodeOK, nil, ""
			}
			name := r.files[r.fileIdx]
			data, err := os.ReadFile(filepath.Join(r.dir, name))
			if err != nil {
				r.fileIdx++
				return feed.CodeFileCorrupt, nil, name
			}
			r.records = splitRecords(data)
			r.recordIdx = 0
			if len(r.records) == 0 {
				r.records = nil
				r.fileIdx++
				return feed.CodeFileSwitch, nil, name
			}
		}
		if r.recordIdx < len(r.records) {
			rec := r.records[r.recordIdx]
			r.recordIdx++
			return len(rec), rec, r.files[r.fileIdx]
		}
		name := r.files[r.fileIdx]
		r.records = nil
		r.fileIdx++
		return feed.CodeFileSwitch, nil, name
	}
}

// Skip does nothing: Read has already advanced past the record.
func (r *ReplayVendor) Skip() {}

// FileDelete removes a damaged file from the replay set.
func (r *ReplayVendor) FileDelete(fileName string) int {
	for i, f := range r.files {
		if f == fileName {
			r.files = append(r.files[:i], r.files[i+1:]...)
			if i < r.fileIdx {
				r.fileIdx--
			}
			break
		}
	}
	return feed.CodeOK
}

// Cancel is a no-op for replays.
func (r *ReplayVendor) Cancel() {}

// Close releases the replay state.
func (r *ReplayVendor) Close() int {
	r.opened = false
	r.records = nil
	return feed.CodeOK
}

// splitRecords cuts a dump file into CRLF-terminated record buffers.
func splitRecords(data []byte) [][]byte {
	var out [][]byte
	start := 0
	for i := 0; i+1 < len(data); i++ {
		if data[i] == '\r' && data[i+1] == '\n' {
			if i > start {
				out = append(out, data[start:i])
			}
			start = i + 2
			i++
		}
	}
	if start < len(data) {
		out = append(out, data[start:])
	}
	return out
}
