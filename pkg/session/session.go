// Package session drives one vendor component session through its
// download/read state machine, translating documented result codes into
// retry, recovery and failure reactions. One Manager owns exactly one
// vendor session object at a time; the object is never shared across
// workers.
package session

// Vendor is the opaque call surface of the platform-native vendor
// component. Each call returns a numeric result code; the documented
// codes are classified in pkg/feed.
type Vendor interface {
	// Initialise prepares the component. 0 means ok.
	Initialise(serviceKey string) int
	// Open starts a historical fetch. It may block for minutes; the
	// manager wraps it in a timeout. It announces how many records will
	// be read and how many files must be downloaded first.
	Open(spec, fromTime string, option int) (code, readCount, downloadCount int, lastFileTS string)
	// RealTimeOpen starts a live fetch; the vendor returns only data
	// newer than the previous call.
	RealTimeOpen(spec, key string) (code, readCount int)
	// Status reports download progress: >0 in-progress count, 0 done,
	// negative error.
	Status() int
	// Read returns the next record: code>0 is the record length, 0 is
	// end-of-stream, -1 a file boundary; other negatives are documented
	// error codes.
	Read() (code int, data []byte, fileName string)
	// Skip skips the current record.
	Skip()
	// FileDelete removes a damaged file from the vendor cache.
	FileDelete(fileName string) int
	// Cancel aborts an in-flight download.
	Cancel()
	// Close releases the session.
	Close() int
}

// Factory creates one fresh vendor session object. The manager calls it
// once per attempt so a retried session never reuses a broken object.
type Factory func() (Vendor, error)

// State is the session state machine position.
type State string

const (
	StateUninitialised   State = "uninitialised"
	StateInitialised     State = "initialised"
	StateOpening         State = "opening"
	StateDownloading     State = "downloading"
	StateReading         State = "reading"
	StateClosed          State = "closed"
	StateFailed          State = "failed"
	StateFailedRetryable State = "failed-retryable"
)

// Params describe one session run.
type Params struct {
	Spec string
	// FromTime is YYYYMMDDhhmmss; empty for real-time sessions.
	FromTime string
	Option   int
	// RealTime selects the vendor's real-time open call.
	RealTime bool
	// RTKey is the optional real-time open key.
	RTKey string
	// SkipFiles lists files already delivered by a prior attempt; their
	// records are not re-emitted.
	SkipFiles map[string]bool
}

// Result is the final outcome of a session run.
type Result struct {
	RecordsFetched int
	Completed      bool
	// SkipFiles is the delivered-file set carried into a retry: the
	// input set plus every file from which this run emitted at least one
	// record. A file interrupted mid-way is included.
	SkipFiles map[string]bool
	Retries   int
}
