package feed

import "fmt"

// Documented vendor result codes. Positive values returned from read are
// record lengths; positive values from status are in-progress counts.
const (
	// CodeOK signals success or completion.
	CodeOK = 0
	// CodeFileSwitch marks a data boundary during read, not an error.
	CodeFileSwitch = -1
	// CodeNotDownloaded means the file is not yet downloaded (regional);
	// the reader continues.
	CodeNotDownloaded = -3
	// CodeAuthNotSet means the service key has not been configured.
	CodeAuthNotSet = -100
	// CodeSpecUnsupported means the data spec is outside the contract.
	CodeSpecUnsupported = -116
	// CodeSetupIncomplete is the vendor-side "other" error, usually an
	// incomplete initial setup. Retryable under a bounded budget.
	CodeSetupIncomplete = -203
	// CodeAuthError is an authentication failure or unknown init key.
	CodeAuthError = -301
	// CodeFileCorrupt and CodeFileCorruptAlt flag a damaged file; recovery
	// is file_delete + continue.
	CodeFileCorrupt    = -402
	CodeFileCorruptAlt = -403
	// CodeRateLimit asks the client to back off at least 30 seconds.
	CodeRateLimit = -421
	// CodeDownloadFailed and CodeServerError close the session; the client
	// waits at least 10 seconds and reopens with skip-files preserved.
	CodeDownloadFailed = -502
	CodeServerError    = -503
)

// Class buckets a vendor result code into a reaction the session manager
// implements.
type Class int

const (
	// ClassOK: proceed.
	ClassOK Class = iota
	// ClassContinue: data boundary or not-yet-downloaded; keep reading.
	ClassContinue
	// ClassRecoverFile: delete the offending file and continue.
	ClassRecoverFile
	// ClassBackoff: rate-limited; wait and continue.
	ClassBackoff
	// ClassRetrySession: close the session, wait, reopen with skip-files.
	ClassRetrySession
	// ClassFatalAuth: non-retryable authentication failure.
	ClassFatalAuth
	// ClassFatal: non-retryable failure for this run.
	ClassFatal
)

// Classify maps a negative vendor result code to its reaction class.
// Codes >= 0 classify as ClassOK.
func Classify(code int) Class {
	if code >= CodeOK {
		return ClassOK
	}
	switch code {
	case CodeFileSwitch, CodeNotDownloaded:
		return ClassContinue
	case CodeFileCorrupt, CodeFileCorruptAlt:
		return ClassRecoverFile
	case CodeRateLimit:
		return ClassBackoff
	case CodeSetupIncomplete, CodeDownloadFailed, CodeServerError:
		return ClassRetrySession
	case CodeAuthNotSet, CodeAuthError:
		return ClassFatalAuth
	default:
		return ClassFatal
	}
}

// CodeMessage returns the operator-facing description of a result code.
func CodeMessage(code int) string {
	switch code {
	case CodeOK:
		return "success"
	case CodeFileSwitch:
		return "data boundary"
	case CodeNotDownloaded:
		return "file not yet downloaded"
	case CodeAuthNotSet:
		return "service key not configured"
	case CodeSpecUnsupported:
		return "data spec not included in the subscription"
	case CodeSetupIncomplete:
		return "vendor-side error, initial setup may be incomplete"
	case CodeAuthError:
		return "authentication failed or unknown initialise key"
	case CodeFileCorrupt, CodeFileCorruptAlt:
		return "corrupted file"
	case CodeRateLimit:
		return "rate limited by the vendor"
	case CodeDownloadFailed:
		return "download failed"
	case CodeServerError:
		return "vendor server error"
	default:
		return fmt.Sprintf("unknown vendor code %d", code)
	}
}

// CodeRemedy returns the remedy hint surfaced with fatal errors.
func CodeRemedy(f Feed, code int) string {
	switch code {
	case CodeAuthNotSet:
		return "configure the vendor service key before running"
	case CodeAuthError:
		if f == Regional {
			return `regional init key must be the literal string "UNKNOWN"`
		}
		return "verify the vendor service key"
	case CodeSpecUnsupported:
		return "remove the unsupported data spec or upgrade the subscription"
	case CodeSetupIncomplete:
		return "complete the vendor initial setup, then retry"
	default:
		return ""
	}
}
