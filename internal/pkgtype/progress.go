package pkgtype

// ProgressEvent represents a progress update during build or extraction.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the entry currently being processed, if applicable.
	Path string

	// BytesDone is the number of file bytes completed so far.
	BytesDone uint64

	// BytesTotal is the total number of file bytes.
	// Zero indicates the total is unknown (e.g., during collection).
	BytesTotal uint64

	// EntriesDone is the number of entries completed.
	EntriesDone int

	// EntriesTotal is the total number of entries.
	// Zero indicates the total is unknown.
	EntriesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

const (
	// StageCollecting indicates the source tree is being walked.
	StageCollecting ProgressStage = iota

	// StageWriting indicates the header, table and file data are being written.
	StageWriting

	// StageExtracting indicates files are being extracted from a package.
	StageExtracting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageCollecting:
		return "collecting"
	case StageWriting:
		return "writing"
	case StageExtracting:
		return "extracting"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates.
// Extraction may call it from several goroutines; implementations must be
// safe for concurrent calls.
type ProgressFunc func(ProgressEvent)
