package eospkg

import "github.com/meigma/eospkg/internal/pkgtype"

// Re-export progress types from internal/pkgtype.
type (
	// ProgressEvent represents a progress update during build or extraction.
	ProgressEvent = pkgtype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = pkgtype.ProgressStage

	// ProgressFunc receives progress updates.
	// Implementations must be safe for concurrent calls.
	ProgressFunc = pkgtype.ProgressFunc
)

// Re-export progress stage constants.
const (
	// StageCollecting indicates the source tree is being walked.
	StageCollecting = pkgtype.StageCollecting

	// StageWriting indicates header, table and file data are being written.
	StageWriting = pkgtype.StageWriting

	// StageExtracting indicates files are being extracted.
	StageExtracting = pkgtype.StageExtracting
)
