package eospkg

import "io/fs"

// DefaultExtractWorkers is the default number of concurrent file writers.
const DefaultExtractWorkers = 4

// extractConfig holds configuration for Extract.
type extractConfig struct {
	overwrite  bool
	workers    int
	bufferSize int
	fileMode   fs.FileMode
	progress   ProgressFunc
}

// ExtractOption configures Extract.
type ExtractOption func(*extractConfig)

// ExtractWithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = overwrite
	}
}

// ExtractWithWorkers sets how many files are written concurrently.
// Values below 1 use DefaultExtractWorkers; 1 extracts serially.
func ExtractWithWorkers(n int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.workers = n
	}
}

// ExtractWithBufferSize sets the per-worker copy buffer size.
// Values below 1 are ignored.
func ExtractWithBufferSize(n int) ExtractOption {
	return func(cfg *extractConfig) {
		if n > 0 {
			cfg.bufferSize = n
		}
	}
}

// ExtractWithFileMode sets the permission bits of extracted files.
// The default is 0644; zero keeps the default.
func ExtractWithFileMode(perm fs.FileMode) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.fileMode = perm.Perm()
	}
}

// ExtractWithProgress sets a callback for extraction progress.
// It may be called from several goroutines at once.
func ExtractWithProgress(fn ProgressFunc) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.progress = fn
	}
}
