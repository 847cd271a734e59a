package eospkg

import (
	"log/slog"

	"github.com/meigma/eospkg/internal/collect"
	"github.com/meigma/eospkg/internal/format"
)

// DefaultMaxEntries is the default entry limit used when no
// BuildWithMaxEntries option is set.
const DefaultMaxEntries = collect.DefaultMaxEntries

// DefaultBufferSize is the default copy buffer size for file data.
const DefaultBufferSize = 32 * 1024

// buildConfig holds configuration for Write and Build.
type buildConfig struct {
	kind            Kind
	profile         Profile
	meta            Metadata
	manifestPath    string
	manifestSet     bool
	order           Order
	skip            []SkipFunc
	maxEntries      int
	bufferSize      int
	changeDetection ChangeDetection
	logger          *slog.Logger
	progress        ProgressFunc
}

func newBuildConfig(opts []BuildOption) buildConfig {
	cfg := buildConfig{
		kind:       format.KindApplication,
		profile:    format.ProfileFixed,
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// BuildOption configures Write and Build.
type BuildOption func(*buildConfig)

// BuildWithKind sets the package kind. The default is KindApplication.
func BuildWithKind(k Kind) BuildOption {
	return func(cfg *buildConfig) {
		cfg.kind = k
	}
}

// BuildWithProfile sets the header profile. The default is ProfileFixed.
func BuildWithProfile(p Profile) BuildOption {
	return func(cfg *buildConfig) {
		cfg.profile = p
	}
}

// BuildWithMetadata sets header metadata explicitly.
// Non-empty fields override the corresponding manifest fields.
func BuildWithMetadata(m Metadata) BuildOption {
	return func(cfg *buildConfig) {
		cfg.meta = m
	}
}

// BuildWithManifest reads metadata from the manifest at path, which must
// exist. Without this option, manifest.json at the root of the source tree
// is used when present.
//
// An empty path disables manifest loading entirely.
func BuildWithManifest(path string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.manifestPath = path
		cfg.manifestSet = true
	}
}

// BuildWithOrder sets the traversal order. The default is OrderLexical.
func BuildWithOrder(o Order) BuildOption {
	return func(cfg *buildConfig) {
		cfg.order = o
	}
}

// BuildWithSkip adds predicates that exclude source paths.
func BuildWithSkip(fns ...SkipFunc) BuildOption {
	return func(cfg *buildConfig) {
		cfg.skip = append(cfg.skip, fns...)
	}
}

// BuildWithMaxEntries limits the number of entries in the package.
// Zero uses DefaultMaxEntries. Negative means no limit.
func BuildWithMaxEntries(n int) BuildOption {
	return func(cfg *buildConfig) {
		cfg.maxEntries = n
	}
}

// BuildWithBufferSize sets the copy buffer size. Values below 1 are ignored.
func BuildWithBufferSize(n int) BuildOption {
	return func(cfg *buildConfig) {
		if n > 0 {
			cfg.bufferSize = n
		}
	}
}

// BuildWithChangeDetection controls whether the writer verifies files did
// not change while they were copied. The zero value only catches files that
// became shorter; enable ChangeDetectionStrict for stronger guarantees.
func BuildWithChangeDetection(cd ChangeDetection) BuildOption {
	return func(cfg *buildConfig) {
		cfg.changeDetection = cd
	}
}

// BuildWithLogger sets a logger for build operations.
// By default, logging is disabled.
func BuildWithLogger(logger *slog.Logger) BuildOption {
	return func(cfg *buildConfig) {
		cfg.logger = logger
	}
}

// BuildWithProgress sets a callback for collection and write progress.
func BuildWithProgress(fn ProgressFunc) BuildOption {
	return func(cfg *buildConfig) {
		cfg.progress = fn
	}
}
