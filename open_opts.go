package eospkg

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/eospkg/internal/format"
)

// MaxNameLen is the longest entry name a package may carry.
const MaxNameLen = format.MaxNameLen

// openConfig holds configuration for Open and OpenFile.
type openConfig struct {
	profile    Profile
	kind       Kind
	digest     digest.Digest
	maxEntries int
	logger     *slog.Logger
}

func newOpenConfig(opts []OpenOption) openConfig {
	cfg := openConfig{profile: format.ProfileFixed}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// OpenOption configures Open and OpenFile.
type OpenOption func(*openConfig)

// OpenWithProfile sets the header profile to decode. The default is
// ProfileFixed; the magic does not distinguish profiles.
func OpenWithProfile(p Profile) OpenOption {
	return func(cfg *openConfig) {
		cfg.profile = p
	}
}

// OpenWithKind rejects packages whose magic is not k with ErrKindMismatch.
// By default any known kind is accepted.
func OpenWithKind(k Kind) OpenOption {
	return func(cfg *openConfig) {
		cfg.kind = k
	}
}

// OpenWithDigest verifies the whole package against d before parsing it.
// A mismatch fails with ErrDigestMismatch.
func OpenWithDigest(d digest.Digest) OpenOption {
	return func(cfg *openConfig) {
		cfg.digest = d
	}
}

// OpenWithMaxEntries limits the entry count a package may declare.
// Zero uses DefaultMaxEntries. Negative means no limit.
func OpenWithMaxEntries(n int) OpenOption {
	return func(cfg *openConfig) {
		cfg.maxEntries = n
	}
}

// OpenWithLogger sets a logger for read operations.
// By default, logging is disabled.
func OpenWithLogger(logger *slog.Logger) OpenOption {
	return func(cfg *openConfig) {
		cfg.logger = logger
	}
}

// ParseDigest parses a digest such as "sha256:<hex>". A bare hex string is
// taken as sha256. Invalid input fails with ErrConfig.
func ParseDigest(s string) (digest.Digest, error) {
	s = strings.TrimSpace(s)
	d := digest.Digest(s)
	if !strings.Contains(s, ":") {
		d = digest.NewDigestFromEncoded(digest.SHA256, strings.ToLower(s))
	}
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return d, nil
}
