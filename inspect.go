package eospkg

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"
)

// InspectResult summarizes a package without extracting it.
type InspectResult struct {
	pkg    *Package
	digest digest.Digest

	// Lazy computed stats
	statsOnce sync.Once
	dirCount  int
	fileCount int
	dataBytes uint64
}

// Inspect parses the package at path and computes its digest.
func Inspect(path string, opts ...OpenOption) (*InspectResult, error) {
	pf, err := OpenFile(path, opts...)
	if err != nil {
		return nil, err
	}
	defer pf.Close()

	d, err := pf.Digest()
	if err != nil {
		return nil, err
	}
	return &InspectResult{pkg: pf.Package, digest: d}, nil
}

// Digest computes the sha256 digest of the whole package.
func (p *Package) Digest() (digest.Digest, error) {
	h := sha256.New()
	if _, err := io.Copy(h, io.NewSectionReader(p.src, 0, p.size)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}
	return sha256Digest(h), nil
}

// Header returns the decoded header.
func (r *InspectResult) Header() Header {
	return r.pkg.Header()
}

// Entries returns the entries in table order.
func (r *InspectResult) Entries() []Entry {
	return r.pkg.Entries()
}

// Digest returns the sha256 digest of the package.
func (r *InspectResult) Digest() digest.Digest {
	return r.digest
}

// Size returns the package size in bytes.
func (r *InspectResult) Size() int64 {
	return r.pkg.Size()
}

// TableOffset returns the offset of the entry table.
func (r *InspectResult) TableOffset() uint32 {
	return r.pkg.TableOffset()
}

// DataStart returns the offset of the data region.
func (r *InspectResult) DataStart() uint32 {
	return r.pkg.DataStart()
}

// DirCount returns the number of directory entries.
func (r *InspectResult) DirCount() int {
	r.computeStats()
	return r.dirCount
}

// FileCount returns the number of file entries.
func (r *InspectResult) FileCount() int {
	r.computeStats()
	return r.fileCount
}

// DataSize returns the sum of all file sizes.
func (r *InspectResult) DataSize() uint64 {
	r.computeStats()
	return r.dataBytes
}

// computeStats computes aggregate statistics by iterating all entries.
func (r *InspectResult) computeStats() {
	r.statsOnce.Do(func() {
		for _, e := range r.pkg.Entries() {
			switch v := e.(type) {
			case Dir:
				r.dirCount++
			case File:
				r.fileCount++
				r.dataBytes += uint64(v.Size)
			}
		}
	})
}
