// Package cache stores decoded documents and rendered artifacts between runs.
//
// Keys are produced by a [Keyer] so that the same payload and export options
// always map to the same entry regardless of backend. Backends:
//   - [FileCache]: JSON entries on disk, used by the CLI
//   - [MemoryCache]: a process-local map, used by the HTTP server by default
//   - [RedisCache]: shared storage for several server instances
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLDocument is the lifetime of a decoded XML document. Decoding is a
	// pure function of the payload, so entries only expire to bound disk use.
	TTLDocument = 7 * 24 * time.Hour

	// TTLArtifact is the lifetime of a rendered PNG or SVG.
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
//
// Get reports a miss with ok == false and a nil error. A zero ttl passed to
// Set stores the entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ArtifactKeyOpts are the export options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	DPI        float64 `json:"dpi,omitempty"`
	Background string  `json:"background,omitempty"`
	Color      string  `json:"color,omitempty"`
	Padding    float64 `json:"padding,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// DocumentKey returns the key of the decoded XML for a payload hash.
	DocumentKey(contentHash string) string

	// ArtifactKey returns the key of an export of the document with the
	// given content hash.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes every key component.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey implements [Keyer].
func (DefaultKeyer) DocumentKey(contentHash string) string {
	return "doc:" + contentHash
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", contentHash, opts)
}
