// Package cache stores rendered tower artifacts keyed by the content hash of
// the config that produced them.
//
// Three backends implement [Cache]:
//   - [FileCache] keeps entries as JSON files under a directory (the CLI default)
//   - [RedisCache] keeps entries in Redis, shared between machines
//   - [NullCache] stores nothing, which disables caching
//
// Keys are built by a [Keyer]. [DefaultKeyer] derives them from the config
// hash, the kernel resolution, and the export format, so any change to the
// tower or to how it is sampled produces a new key.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// TTLArtifact is how long rendered artifacts stay cached.
const TTLArtifact = 7 * 24 * time.Hour

// ArtifactKeyOpts are the inputs besides the config that shape an artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Resolution float64 `json:"resolution"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for one export of a config.
	ArtifactKey(configHash string, opts ArtifactKeyOpts) string

	// ReportKey returns the key for the build report of a config.
	ReportKey(configHash string, resolution float64) string
}

// DefaultKeyer hashes key inputs into "artifact:<sha256>" style keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(configHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", configHash, opts)
}

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(configHash string, resolution float64) string {
	return hashKey("report", configHash, resolution)
}

var _ Keyer = DefaultKeyer{}
