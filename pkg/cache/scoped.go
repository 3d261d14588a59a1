package cache

// ScopedKeyer wraps a Keyer with a prefix so several towers or users can
// share one backend without colliding.
//
// Example usage:
//
//	// Keys for one workshop's printer queue
//	k := NewScopedKeyer(NewDefaultKeyer(), "shop:north:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(configHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(configHash, opts)
}

// ReportKey generates a prefixed key for build report caching.
func (k *ScopedKeyer) ReportKey(configHash string, resolution float64) string {
	return k.prefix + k.inner.ReportKey(configHash, resolution)
}
