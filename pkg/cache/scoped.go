package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, so
// several projects or tenants can share one backend without key clashes.
//
// Example usage:
//
//	// Project-specific keys
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "proj:orrery:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
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

// GraphKey generates a prefixed key for a loaded graph.
func (k *ScopedKeyer) GraphKey(contentHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(contentHash, opts)
}

// DrawingKey generates a prefixed key for a computed drawing.
func (k *ScopedKeyer) DrawingKey(graphHash string, opts DrawingKeyOpts) string {
	return k.prefix + k.inner.DrawingKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(drawingHash, opts)
}
