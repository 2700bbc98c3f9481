// Package cache provides caching for the layout pipeline.
//
// Three stages of the pipeline are cacheable: loaded graphs, computed
// drawings, and rendered artifacts. Each stage has its own key family and
// TTL so a changed layout option invalidates drawings and artifacts but
// not the parsed graph.
//
// Backends: [FileCache] for CLI usage, [RedisCache] for server
// deployments, [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// TTLs per pipeline stage. Graphs are immutable once hashed and keep the
// longest TTL; artifacts are cheap to regenerate from a cached drawing.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLDrawing  = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry TTLs.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// expired entries count as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts parameterizes graph cache keys.
type GraphKeyOpts struct {
	Format string // input format the graph was loaded from
}

// DrawingKeyOpts parameterizes drawing cache keys. OptionsHash is a
// content hash over the full layout options, so any option change keys a
// fresh drawing; Seed is included separately because it is the most
// common thing callers vary.
type DrawingKeyOpts struct {
	OptionsHash string
	Seed        uint64
}

// ArtifactKeyOpts parameterizes rendered-artifact cache keys. Every
// option that changes the rendered bytes must appear here.
type ArtifactKeyOpts struct {
	Format      string // output format (svg, png, dot, json)
	Engine      string // render engine identifier
	Detailed    bool   // verbose node labels
	ShowWeights bool   // edge weight labels
}

// Keyer generates cache keys for the pipeline stages. Implementations
// must be deterministic: equal inputs yield equal keys across processes.
type Keyer interface {
	GraphKey(contentHash string, opts GraphKeyOpts) string
	DrawingKey(graphHash string, opts DrawingKeyOpts) string
	ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes inputs into stable prefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a loaded graph.
func (k *DefaultKeyer) GraphKey(contentHash string, opts GraphKeyOpts) string {
	return hashKey("graph", contentHash, opts)
}

// DrawingKey generates a key for a computed drawing.
func (k *DefaultKeyer) DrawingKey(graphHash string, opts DrawingKeyOpts) string {
	return hashKey("drawing", graphHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", drawingHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
