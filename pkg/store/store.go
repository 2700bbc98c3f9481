// Package store persists drawings.
//
// The API server keeps every finished drawing addressable by ID so
// clients can fetch or re-render it later. [MongoStore] backs production
// deployments; [MemoryStore] serves tests and single-process CLI runs.
package store

import (
	"context"

	"github.com/okanele/orrery/pkg/drawing"
)

// Store is a drawing repository keyed by drawing ID.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put inserts or replaces a drawing. The drawing must carry an ID.
	Put(ctx context.Context, d drawing.Drawing) error

	// Get returns the drawing with the given ID, or a DRAWING_NOT_FOUND
	// error when no such drawing exists.
	Get(ctx context.Context, id string) (drawing.Drawing, error)

	// List returns up to limit drawings, newest first.
	List(ctx context.Context, limit int) ([]drawing.Drawing, error)

	// Delete removes a drawing, or returns DRAWING_NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
