package store

import (
	"context"
	"sort"
	"sync"

	"github.com/okanele/orrery/pkg/drawing"
	"github.com/okanele/orrery/pkg/errors"
)

// MemoryStore keeps drawings in a map. Used by tests and single-process
// CLI runs where persistence isn't needed.
type MemoryStore struct {
	mu       sync.RWMutex
	drawings map[string]drawing.Drawing
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drawings: make(map[string]drawing.Drawing)}
}

// Put inserts or replaces the drawing under its ID.
func (s *MemoryStore) Put(ctx context.Context, d drawing.Drawing) error {
	if d.ID == "" {
		return errors.New(errors.ErrCodeInvalidArgument, "drawing has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawings[d.ID] = d
	return nil
}

// Get returns the drawing with the given ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (drawing.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drawings[id]
	if !ok {
		return drawing.Drawing{}, errors.New(errors.ErrCodeDrawingNotFound, "drawing %s not found", id)
	}
	return d, nil
}

// List returns up to limit drawings, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]drawing.Drawing, error) {
	s.mu.RLock()
	out := make([]drawing.Drawing, 0, len(s.drawings))
	for _, d := range s.drawings {
		out = append(out, d)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes the drawing with the given ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drawings[id]; !ok {
		return errors.New(errors.ErrCodeDrawingNotFound, "drawing %s not found", id)
	}
	delete(s.drawings, id)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
