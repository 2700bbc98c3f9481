package store

import (
	"context"
	"testing"
	"time"

	"github.com/okanele/orrery/pkg/drawing"
	"github.com/okanele/orrery/pkg/errors"
)

func TestMemoryStoreCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	d := drawing.Drawing{ID: "d1", Width: 100, Height: 50}
	if err := s.Put(ctx, d); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Width != 100 || got.Height != 50 {
		t.Errorf("Get returned %+v", got)
	}

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, errors.ErrCodeDrawingNotFound) {
		t.Errorf("Get(missing) error = %v, want DRAWING_NOT_FOUND", err)
	}

	if err := s.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "d1"); !errors.Is(err, errors.ErrCodeDrawingNotFound) {
		t.Errorf("Delete(missing) error = %v, want DRAWING_NOT_FOUND", err)
	}
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Put(context.Background(), drawing.Drawing{}); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("Put without ID error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"a", "b", "c"} {
		d := drawing.Drawing{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Put(ctx, d); err != nil {
			t.Fatalf("Put(%s): %v", id, err)
		}
	}

	out, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 || out[0].ID != "c" || out[1].ID != "b" {
		ids := make([]string, len(out))
		for i, d := range out {
			ids[i] = d.ID
		}
		t.Errorf("List(2) = %v, want [c b]", ids)
	}
}
