package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/okanele/orrery/pkg/drawing"
	"github.com/okanele/orrery/pkg/pipeline"
	"github.com/okanele/orrery/pkg/store"
)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return NewServer(runner, st, logger), st
}

func layoutBody(t *testing.T, n int) *bytes.Buffer {
	t.Helper()
	in := pipeline.GraphInput{Nodes: make([]pipeline.InputNode, n)}
	for i := 0; i < n-1; i++ {
		in.Edges = append(in.Edges, pipeline.InputEdge{Source: i, Target: i + 1})
	}
	body, err := json.Marshal(map[string]any{
		"graph":   in,
		"quality": pipeline.QualityDraft,
		"seed":    42,
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLayoutEndpoint(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Handler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/layout", layoutBody(t, 5))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp LayoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("response has no drawing id")
	}
	if resp.Stats.NodeCount != 5 || resp.Stats.EdgeCount != 4 {
		t.Errorf("stats = %+v", resp.Stats)
	}
	if resp.Seed != 42 {
		t.Errorf("seed = %d, want 42", resp.Seed)
	}

	// The drawing was persisted and is retrievable.
	d, err := st.Get(req.Context(), resp.ID)
	if err != nil {
		t.Fatalf("stored drawing missing: %v", err)
	}
	if len(d.Nodes) != 5 {
		t.Errorf("stored drawing has %d nodes, want 5", len(d.Nodes))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drawings/"+resp.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get drawing status = %d", rec.Code)
	}
	var got drawing.Drawing
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode drawing: %v", err)
	}
	if got.ID != resp.ID {
		t.Errorf("drawing id = %q, want %q", got.ID, resp.ID)
	}
}

func TestLayoutEndpointRejectsBadBody(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	for name, body := range map[string]string{
		"garbage":  "{not json",
		"no graph": `{"seed": 1}`,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Errorf("%s: error body not JSON: %v", name, err)
		} else if resp.Error.Code == "" {
			t.Errorf("%s: error body has no code", name)
		}
	}
}

func TestGetDrawingNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drawings/absent", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Error.Code != "DRAWING_NOT_FOUND" {
		t.Errorf("error code = %q, want DRAWING_NOT_FOUND", resp.Error.Code)
	}
}

func TestDeleteDrawing(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Handler()

	d := drawing.Drawing{ID: drawing.NewID(), Nodes: []drawing.Node{{ID: 0}}}
	if err := st.Put(httptest.NewRequest(http.MethodGet, "/", nil).Context(), d); err != nil {
		t.Fatalf("put: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/drawings/"+d.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/drawings/"+d.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestRenderDrawingDOT(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Handler()

	d := drawing.Drawing{
		ID:     drawing.NewID(),
		Width:  100,
		Height: 100,
		Nodes:  []drawing.Node{{ID: 0, X: 10, Y: 10}, {ID: 1, X: 90, Y: 90}},
		Edges:  []drawing.Edge{{Source: 0, Target: 1}},
	}
	if err := st.Put(httptest.NewRequest(http.MethodGet, "/", nil).Context(), d); err != nil {
		t.Fatalf("put: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drawings/"+d.ID+"/render?format=dot", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/vnd.graphviz" {
		t.Errorf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "n0 -- n1") {
		t.Errorf("DOT output missing edge:\n%s", rec.Body.String())
	}
}

func TestRenderDrawingBadFormat(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Handler()

	d := drawing.Drawing{ID: drawing.NewID(), Nodes: []drawing.Node{{ID: 0}}}
	if err := st.Put(httptest.NewRequest(http.MethodGet, "/", nil).Context(), d); err != nil {
		t.Fatalf("put: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drawings/"+d.ID+"/render?format=gif", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListDrawingsLimit(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Handler()
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	for i := 0; i < 3; i++ {
		if err := st.Put(ctx, drawing.Drawing{ID: drawing.NewID(), Nodes: []drawing.Node{{ID: 0}}}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drawings?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var drawings []drawing.Drawing
	if err := json.Unmarshal(rec.Body.Bytes(), &drawings); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(drawings) != 2 {
		t.Errorf("list returned %d drawings, want 2", len(drawings))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drawings?limit=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}
