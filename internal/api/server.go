// Package api implements the HTTP server for orrery.
//
// The server exposes the layout pipeline over JSON: clients submit a
// graph with pipeline options, receive the laid-out drawing, and can
// fetch stored drawings and rendered artifacts afterwards.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okanele/orrery/pkg/errors"
	"github.com/okanele/orrery/pkg/pipeline"
	"github.com/okanele/orrery/pkg/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	requestTimeout = 60 * time.Second
)

// Server wires the pipeline runner and drawing store into an HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewServer creates a server. The store persists drawings produced by
// the layout endpoint; the runner supplies caching and rendering.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, logger: logger}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/drawings", s.handleListDrawings)
		r.Get("/drawings/{id}", s.handleGetDrawing)
		r.Delete("/drawings/{id}", s.handleDeleteDrawing)
		r.Get("/drawings/{id}/render", s.handleRenderDrawing)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LayoutResponse is the body returned by POST /api/layout.
type LayoutResponse struct {
	ID        string             `json:"id"`
	GraphHash string             `json:"graph_hash"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Seed      uint64             `json:"seed"`
	Stats     LayoutStats        `json:"stats"`
	Cache     pipeline.CacheInfo `json:"cache"`
}

// LayoutStats is the wire form of pipeline statistics.
type LayoutStats struct {
	NodeCount  int    `json:"node_count"`
	EdgeCount  int    `json:"edge_count"`
	Components int    `json:"components"`
	LoadMs     int64  `json:"load_ms"`
	LayoutMs   int64  `json:"layout_ms"`
	RequestID  string `json:"request_id,omitempty"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return
	}
	if opts.Graph == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidOptions, "request must include an inline graph"))
		return
	}
	// Paths are a CLI concern; the API only accepts inline graphs.
	opts.Input = ""
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d := result.Drawing
	if err := s.store.Put(r.Context(), d); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LayoutResponse{
		ID:        d.ID,
		GraphHash: result.GraphHash,
		Width:     d.Width,
		Height:    d.Height,
		Seed:      d.Seed,
		Stats: LayoutStats{
			NodeCount:  result.Stats.NodeCount,
			EdgeCount:  result.Stats.EdgeCount,
			Components: result.Stats.Components,
			LoadMs:     result.Stats.LoadTime.Milliseconds(),
			LayoutMs:   result.Stats.LayoutTime.Milliseconds(),
			RequestID:  middleware.GetReqID(r.Context()),
		},
		Cache: result.CacheInfo,
	})
}

func (s *Server) handleListDrawings(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidArgument, "invalid limit %q", raw))
			return
		}
		limit = min(v, maxListLimit)
	}

	drawings, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drawings)
}

func (s *Server) handleGetDrawing(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDrawing(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var artifactContentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleRenderDrawing(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts := pipeline.Options{
		Formats:     []string{format},
		Detailed:    q.Get("detailed") == "true",
		ShowWeights: q.Get("weights") == "true",
		Logger:      s.logger,
	}

	artifacts, err := s.runner.Render(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifactContentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// logRequests emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForCode(errors.GetCode(err))
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}})
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidOptions, errors.ErrCodeInvalidGraph, errors.ErrCodeInvalidArgument,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidDrawing:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeDrawingNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
