package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/couchcryptid/climate-choropleth/internal/app"
	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/panel"
	"github.com/couchcryptid/climate-choropleth/internal/render"
	"github.com/couchcryptid/climate-choropleth/internal/scale"
)

// maxRequestBytes bounds API request bodies.
const maxRequestBytes = 1 << 16

var errBadRequest = errors.New("bad request")

type metricRequest struct {
	Metric string `json:"metric"`
}

type yearRequest struct {
	Year int `json:"year"`
}

type viewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type pointerRequest struct {
	Region string  `json:"region,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	left, right, tip, err := s.panels.Frames(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = render.Page(w, render.PageData{Title: s.title, Left: left, Right: right, Tooltip: tip})
	if err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	f, err := s.panels.Frame(r.Context(), mux.Vars(r)["side"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := render.SVG(w, f); err != nil {
		s.logger.Error("render svg", "panel", f.Panel, "error", err)
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	f, err := s.panels.Frame(r.Context(), mux.Vars(r)["side"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleSelectMetric(w http.ResponseWriter, r *http.Request) {
	var req metricRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	m, err := domain.ParseMetric(req.Metric)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	side := mux.Vars(r)["side"]
	s.respondFrame(w, r, side, s.panels.SelectMetric(r.Context(), side, m))
}

func (s *Server) handleSelectYear(w http.ResponseWriter, r *http.Request) {
	var req yearRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	side := mux.Vars(r)["side"]
	s.respondFrame(w, r, side, s.panels.SelectYear(r.Context(), side, req.Year))
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Region == "" {
		s.writeError(w, fmt.Errorf("%w: region is required", errBadRequest))
		return
	}
	side := mux.Vars(r)["side"]
	err := s.panels.Hover(r.Context(), side, req.Region, scale.Point{X: req.X, Y: req.Y})
	s.respondTooltip(w, r, err)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	side := mux.Vars(r)["side"]
	s.respondTooltip(w, r, s.panels.PointerMove(r.Context(), side, scale.Point{X: req.X, Y: req.Y}))
}

func (s *Server) handleHoverEnd(w http.ResponseWriter, r *http.Request) {
	s.respondTooltip(w, r, s.panels.HoverEnd(r.Context(), mux.Vars(r)["side"]))
}

func (s *Server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	s.respondTooltip(w, r, nil)
}

// handleResize rebuilds both panels. They reload in the background, so the
// response only acknowledges the new viewport.
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.panels.Resize(r.Context(), req.Width, req.Height); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, req)
}

// respondFrame writes the panel frame after a selection, or the error that
// rejected it.
func (s *Server) respondFrame(w http.ResponseWriter, r *http.Request, side string, opErr error) {
	if opErr != nil {
		s.writeError(w, opErr)
		return
	}
	f, err := s.panels.Frame(r.Context(), side)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) respondTooltip(w http.ResponseWriter, r *http.Request, opErr error) {
	if opErr != nil {
		s.writeError(w, opErr)
		return
	}
	tip, err := s.panels.Tooltip(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tip)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	var dfe *domain.DataFormatError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, app.ErrInvalidViewport):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrUnknownPanel),
		errors.Is(err, domain.ErrYearNotFound),
		errors.Is(err, domain.ErrRegionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMetricUnavailable),
		errors.Is(err, panel.ErrNotReady),
		errors.Is(err, panel.ErrPanelFailed),
		errors.As(err, &dfe):
		return http.StatusConflict
	case errors.Is(err, app.ErrStopped):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
