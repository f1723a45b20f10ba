package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

// SessionCookie names the cookie that carries the view session ID.
const SessionCookie = "blview_session"

// maxSelectionBody bounds PUT /api/selection payloads.
const maxSelectionBody = 1 << 10

type selectionRequest struct {
	X *float64 `json:"x"`
}

type profileResponse struct {
	Version            uint64                      `json:"version"`
	Source             string                      `json:"source"`
	LoadedAt           string                      `json:"loaded_at,omitempty"`
	FreeStreamVelocity float64                     `json:"free_stream_velocity"`
	Points             []domain.BoundaryLayerPoint `json:"points"`
	Summary            domain.ProfileSummary       `json:"summary"`
	Report             domain.ExtractReport        `json:"report"`
	Batch              domain.BatchInfo            `json:"batch"`
}

type reloadResponse struct {
	Version uint64 `json:"version"`
	Points  int    `json:"points"`
	Skipped int    `json:"skipped"`
}

// session returns the caller's view, starting a new session when the cookie
// is missing or expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, domain.ViewState) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if view, ok := s.deps.Sessions.Get(c.Value); ok {
			return c.Value, view
		}
	}

	id := s.deps.Sessions.Create(0)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.deps.Metrics.ActiveSessions.Set(float64(s.deps.Sessions.Len()))
	view, _ := s.deps.Sessions.Get(id)
	return id, view
}

func (s *Server) frame(view domain.ViewState) domain.Frame {
	return domain.NewFrame(s.deps.Profile.Dataset(), view, s.deps.FreeStream)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, view := s.session(w, r)
	f := s.frame(view)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, f); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	ds := s.deps.Profile.Dataset()
	resp := profileResponse{
		Version:            ds.Version,
		Source:             ds.Source,
		FreeStreamVelocity: s.deps.FreeStream,
		Points:             ds.Points,
		Summary:            domain.Summarize(ds.Points),
		Report:             ds.Report,
		Batch:              ds.Batch,
	}
	if !ds.LoadedAt.IsZero() {
		resp.LoadedAt = ds.LoadedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	_, view := s.session(w, r)
	writeJSON(w, http.StatusOK, s.frame(view))
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	id, view := s.session(w, r)

	var req selectionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSelectionBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.X == nil || math.IsNaN(*req.X) || math.IsInf(*req.X, 0) {
		writeError(w, http.StatusBadRequest, `body must be {"x": <finite number>}`)
		return
	}

	view.SetSelectedStation(*req.X)
	s.deps.Sessions.Put(id, view)
	s.deps.Metrics.SelectionsTotal.Inc()

	writeJSON(w, http.StatusOK, s.frame(view))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	_, view := s.session(w, r)

	img, err := s.deps.Charts.Render(s.deps.Profile.Dataset(), view)
	if err != nil {
		s.logger.Error("render chart", "error", err)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ds, err := s.deps.Profile.Load(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrSourceUnavailable):
			status = http.StatusBadGateway
		case errors.Is(err, domain.ErrDecode):
			status = http.StatusUnprocessableEntity
		}
		s.logger.Warn("reload failed", "error", err)
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		Version: ds.Version,
		Points:  len(ds.Points),
		Skipped: ds.Report.SkippedCount(),
	})
}
