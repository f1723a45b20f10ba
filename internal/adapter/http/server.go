package http

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
	"github.com/couchcryptid/boundary-layer-viewer/internal/observability"
	"github.com/couchcryptid/boundary-layer-viewer/internal/session"
)

//go:embed templates/index.html
var templateFS embed.FS

// Profile serves the current dataset and reloads it on demand.
type Profile interface {
	Dataset() *domain.Dataset
	Load(ctx context.Context) (*domain.Dataset, error)
	CheckReadiness(ctx context.Context) error
}

// ChartRenderer rasterises a dataset as seen through a view.
type ChartRenderer interface {
	Render(ds *domain.Dataset, view domain.ViewState) ([]byte, error)
}

// Deps are the collaborators the HTTP layer serves from.
type Deps struct {
	Profile    Profile
	Sessions   *session.Store
	Charts     ChartRenderer
	Metrics    *observability.Metrics
	FreeStream float64
}

// Server exposes the viewer page, its JSON API, and health, readiness and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	deps       Deps
	page       *template.Template
	logger     *slog.Logger
}

// NewServer creates an HTTP server with all routes mounted.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps:   deps,
		page:   template.Must(template.ParseFS(templateFS, "templates/index.html")),
		logger: logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Get("/chart.png", s.handleChart)
	r.Route("/api", func(r chi.Router) {
		r.Get("/profile", s.handleProfile)
		r.Get("/view", s.handleView)
		r.Put("/selection", s.handleSelection)
		r.Post("/reload", s.handleReload)
	})

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(deps.Profile))
	r.Handle("/metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
