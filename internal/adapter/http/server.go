package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/panel"
	"github.com/couchcryptid/climate-choropleth/internal/scale"
)

// Panels is the comparison view the server drives. *app.Pair satisfies it.
type Panels interface {
	sharedobs.ReadinessChecker
	SelectMetric(ctx context.Context, side string, m domain.Metric) error
	SelectYear(ctx context.Context, side string, year int) error
	Hover(ctx context.Context, side, region string, pointer scale.Point) error
	PointerMove(ctx context.Context, side string, pointer scale.Point) error
	HoverEnd(ctx context.Context, side string) error
	Frame(ctx context.Context, side string) (panel.Frame, error)
	Frames(ctx context.Context) (left, right panel.Frame, tip panel.TooltipView, err error)
	Tooltip(ctx context.Context) (panel.TooltipView, error)
	Resize(ctx context.Context, width, height int) error
}

// Server exposes the comparison page, the panel API, and the health,
// readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	panels     Panels
	title      string
	logger     *slog.Logger
}

// NewServer creates an HTTP server routing to panels.
func NewServer(addr string, panels Panels, logger *slog.Logger) *Server {
	s := &Server{
		panels: panels,
		title:  "Klimavergleich",
		logger: logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(panels)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/panels/{side}.svg", s.handleSVG).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/panels/{side}", s.handleFrame).Methods(http.MethodGet)
	api.HandleFunc("/panels/{side}/metric", s.handleSelectMetric).Methods(http.MethodPost)
	api.HandleFunc("/panels/{side}/year", s.handleSelectYear).Methods(http.MethodPost)
	api.HandleFunc("/panels/{side}/hover", s.handleHover).Methods(http.MethodPost)
	api.HandleFunc("/panels/{side}/move", s.handleMove).Methods(http.MethodPost)
	api.HandleFunc("/panels/{side}/hover/end", s.handleHoverEnd).Methods(http.MethodPost)
	api.HandleFunc("/tooltip", s.handleTooltip).Methods(http.MethodGet)
	api.HandleFunc("/viewport", s.handleResize).Methods(http.MethodPost)

	var h http.Handler = r
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.CompressHandler(h)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// WithAccessLog wraps the handler with an Apache combined access log.
func (s *Server) WithAccessLog() *Server {
	s.httpServer.Handler = handlers.CombinedLoggingHandler(os.Stdout, s.httpServer.Handler)
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

type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("http handler panic", "panic", v)
}
