package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/pipeline"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// DefaultMaxSize bounds the size parameter when no limit is configured.
const DefaultMaxSize = 40

// Server serves the search API.
type Server struct {
	search  pipeline.Handler
	health  *healthuc.Service
	logger  *zap.Logger
	maxSize int
}

// NewServer creates an HTTP API server. search is the full search pipeline.
func NewServer(search pipeline.Handler, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:  search,
		health:  health,
		logger:  logger,
		maxSize: DefaultMaxSize,
	}
}

// WithMaxSize overrides the upper bound of the size parameter.
func (s *Server) WithMaxSize(n int) *Server {
	if n > 0 {
		s.maxSize = n
	}
	return s
}

// Routes registers the API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/v1/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Search handles GET /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	clean, err := cleanSearchParams(r.URL.Query(), s.maxSize)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParameter) {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
		return
	}

	req := pipeline.NewRequest(r.URL.Path, clean)
	req.DoNotTrack = doNotTrack(r)
	if clean.Bool(ParamDebug) {
		req.EnableDebug()
	}

	s.search.Serve(r.Context(), req)

	status := http.StatusOK
	if len(req.Response.Data) == 0 && len(req.Errors) > 0 {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, searchResponseFrom(req))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func doNotTrack(r *http.Request) bool {
	return r.Header.Get("DNT") == "1" || r.Header.Get("X-Do-Not-Track") == "1"
}
