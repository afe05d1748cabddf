package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sewasangat/import-service/internal/core/domain"
	"github.com/sewasangat/import-service/internal/core/services/importer"
	"github.com/sewasangat/import-service/internal/infrastructure/parsers"
	apperrors "github.com/sewasangat/import-service/internal/pkg/errors"
)

// ImportPipeline is the slice of the import service the handlers consume
type ImportPipeline interface {
	Submit(ctx context.Context, input importer.SubmitInput) (*importer.SubmitResult, error)
	Poll(ctx context.Context, jobID string) (domain.JobSnapshot, error)
}

// BadgeIssuer allocates the next badge number for a pattern
type BadgeIssuer interface {
	Allocate(ctx context.Context, pattern string) (string, error)
}

// HealthChecker reports a component's health as a flat status map
type HealthChecker interface {
	Health(ctx context.Context) map[string]interface{}
}

// Server holds the HTTP boundary of the import pipeline
type Server struct {
	pipeline ImportPipeline
	badges   BadgeIssuer
	parsers  *parsers.ParserFactory
	health   map[string]HealthChecker
	logger   *slog.Logger
	router   chi.Router
}

// NewServer wires the routes. badges and health components are optional.
func NewServer(pipeline ImportPipeline, parserFactory *parsers.ParserFactory, badges BadgeIssuer, health map[string]HealthChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		pipeline: pipeline,
		badges:   badges,
		parsers:  parserFactory,
		health:   health,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/imports", s.handleSubmitImport)
		r.Get("/imports/{jobID}", s.handlePollImport)
		if s.badges != nil {
			r.Get("/badges/next", s.handleNextBadge)
		}
	})
	r.Get("/healthz", s.handleHealth)

	s.router = r
	return s
}

// Handler returns the root http handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := make(map[string]interface{}, len(s.health)+1)
	status["status"] = "up"
	for name, checker := range s.health {
		status[name] = checker.Health(r.Context())
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders an AppError when present, a generic 500 otherwise
func writeError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.GetAppError(err); ok {
		writeJSON(w, appErr.StatusCode, map[string]interface{}{"error": appErr})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"error": apperrors.Internal("internal server error"),
	})
}
