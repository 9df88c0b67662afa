// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	service "github.com/okian/shoplist/internal/app"
	"github.com/okian/shoplist/internal/domain/model"
	"github.com/okian/shoplist/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, name string) (model.Item, error)
	Update(ctx context.Context, id, name string) (model.Item, error)
	Delete(ctx context.Context, id string) (model.Item, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	itemsHandler  *ItemsHandler

	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.itemsHandler = NewItemsHandler(deps, s.logger)
	return s
}

// Router returns a chi router with middleware and all routes registered.
func (s *Server) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID, Logging(s.logger), Recover(s.logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed)
	})

	s.Register(ctx, r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Get("/items", MetricsMiddleware(s.itemsHandler.HandleList, "items_list"))
	r.Post("/items", MetricsMiddleware(s.itemsHandler.HandleCreate, "items_create"))
	// Missing ids (PUT /items, PUT /items/) land on these routes and resolve to 404.
	r.Put("/items", MetricsMiddleware(s.itemsHandler.HandleUpdate, "items_update"))
	r.Put("/items/", MetricsMiddleware(s.itemsHandler.HandleUpdate, "items_update"))
	r.Put("/items/{id}", MetricsMiddleware(s.itemsHandler.HandleUpdate, "items_update"))
	r.Delete("/items", MetricsMiddleware(s.itemsHandler.HandleDelete, "items_delete"))
	r.Delete("/items/", MetricsMiddleware(s.itemsHandler.HandleDelete, "items_delete"))
	r.Delete("/items/{id}", MetricsMiddleware(s.itemsHandler.HandleDelete, "items_delete"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the canonical error body for status. Causes are logged,
// never returned to the client.
func writeError(w http.ResponseWriter, status int) {
	writeJSON(w, status, errorResponse{Code: errorCode(status), Message: http.StatusText(status)})
}

func errorCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusBadRequest:
		return "bad_request"
	default:
		return "internal_error"
	}
}

// classify maps an error to its HTTP status.
func classify(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		// Bad input and store failures share one class.
		return http.StatusInternalServerError
	}
}

// fail logs err and writes the matching error response.
func fail(l logger.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := classify(err)
	fields := []logger.Field{
		logger.Int("status", status),
		logger.String("request_id", GetRequestID(r.Context())),
		logger.Error(err),
	}
	if status >= http.StatusInternalServerError {
		l.Warn(r.Context(), "request failed", fields...)
	} else {
		l.Debug(r.Context(), "request rejected", fields...)
	}
	writeError(w, status)
}
