package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/api/docs"
	"github.com/edvin/machines/internal/api/handler"
	mw "github.com/edvin/machines/internal/api/middleware"
	"github.com/edvin/machines/internal/api/response"
	"github.com/edvin/machines/internal/model"
)

// KeyService both authenticates requests and manages keys.
type KeyService interface {
	mw.KeyAuthenticator
	handler.APIKeyService
}

// Services are the domain services the API exposes.
type Services struct {
	Machines    handler.MachineService
	Definitions handler.DefinitionService
	Gate        handler.AccessChecker
	APIKeys     KeyService
	// Ready backs /readyz; nil reports ready unconditionally.
	Ready func(ctx context.Context) error
}

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services Services
}

func NewServer(logger zerolog.Logger, services Services) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger.With().Str("component", "api").Logger(),
		services: services,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// API documentation (no auth required)
	s.router.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(docs.SwaggerInfo.ReadDoc()))
	})
	s.router.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(scalarHTML))
	})

	machine := handler.NewMachine(s.services.Machines, s.services.Gate)
	definition := handler.NewDefinition(s.services.Definitions)
	apiKey := handler.NewAPIKey(s.services.APIKeys)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/machines/ping", machine.Ping)

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(s.services.APIKeys))
			r.Use(mw.RequireScope(model.ScopeMachines))

			r.Post("/machines", machine.Start)
			r.Get("/machines/{challengeID}", machine.Refresh)
			r.Delete("/machines/{challengeID}", machine.Terminate)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireScope(model.ScopeAdmin))

				r.Get("/machines", machine.List)
				r.Delete("/machines", machine.BulkTerminate)

				r.Get("/definitions", definition.List)
				r.Post("/definitions", definition.Create)
				r.Get("/definitions/{challengeID}", definition.Get)
				r.Put("/definitions/{challengeID}", definition.Update)
				r.Delete("/definitions/{challengeID}", definition.Delete)

				r.Get("/api-keys", apiKey.List)
				r.Post("/api-keys", apiKey.Create)
				r.Delete("/api-keys/{id}", apiKey.Revoke)
			})
		})
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.services.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.services.Ready(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			response.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const scalarHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Machines API</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/docs/openapi.json"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`
