package rest

import (
	"net/http"

	"audiolytics/application/ports"
	"audiolytics/application/services"
	"audiolytics/domain/core/entities"
	"audiolytics/infrastructure/config"
	"audiolytics/interfaces/http/rest/handlers"
	"audiolytics/interfaces/http/rest/middleware"
	"audiolytics/pkg/common"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	simulation *services.SimulationService
	repository ports.EventRepository
	users      []*entities.User
	books      []*entities.AudioBook
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	simulation *services.SimulationService,
	repository ports.EventRepository,
	users []*entities.User,
	books []*entities.AudioBook,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		simulation: simulation,
		repository: repository,
		users:      users,
		books:      books,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		simulationHandler := handlers.NewSimulationHandler(rt.simulation, rt.logger)
		r.Post("/simulations", simulationHandler.GenerateEvents)
		r.Get("/events/stream", simulationHandler.StreamEvents)

		populationHandler := handlers.NewPopulationHandler(rt.users, rt.books, rt.logger)
		r.Get("/users", populationHandler.ListUsers)
		r.Get("/books", populationHandler.ListBooks)

		// Read side over the stored events
		analyticsHandler := handlers.NewAnalyticsHandler(rt.repository, rt.logger)
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/users/{userID}/events", analyticsHandler.GetUserEvents)
			r.Get("/books/{bookID}/events", analyticsHandler.GetBookEvents)
		})
	})

	return router
}

// healthCheck reports process liveness
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports whether the simulator is ready to serve
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if rt.simulation == nil || len(rt.users) == 0 || len(rt.books) == 0 {
		common.RespondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "population not initialized")
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
