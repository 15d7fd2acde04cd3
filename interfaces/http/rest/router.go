package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mathtree-backend/interfaces/http/rest/handlers"
	"mathtree-backend/interfaces/http/rest/middleware"
	"mathtree-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	nodeHandler    *handlers.NodeHandler
	authHandler    *handlers.AuthHandler
	jwtService     *auth.JWTService
	allowedOrigins []string
	logger         *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	nodeHandler *handlers.NodeHandler,
	authHandler *handlers.AuthHandler,
	jwtService *auth.JWTService,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		nodeHandler:    nodeHandler,
		authHandler:    authHandler,
		jwtService:     jwtService,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Setup configures all routes and middleware. Reading the forest or a
// single node is public; creating nodes requires a valid token.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	ipLimiter := auth.NewIPRateLimiter(120)
	authenticate := middleware.Authenticate(rt.jwtService, ipLimiter)

	router.Route("/api/v1", func(r chi.Router) {
		// Account endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.authHandler.Register)
			r.Post("/login", rt.authHandler.Login)
			r.With(authenticate).Get("/me", rt.authHandler.Me)
		})

		// Node endpoints
		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", rt.nodeHandler.ListForest)
			r.Get("/{nodeID}", rt.nodeHandler.GetNode)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", rt.nodeHandler.CreateRootNode)
				r.Post("/{nodeID}/operations", rt.nodeHandler.CreateChildNode)
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
