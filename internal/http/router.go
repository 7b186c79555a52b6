package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/vision-api/internal/auth"
	"github.com/redmonkez12/vision-api/internal/config"
	"github.com/redmonkez12/vision-api/internal/detection"
	"github.com/redmonkez12/vision-api/internal/httputil"
	"github.com/redmonkez12/vision-api/internal/logging"
	"github.com/redmonkez12/vision-api/internal/qa"
)

// Handlers groups the endpoint handlers mounted by the router
type Handlers struct {
	Auth      *auth.Handler
	Detection *detection.Handler
	QA        *qa.Handler
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Auth.Signup)
		r.Post("/login", h.Auth.Login)

		r.With(authMiddleware.RequireAuth).Get("/verify", h.Auth.Verify)
	})

	// Protected routes. The gate runs before any external API is called.
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.With(middleware.RequestSize(cfg.Server.MaxUploadBytes)).Post("/detect", h.Detection.Detect)
		r.Post("/qa", h.QA.Ask)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, HealthResponse{Status: "ok", Message: "vision api is running"}, http.StatusOK)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.RespondErrorWithCode(w, "Endpoint not found", httputil.CodeNotFound, http.StatusNotFound)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.RespondErrorWithCode(w, "Method not allowed", httputil.CodeMethodNotAllowed, http.StatusMethodNotAllowed)
}
