package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/polinaozhigova/eqmon-be/internal/api/handlers"
	"github.com/polinaozhigova/eqmon-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(uploadService services.UploadServiceProvider, userService services.UserServiceProvider, eventService services.EventServiceProvider, uploadDir string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(uploadService)
	userHandler := handlers.NewUserHandler(userService)
	eventHandler := handlers.NewEventHandler(eventService)
	healthHandler := handlers.NewHealthHandler(uploadDir)

	// Greeting endpoints kept from the first iteration of the service
	r.Get("/", handlers.Index)
	r.Get("/hello", handlers.Hello)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", uploadHandler.Upload)
		r.Post("/users", userHandler.Create)
		r.Get("/search_by_date", uploadHandler.SearchByDate)
		r.Get("/latest_data", uploadHandler.LatestData)
		r.Get("/events", eventHandler.GetRecent)
		r.Get("/health", healthHandler.Status)
	})

	return r
}
