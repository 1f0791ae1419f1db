package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vidstream/vidstream-api/internal/api/handlers"
	"github.com/vidstream/vidstream-api/internal/api/middleware"
	"github.com/vidstream/vidstream-api/internal/api/response"
	"github.com/vidstream/vidstream-api/internal/config"
	"github.com/vidstream/vidstream-api/internal/observability"
	"github.com/vidstream/vidstream-api/internal/service"
	"github.com/vidstream/vidstream-api/internal/upload"
)

// StaticDir is served under /static/.
const StaticDir = "./public"

func NewRouter(services *service.Services, cfg *config.Config, metrics *observability.Metrics, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(StaticDir))))

	stager := upload.NewStager(cfg.UploadTempDir, maxUploadFile)
	authHandler := handlers.NewAuthHandler(services.Auth, stager, cfg, log)
	profileHandler := handlers.NewProfileHandler(services.Profile, stager, log)
	requireUser := middleware.Auth(services.Auth, log)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh-token", authHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Post("/logout", authHandler.Logout)
			r.Post("/change-password", authHandler.ChangePassword)
			r.Get("/current-user", profileHandler.CurrentUser)
			r.Patch("/update-account", profileHandler.UpdateAccount)
			r.Patch("/avatar", profileHandler.UpdateAvatar)
			r.Patch("/cover-image", profileHandler.UpdateCoverImage)
			r.Get("/history", profileHandler.WatchHistory)
			r.Post("/history/{videoId}", profileHandler.RecordWatch)
		})
	})

	return r
}

// maxUploadFile caps a single staged image.
const maxUploadFile = 5 << 20
