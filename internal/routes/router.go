package routes

import (
	"net/http"
	"time"

	"communa/tribune/internal/api"
	"communa/tribune/internal/db"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/metrics"
	"communa/tribune/internal/middleware"
	"communa/tribune/internal/workers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func RegisterRoutes(upSince time.Time) http.Handler {

	r := chi.NewRouter()

	metricsReg := metrics.Default()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// health check stays unauthenticated; /metrics is mounted outside
	// the router (see cmd/server/main.go)
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, deps.Services.Cache, upSince))

	workers.InitWorkers(deps.FloodWindow, deps.SpamWindow, deps.Repo.Ranking, metricsReg)

	RegisterAPIRoutes(r, deps)

	return r
}
