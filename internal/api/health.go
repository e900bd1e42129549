package api

import (
	"encoding/json"
	"net/http"
	"time"

	"communa/tribune/internal/common"
	"communa/tribune/internal/models/entities"

	"github.com/jmoiron/sqlx"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(db *sqlx.DB, cache common.CacheInterface, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		services := make(map[string]entities.ServiceStatus)

		// Check postgres
		pgstatus := "ok"
		pgDetails := "Postgres Connected"
		if err := db.Ping(); err != nil {
			pgstatus = "down"
			pgDetails = err.Error()
		}
		services["postgres"] = entities.ServiceStatus{
			Status:  pgstatus,
			Details: pgDetails,
		}

		// Check cache backend with a write/read round trip
		if cache != nil {
			cacheStatus := "ok"
			cacheDetails := "Cache responding"
			cache.Set("health_probe", "ok", 5*time.Second)
			if _, found := cache.Get("health_probe"); !found {
				cacheStatus = "down"
				cacheDetails = "Cache round trip failed"
			}
			services["cache"] = entities.ServiceStatus{
				Status:  cacheStatus,
				Details: cacheDetails,
			}
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		now := time.Now()
		uptime := now.Sub(upSince).Round(time.Second).String()

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
