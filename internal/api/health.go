package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"infinite-experiment/wayfinder/internal/models/dtos/responses"
)

const healthPingTimeout = 2 * time.Second

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Reports the SQL store and, when configured, the Redis durable cache.
// @Tags Misc
// @Success 200 {object} responses.HealthCheckResponse
// @Failure 503 {object} responses.HealthCheckResponse
// @Router /healthCheck [get]
func HealthCheckHandler(db *sqlx.DB, rdb *redis.Client, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()

		services := make(map[string]responses.ServiceStatus)

		// Check the SQL store
		dbStatus := "ok"
		dbDetails := db.DriverName() + " connected"
		if err := db.PingContext(ctx); err != nil {
			dbStatus = "down"
			dbDetails = err.Error()
		}
		services["database"] = responses.ServiceStatus{
			Status:  dbStatus,
			Details: dbDetails,
		}

		if rdb != nil {
			redisStatus := "ok"
			redisDetails := "Redis connected"
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = "down"
				redisDetails = err.Error()
			}
			services["redis"] = responses.ServiceStatus{
				Status:  redisStatus,
				Details: redisDetails,
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

		resp := responses.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince.UTC(),
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		if overallStatus != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
