package api

import (
	"net/http"
	"strconv"

	"infinite-experiment/wayfinder/internal/logging"
	"infinite-experiment/wayfinder/internal/models/dtos/responses"
	"infinite-experiment/wayfinder/internal/resolver"
)

// ClearLocationCache handles DELETE /api/v1/admin/locations/cache
func (h *Handlers) ClearLocationCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := h.deps.Locations.ClearCache()
		logging.Info("In-process location cache cleared", "entries", n)
		respondWithSuccess(w, http.StatusOK, &responses.CacheClearResponse{Tier: "memory", Removed: int64(n)})
	}
}

// ClearDurableCache handles DELETE /api/v1/admin/locations/durable-cache?olderThanDays=
func (h *Handlers) ClearDurableCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := h.deps.RetentionDays
		if days <= 0 {
			days = resolver.DefaultRetentionDays
		}
		if raw := r.URL.Query().Get("olderThanDays"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				respondWithError(w, http.StatusBadRequest, "olderThanDays must be a positive integer")
				return
			}
			days = n
		}

		removed, err := h.deps.Locations.ClearDBCache(r.Context(), days)
		if err != nil {
			logging.Error("Durable cache purge failed", "older_than_days", days, "error", err)
			respondWithError(w, http.StatusServiceUnavailable, "Failed to purge durable cache: "+err.Error())
			return
		}
		if h.deps.Metrics != nil {
			h.deps.Metrics.CacheSweepDeletedTotal.Add(float64(removed))
		}

		logging.Info("Durable location cache purged", "older_than_days", days, "removed", removed)
		respondWithSuccess(w, http.StatusOK, &responses.CacheClearResponse{
			Tier:          "durable",
			Removed:       removed,
			OlderThanDays: days,
		})
	}
}
