package api

import (
	"net/http"

	"infinite-experiment/wayfinder/internal/common"
	"infinite-experiment/wayfinder/internal/logging"
	"infinite-experiment/wayfinder/internal/models/dtos/responses"
)

// SyncAirports handles POST /api/v1/admin/data/sync-airports
// Replaces the location dataset from AIRPORT_DATASET_URL, or from the
// embedded dataset when no URL is configured.
func (h *Handlers) SyncAirports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			summary common.ImportSummary
			err     error
			source  = "embedded"
		)
		if h.deps.DatasetURL != "" {
			source = h.deps.DatasetURL
			summary, err = h.deps.Importer.LoadFromURL(r.Context(), h.deps.DatasetURL)
		} else {
			summary, err = h.deps.Importer.LoadEmbedded(r.Context())
		}
		h.countImport(err)
		if err != nil {
			logging.Error("Location dataset sync failed", "source", source, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to sync airports: "+err.Error())
			return
		}

		// The dataset changed, so anything cached in-process may be stale.
		purged := h.deps.Locations.ClearCache()

		stats, err := h.deps.Importer.GetStats(r.Context())
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to get stats: "+err.Error())
			return
		}

		logging.Info("Location dataset synced",
			"source", source,
			"airports", summary.Airports,
			"metros", summary.Metros,
			"aliases", summary.Aliases,
			"skipped", summary.Skipped,
			"memory_entries_purged", purged,
		)
		respondWithSuccess(w, http.StatusOK, &responses.DatasetSyncResponse{
			Source:   source,
			Metros:   summary.Metros,
			Airports: summary.Airports,
			Aliases:  summary.Aliases,
			Skipped:  summary.Skipped,
			Stats:    stats,
		})
	}
}

func (h *Handlers) countImport(err error) {
	if h.deps.Metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	h.deps.Metrics.DatasetImportsTotal.WithLabelValues(result).Inc()
}
