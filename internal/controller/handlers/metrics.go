package handlers

import (
	"net/http"

	"storeplane/pkg/api"
)

const recentFailuresCount = 5

// GetMetrics handles GET /api/metrics.
func (h *Handlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hist, err := h.registry.StatusHistogram(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	stats, err := h.registry.ProvisioningStats(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	failures, err := h.registry.RecentFailures(ctx, recentFailuresCount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	byStatus := make(map[string]int64, len(hist))
	var total int64
	for status, count := range hist {
		byStatus[string(status)] = count
		total += count
	}

	recent := make([]api.StoreResponse, 0, len(failures))
	for _, s := range failures {
		recent = append(recent, toStoreResponse(s))
	}

	h.respondJSON(w, http.StatusOK, api.MetricsResponse{
		Stores: api.StoreMetrics{Total: total, ByStatus: byStatus},
		Provisioning: api.ProvisioningMetrics{
			TotalProvisioned:   stats.Count,
			AvgDurationSeconds: stats.AvgDurationSecs,
			MinDurationSeconds: stats.MinDurationSecs,
			MaxDurationSeconds: stats.MaxDurationSecs,
		},
		RecentFailures: recent,
	})
}
