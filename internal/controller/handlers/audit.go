package handlers

import (
	"net/http"
	"strconv"

	"storeplane/pkg/api"
)

const defaultAuditLimit = 100

// ListAudit handles GET /api/audit?limit=N.
func (h *Handlers) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}

	entries, err := h.audit.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := api.ListAuditResponse{Audit: make([]api.AuditEntryResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Audit = append(resp.Audit, toAuditResponse(e))
	}
	h.respondJSON(w, http.StatusOK, resp)
}
