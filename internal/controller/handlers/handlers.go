// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"storeplane/internal/apierr"
	"storeplane/internal/engine"
	"storeplane/internal/logger"
	"storeplane/internal/provisioner"
	"storeplane/internal/store"
	"storeplane/pkg/api"
)

// detachedContext returns a background context for fire-and-forget
// workflows spawned from a request handler: they must outlive the request
// that triggered them, so they cannot inherit the request's context.
func detachedContext() context.Context {
	return context.Background()
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	registry   store.Registry
	audit      store.AuditLog
	engines    *engine.Registry
	provision  *provisioner.Provisioner
	maxStores  int
	nodeEnv    string
	production bool
	log        *slog.Logger
}

// New creates a new Handlers instance. nodeEnv is the raw NODE_ENV value
// ("production" or "development"); it governs error-response verbosity and
// is echoed back by the health endpoint.
func New(registry store.Registry, audit store.AuditLog, engines *engine.Registry, prov *provisioner.Provisioner, maxStores int, nodeEnv string, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{
		registry:   registry,
		audit:      audit,
		engines:    engines,
		provision:  prov,
		maxStores:  maxStores,
		nodeEnv:    nodeEnv,
		production: nodeEnv == "production",
		log:        log,
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError renders err as the standard error envelope. Operational errors
// (*apierr.Error) surface their stable code and message. Anything else is
// treated as a programmer error: it always maps to INTERNAL_SERVER_ERROR,
// and only in non-production is the raw message and stack included.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if apiErr, ok := err.(*apierr.Error); ok {
		h.respondJSON(w, apiErr.StatusCode, api.ErrorResponse{
			Error: api.ErrorBody{Code: apiErr.Code, Message: apiErr.Message},
		})
		return
	}

	logger.FromContext(r.Context(), h.log).Error("unhandled error", "err", err)
	body := api.ErrorBody{Code: apierr.CodeInternalServerError, Message: "An unexpected error occurred"}
	if !h.production {
		body.Message = err.Error()
		body.Stack = string(debug.Stack())
	}
	h.respondJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: body})
}

func toStoreResponse(s *store.Store) api.StoreResponse {
	return api.StoreResponse{
		ID:           s.ID,
		Name:         s.Name,
		Engine:       string(s.Engine),
		Status:       string(s.Status),
		StoreURL:     s.StoreURL,
		AdminURL:     s.AdminURL,
		ErrorMessage: s.ErrorMessage,
		Namespace:    s.Namespace,
		HelmRelease:  s.HelmRelease,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toAuditResponse(e *store.AuditEntry) api.AuditEntryResponse {
	return api.AuditEntryResponse{
		ID:        e.ID,
		StoreID:   e.StoreID,
		Action:    string(e.Action),
		Details:   e.Details,
		CreatedAt: e.CreatedAt,
	}
}
