package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storeplane/internal/apierr"
	"storeplane/internal/provisioner"
	"storeplane/internal/store"
	"storeplane/pkg/api"

	"github.com/google/uuid"
)

// ListStores handles GET /api/stores.
func (h *Handlers) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.registry.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := api.ListStoresResponse{Stores: make([]api.StoreResponse, 0, len(stores))}
	for _, s := range stores {
		resp.Stores = append(resp.Stores, toStoreResponse(s))
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// GetStore handles GET /api/stores/{id}.
func (h *Handlers) GetStore(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s, err := h.registry.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, r, apierr.NotFound(id))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, api.GetStoreResponse{Store: toStoreResponse(s)})
}

// CreateStore handles POST /api/stores.
func (h *Handlers) CreateStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, apierr.InvalidJSON())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.writeError(w, r, apierr.MissingStoreName())
		return
	}
	if len(name) < 2 || len(name) > 100 {
		h.writeError(w, r, apierr.InvalidStoreName())
		return
	}

	engineTag := strings.TrimSpace(req.Engine)
	if engineTag == "" {
		engineTag = string(store.EngineWooCommerce)
	}
	eng, ok := h.engines.Resolve(engineTag)
	if !ok {
		h.writeError(w, r, apierr.InvalidEngine(engineTag))
		return
	}
	if res := eng.Validate(); !res.Valid {
		h.writeError(w, r, apierr.EngineUnavailable(res.Error))
		return
	}

	active, err := h.registry.ActiveCount(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if active >= int64(h.maxStores) {
		h.writeError(w, r, apierr.QuotaExceeded())
		return
	}

	id := newStoreID()
	s, err := h.registry.Create(ctx, store.CreateFields{ID: id, Name: name, Engine: store.Engine(engineTag)})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	go h.provision.Provision(detachedContext(), s.ID)

	h.respondJSON(w, http.StatusCreated, api.CreateStoreResponse{Store: toStoreResponse(s)})
}

// DeleteStore handles DELETE /api/stores/{id}.
func (h *Handlers) DeleteStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	s, err := h.registry.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, r, apierr.NotFound(id))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if !deletable(s.Status) {
		h.writeError(w, r, apierr.InvalidStateTransition("store cannot be deleted from status "+string(s.Status)))
		return
	}

	if err := h.provision.Delete(detachedContext(), id); err != nil {
		if provisioner.IsOperationInProgress(err) {
			h.writeError(w, r, apierr.OperationInProgress())
			return
		}
		h.writeError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, api.OperationAcceptedResponse{
		Message: "store deletion started",
		StoreID: id,
	})
}

// RetryStore handles POST /api/stores/{id}/retry.
func (h *Handlers) RetryStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	s, err := h.registry.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, r, apierr.NotFound(id))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if s.Status != store.StatusFailed {
		h.writeError(w, r, apierr.InvalidStateTransition("retry is only valid from status failed"))
		return
	}
	if _, inProgress := h.provision.OperationStatus(id); inProgress {
		h.writeError(w, r, apierr.OperationInProgress())
		return
	}

	if h.audit != nil {
		_ = h.audit.Append(ctx, &id, store.AuditRetry, "retry requested")
	}

	go h.provision.Provision(detachedContext(), id)

	h.respondJSON(w, http.StatusAccepted, api.OperationAcceptedResponse{
		Message: "store retry started",
		StoreID: id,
	})
}

// deletable reports whether a store in the given status may accept a
// delete request: every status except the terminal "deleted" and the
// already-in-flight "deleting".
func deletable(s store.Status) bool {
	switch s {
	case store.StatusReady, store.StatusFailed, store.StatusQueued, store.StatusProvisioning:
		return true
	default:
		return false
	}
}

func newStoreID() string {
	return "store-" + uuid.New().String()[:8]
}
