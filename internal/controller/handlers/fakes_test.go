package handlers

import (
	"context"
	"errors"
	"sync"

	"storeplane/internal/clusterinspect"
	"storeplane/internal/store"
)

// fakeRegistry is an in-memory store.Registry for handler tests.
type fakeRegistry struct {
	mu        sync.Mutex
	stores    map[string]*store.Store
	createErr error
	pingErr   error
}

func newFakeRegistry(seed ...*store.Store) *fakeRegistry {
	r := &fakeRegistry{stores: make(map[string]*store.Store)}
	for _, s := range seed {
		r.stores[s.ID] = s
	}
	return r
}

func (r *fakeRegistry) Create(ctx context.Context, fields store.CreateFields) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	s := &store.Store{ID: fields.ID, Name: fields.Name, Engine: fields.Engine, Status: store.StatusQueued, Namespace: fields.ID, HelmRelease: fields.ID}
	r.stores[s.ID] = s
	return s, nil
}

func (r *fakeRegistry) Get(ctx context.Context, id string) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeRegistry) List(ctx context.Context) ([]*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*store.Store, 0, len(r.stores))
	for _, s := range r.stores {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRegistry) ActiveCount(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.stores {
		if store.IsActive(s.Status) {
			n++
		}
	}
	return n, nil
}

func (r *fakeRegistry) UpdateStatus(ctx context.Context, id string, status store.Status, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return store.ErrNotFound
	}
	s.Status = status
	s.ErrorMessage = errMsg
	return nil
}

func (r *fakeRegistry) MarkReady(ctx context.Context, id, storeURL, adminURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return store.ErrNotFound
	}
	s.Status = store.StatusReady
	s.StoreURL = &storeURL
	s.AdminURL = &adminURL
	return nil
}

func (r *fakeRegistry) MarkDeleted(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return store.ErrNotFound
	}
	s.Status = store.StatusDeleted
	return nil
}

func (r *fakeRegistry) RecentFailures(ctx context.Context, n int) ([]*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*store.Store
	for _, s := range r.stores {
		if s.Status == store.StatusFailed {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRegistry) StatusHistogram(ctx context.Context) (store.StatusHistogram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hist := store.StatusHistogram{}
	for _, s := range r.stores {
		hist[s.Status]++
	}
	return hist, nil
}

func (r *fakeRegistry) ProvisioningStats(ctx context.Context) (*store.ProvisioningStats, error) {
	return &store.ProvisioningStats{}, nil
}

func (r *fakeRegistry) Ping(ctx context.Context) error { return r.pingErr }

// fakeAudit is an in-memory store.AuditLog for handler tests.
type fakeAudit struct {
	mu        sync.Mutex
	entries   []*store.AuditEntry
	lastLimit int
}

func (a *fakeAudit) Append(ctx context.Context, storeID *string, action store.AuditAction, details string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, &store.AuditEntry{StoreID: storeID, Action: action, Details: details})
	return nil
}

func (a *fakeAudit) List(ctx context.Context, limit int) ([]*store.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastLimit = limit
	return a.entries, nil
}

func (a *fakeAudit) ListFor(ctx context.Context, storeID string) ([]*store.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*store.AuditEntry
	for _, e := range a.entries {
		if e.StoreID != nil && *e.StoreID == storeID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeDeployer is a no-op chartdeploy.Deployer for handler tests, where the
// background provisioning workflow is not the thing under test.
type fakeDeployer struct{}

func (fakeDeployer) Install(ctx context.Context, release, namespace, chartPath string, values map[string]string) error {
	return nil
}
func (fakeDeployer) Uninstall(ctx context.Context, release, namespace string) error { return nil }
func (fakeDeployer) ReleaseExists(ctx context.Context, release, namespace string) (bool, error) {
	return true, nil
}

// fakeInspector is a no-op clusterinspect.Inspector for handler tests.
type fakeInspector struct{}

func (fakeInspector) NamespaceExists(ctx context.Context, ns string) (bool, error) { return true, nil }
func (fakeInspector) DeleteNamespace(ctx context.Context, ns string) error         { return nil }
func (fakeInspector) PodStatuses(ctx context.Context, ns string) ([]clusterinspect.PodStatus, error) {
	return nil, nil
}
func (fakeInspector) AllPodsReady(ctx context.Context, ns string) (bool, error) { return true, nil }
func (fakeInspector) AnyPodFailed(ctx context.Context, ns string) (bool, string, string, error) {
	return false, "", "", nil
}
func (fakeInspector) Events(ctx context.Context, ns string, limit int) ([]string, error) {
	return nil, nil
}

var errBoom = errors.New("boom")
