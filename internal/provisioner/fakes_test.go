package provisioner

import (
	"context"
	"errors"
	"sync"

	"storeplane/internal/clusterinspect"
	"storeplane/internal/store"
)

var errNotFound = errors.New("store not found")

// fakeRegistry is an in-memory store.Registry for workflow tests.
type fakeRegistry struct {
	mu     sync.Mutex
	stores map[string]*store.Store
}

func newFakeRegistry(seed *store.Store) *fakeRegistry {
	r := &fakeRegistry{stores: make(map[string]*store.Store)}
	if seed != nil {
		r.stores[seed.ID] = seed
	}
	return r
}

func (r *fakeRegistry) Create(ctx context.Context, fields store.CreateFields) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &store.Store{ID: fields.ID, Name: fields.Name, Engine: fields.Engine, Status: store.StatusQueued, Namespace: fields.ID, HelmRelease: fields.ID}
	r.stores[s.ID] = s
	return s, nil
}

func (r *fakeRegistry) Get(ctx context.Context, id string) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, errNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fakeRegistry) List(ctx context.Context) ([]*store.Store, error) { return nil, nil }

func (r *fakeRegistry) ActiveCount(ctx context.Context) (int64, error) { return 0, nil }

func (r *fakeRegistry) UpdateStatus(ctx context.Context, id string, status store.Status, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return errNotFound
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
		return errNotFound
	}
	s.Status = store.StatusReady
	s.StoreURL = &storeURL
	s.AdminURL = &adminURL
	s.ErrorMessage = nil
	return nil
}

func (r *fakeRegistry) MarkDeleted(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return errNotFound
	}
	s.Status = store.StatusDeleted
	return nil
}

func (r *fakeRegistry) RecentFailures(ctx context.Context, n int) ([]*store.Store, error) { return nil, nil }
func (r *fakeRegistry) StatusHistogram(ctx context.Context) (store.StatusHistogram, error) {
	return nil, nil
}
func (r *fakeRegistry) ProvisioningStats(ctx context.Context) (*store.ProvisioningStats, error) {
	return nil, nil
}
func (r *fakeRegistry) Ping(ctx context.Context) error { return nil }

func (r *fakeRegistry) snapshot(id string) *store.Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil
	}
	clone := *s
	return &clone
}

// fakeDeployer is a scriptable chartdeploy.Deployer.
type fakeDeployer struct {
	mu           sync.Mutex
	installCount int
	installErr   error
	uninstallErr error
	exists       bool
}

func (d *fakeDeployer) Install(ctx context.Context, release, namespace, chartPath string, values map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.installCount++
	if d.installErr != nil {
		return d.installErr
	}
	d.exists = true
	return nil
}

func (d *fakeDeployer) Uninstall(ctx context.Context, release, namespace string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.exists = false
	return d.uninstallErr
}

func (d *fakeDeployer) ReleaseExists(ctx context.Context, release, namespace string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exists, nil
}

// fakeInspector is a scriptable clusterinspect.Inspector.
type fakeInspector struct {
	mu             sync.Mutex
	readyAfter     int // AllPodsReady returns true starting at this call count
	calls          int
	failedPod      string
	failedReason   string
	deleteNSErr    error
	namespaceExist bool
}

func (i *fakeInspector) NamespaceExists(ctx context.Context, namespace string) (bool, error) {
	return i.namespaceExist, nil
}

func (i *fakeInspector) DeleteNamespace(ctx context.Context, namespace string) error {
	i.namespaceExist = false
	return i.deleteNSErr
}

func (i *fakeInspector) PodStatuses(ctx context.Context, namespace string) ([]clusterinspect.PodStatus, error) {
	return nil, nil
}

func (i *fakeInspector) AllPodsReady(ctx context.Context, namespace string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.calls++
	return i.readyAfter > 0 && i.calls >= i.readyAfter, nil
}

func (i *fakeInspector) AnyPodFailed(ctx context.Context, namespace string) (bool, string, string, error) {
	if i.failedPod != "" {
		return true, i.failedPod, i.failedReason, nil
	}
	return false, "", "", nil
}

func (i *fakeInspector) Events(ctx context.Context, namespace string, limit int) ([]string, error) {
	return []string{"Warning BackOff: back-off restarting failed container"}, nil
}

