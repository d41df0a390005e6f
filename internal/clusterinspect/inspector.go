// Package clusterinspect queries store namespaces for pod readiness and
// lifecycle events without creating or mutating workloads itself — those
// are owned by the Helm chart installed by chartdeploy.
package clusterinspect

import "context"

// PodStatus summarizes one pod's phase for readiness evaluation.
type PodStatus struct {
	Name         string
	Phase        string
	Ready        bool
	RestartCount int32
	Reason       string
	Message      string
	Container    string
}

// Inspector reads namespace/pod/event state for a store's namespace.
type Inspector interface {
	// NamespaceExists reports whether a namespace is present in the cluster.
	NamespaceExists(ctx context.Context, namespace string) (bool, error)

	// DeleteNamespace deletes a namespace. Deleting an absent namespace is
	// not an error.
	DeleteNamespace(ctx context.Context, namespace string) error

	// PodStatuses lists the pods in a namespace with their current phase.
	PodStatuses(ctx context.Context, namespace string) ([]PodStatus, error)

	// AllPodsReady reports whether at least one non-Succeeded pod exists in
	// the namespace and every non-Succeeded pod has condition Ready=True.
	// An empty or all-Succeeded namespace is not ready.
	AllPodsReady(ctx context.Context, namespace string) (bool, error)

	// AnyPodFailed reports whether any pod in the namespace has entered a
	// terminal Failed phase or exceeded a restart-count threshold, along
	// with the pod name and a human-readable reason.
	AnyPodFailed(ctx context.Context, namespace string) (failed bool, podName, reason string, err error)

	// Events returns the most recent warning/normal events in a namespace,
	// newest first, for diagnostics surfaced on a failed store.
	Events(ctx context.Context, namespace string, limit int) ([]string, error)
}
