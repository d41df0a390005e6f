package clusterinspect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// KubernetesInspector implements Inspector using a real cluster client.
type KubernetesInspector struct {
	clientset kubernetes.Interface
	// Timeout bounds a single cluster call. Zero means 30s.
	Timeout time.Duration
}

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	return os.Getenv("USERPROFILE")
}

// NewKubernetesInspector builds an Inspector against the running cluster,
// preferring in-cluster config and falling back to kubeconfig for local
// development against a remote or kind cluster.
func NewKubernetesInspector(kubeconfigPath string) (*KubernetesInspector, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		if kubeconfigPath == "" {
			kubeconfigPath = filepath.Join(homeDir(), ".kube", "config")
		}
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfigPath)
		if err != nil {
			return nil, fmt.Errorf("build kubernetes config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("create kubernetes clientset: %w", err)
	}

	return &KubernetesInspector{clientset: clientset, Timeout: 30 * time.Second}, nil
}

func (k *KubernetesInspector) timeout() time.Duration {
	if k.Timeout <= 0 {
		return 30 * time.Second
	}
	return k.Timeout
}

func (k *KubernetesInspector) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, k.timeout())
}

func (k *KubernetesInspector) NamespaceExists(parent context.Context, namespace string) (bool, error) {
	ctx, cancel := k.ctx(parent)
	defer cancel()

	_, err := k.clientset.CoreV1().Namespaces().Get(ctx, namespace, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get namespace %s: %w", namespace, err)
	}
	return true, nil
}

func (k *KubernetesInspector) DeleteNamespace(parent context.Context, namespace string) error {
	ctx, cancel := k.ctx(parent)
	defer cancel()

	err := k.clientset.CoreV1().Namespaces().Delete(ctx, namespace, metav1.DeleteOptions{})
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete namespace %s: %w", namespace, err)
	}
	return nil
}

func (k *KubernetesInspector) PodStatuses(parent context.Context, namespace string) ([]PodStatus, error) {
	ctx, cancel := k.ctx(parent)
	defer cancel()

	pods, err := k.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pods in %s: %w", namespace, err)
	}

	statuses := make([]PodStatus, 0, len(pods.Items))
	for _, p := range pods.Items {
		statuses = append(statuses, podStatus(&p))
	}
	return statuses, nil
}

// maxRestarts is the fail-fast threshold: a pod with more restarts than
// this is treated as crash-looping rather than transiently recovering.
const maxRestarts = 5

func podStatus(p *corev1.Pod) PodStatus {
	s := PodStatus{
		Name:  p.Name,
		Phase: string(p.Status.Phase),
	}

	for _, cond := range p.Status.Conditions {
		if cond.Type == corev1.PodReady {
			s.Ready = cond.Status == corev1.ConditionTrue
		}
	}

	var maxPodRestarts int32
	for _, cs := range p.Status.ContainerStatuses {
		if cs.RestartCount > maxPodRestarts {
			maxPodRestarts = cs.RestartCount
		}
		if cs.State.Waiting != nil {
			s.Container = cs.Name
			s.Reason = cs.State.Waiting.Reason
			s.Message = cs.State.Waiting.Message
		}
		if cs.State.Terminated != nil && cs.State.Terminated.ExitCode != 0 {
			s.Container = cs.Name
			s.Reason = cs.State.Terminated.Reason
			s.Message = cs.State.Terminated.Message
		}
	}
	s.RestartCount = maxPodRestarts

	return s
}

// AllPodsReady implements the "Ready" definition in the glossary: at least
// one non-Succeeded pod exists and every non-Succeeded pod is Ready=True.
func (k *KubernetesInspector) AllPodsReady(parent context.Context, namespace string) (bool, error) {
	statuses, err := k.PodStatuses(parent, namespace)
	if err != nil {
		return false, err
	}

	sawLive := false
	for _, s := range statuses {
		if s.Phase == string(corev1.PodSucceeded) {
			continue
		}
		sawLive = true
		if !s.Ready {
			return false, nil
		}
	}
	return sawLive, nil
}

func (k *KubernetesInspector) AnyPodFailed(parent context.Context, namespace string) (bool, string, string, error) {
	statuses, err := k.PodStatuses(parent, namespace)
	if err != nil {
		return false, "", "", err
	}
	for _, s := range statuses {
		if s.Phase == string(corev1.PodFailed) {
			reason := s.Reason
			if reason == "" {
				reason = "pod entered Failed phase"
			}
			return true, s.Name, reason, nil
		}
		if s.RestartCount > maxRestarts {
			return true, s.Name, fmt.Sprintf("restarted %d times (CrashLoopBackOff)", s.RestartCount), nil
		}
	}
	return false, "", "", nil
}

func (k *KubernetesInspector) Events(parent context.Context, namespace string, limit int) ([]string, error) {
	ctx, cancel := k.ctx(parent)
	defer cancel()

	events, err := k.clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list events in %s: %w", namespace, err)
	}

	items := events.Items
	sort.Slice(items, func(i, j int) bool {
		return items[i].LastTimestamp.After(items[j].LastTimestamp.Time)
	})

	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	out := make([]string, 0, limit)
	for _, e := range items[:limit] {
		out = append(out, fmt.Sprintf("%s %s/%s: %s", e.Type, e.InvolvedObject.Kind, e.InvolvedObject.Name, e.Message))
	}
	return out, nil
}
