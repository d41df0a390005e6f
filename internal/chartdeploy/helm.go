package chartdeploy

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// HelmDeployer implements Deployer by shelling out to the helm binary.
type HelmDeployer struct {
	// Bin is the helm executable path. Defaults to "helm" on PATH.
	Bin string
	// Timeout bounds a single helm invocation. Zero means 600s.
	Timeout time.Duration
}

// NewHelmDeployer builds a HelmDeployer with the given command timeout.
// A zero timeout falls back to 600s, matching helm's own default.
func NewHelmDeployer(timeout time.Duration) *HelmDeployer {
	if timeout <= 0 {
		timeout = 600 * time.Second
	}
	return &HelmDeployer{Bin: "helm", Timeout: timeout}
}

func (h *HelmDeployer) bin() string {
	if h.Bin == "" {
		return "helm"
	}
	return h.Bin
}

func (h *HelmDeployer) timeout() time.Duration {
	if h.Timeout <= 0 {
		return 600 * time.Second
	}
	return h.Timeout
}

// Install runs `helm upgrade --install --create-namespace`. It deliberately
// does not pass --wait: readiness is observed independently by the
// provisioner's poll loop, not conflated with the install call itself.
func (h *HelmDeployer) Install(ctx context.Context, release, namespace, chartPath string, values map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout())
	defer cancel()

	args := []string{
		"upgrade", release, chartPath,
		"--install",
		"--namespace", namespace,
		"--create-namespace",
	}
	for k, v := range values {
		args = append(args, "--set", fmt.Sprintf("%s=%s", k, v))
	}

	out, err := h.run(ctx, args...)
	if err != nil {
		return fmt.Errorf("helm install %s/%s: %w: %s", namespace, release, err, out)
	}
	return nil
}

// Uninstall runs `helm uninstall`. A "release not found" failure is
// swallowed so repeated deletes stay idempotent.
func (h *HelmDeployer) Uninstall(ctx context.Context, release, namespace string) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout())
	defer cancel()

	out, err := h.run(ctx, "uninstall", release, "--namespace", namespace)
	if err != nil {
		if strings.Contains(out, "not found") {
			return nil
		}
		return fmt.Errorf("helm uninstall %s/%s: %w: %s", namespace, release, err, out)
	}
	return nil
}

// ReleaseExists runs `helm status` and interprets a "not found" error as a
// clean false rather than an error.
func (h *HelmDeployer) ReleaseExists(ctx context.Context, release, namespace string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout())
	defer cancel()

	out, err := h.run(ctx, "status", release, "--namespace", namespace)
	if err != nil {
		if strings.Contains(out, "not found") {
			return false, nil
		}
		return false, fmt.Errorf("helm status %s/%s: %w: %s", namespace, release, err, out)
	}
	return true, nil
}

func (h *HelmDeployer) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, h.bin(), args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}
