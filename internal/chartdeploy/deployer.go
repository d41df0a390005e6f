// Package chartdeploy installs and removes the Helm release that backs a
// store's namespace.
package chartdeploy

import "context"

// Deployer installs and removes per-store Helm releases.
type Deployer interface {
	// Install runs `helm upgrade --install` for the given release/namespace,
	// creating the namespace if absent, with the given chart values.
	Install(ctx context.Context, release, namespace, chartPath string, values map[string]string) error

	// Uninstall removes a release. It is idempotent: uninstalling a release
	// that does not exist is not an error.
	Uninstall(ctx context.Context, release, namespace string) error

	// ReleaseExists reports whether a release is currently installed.
	ReleaseExists(ctx context.Context, release, namespace string) (bool, error)
}
