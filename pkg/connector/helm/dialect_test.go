package helm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelm3BuildInstallPlacesReleaseNameAsArg(t *testing.T) {
	got := Helm3.BuildInstall(Options{"namespace": "default", "wait": true}, "my-release", "my-chart")
	assert.Contains(t, got, "helm install ")
	assert.Contains(t, got, `--namespace "default"`)
	assert.Contains(t, got, "--wait")
	assert.Contains(t, got, `my-release "my-chart"`)
}

func TestHelm2BuildInstallUsesNameFlag(t *testing.T) {
	got := Helm2.BuildInstall(Options{}, "my-release", "my-chart")
	assert.Contains(t, got, `-name "my-release"`)
	assert.Contains(t, got, `"my-chart"`)
}

func TestHelm2NoCrdHookRendersLongFlag(t *testing.T) {
	got := Helm2.BuildInstall(Options{"no-crd-hook": true}, "r", "c")
	assert.Contains(t, got, "--no-crd-hook")
}

func TestHelm3DropsUnsupportedNoCrdHook(t *testing.T) {
	got := Helm3.BuildInstall(Options{"no-crd-hook": true}, "r", "c")
	assert.NotContains(t, got, "no-crd-hook")
}

func TestHelm3SupportsSkipCrds(t *testing.T) {
	got := Helm3.BuildInstall(Options{"skip-crds": true}, "r", "c")
	assert.Contains(t, got, "--skip-crds")
}

func TestHelm2DropsUnsupportedSkipCrds(t *testing.T) {
	got := Helm2.BuildInstall(Options{"skip-crds": true}, "r", "c")
	assert.NotContains(t, got, "skip-crds")
}

func TestHelm2UninstallUsesDeleteVerb(t *testing.T) {
	got := Helm2.BuildUninstall(Options{}, "my-release")
	assert.Contains(t, got, "helm delete ")
	assert.Contains(t, got, "my-release")
}

func TestHelm3UninstallUsesUninstallVerb(t *testing.T) {
	got := Helm3.BuildUninstall(Options{"timeout": "5m"}, "my-release")
	assert.Contains(t, got, "helm uninstall ")
	assert.Contains(t, got, `--timeout "5m"`)
}
