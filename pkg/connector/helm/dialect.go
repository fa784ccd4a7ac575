// Package helm wraps the `helm` CLI to deploy and undeploy a chart,
// unifying the Helm v2 and v3 dialects behind a single connector
// parameterised by an Option set rather than by inheritance (spec §4.3/§9:
// "treat them as two instances of the same deploy/undeploy contract
// parameterised by the base command, the install/delete verbs, and the
// option set").
package helm

import (
	"fmt"
	"strings"

	"github.com/streamflow-go/engine/pkg/connector"
)

// Dialect names the CLI surface differences between Helm v2 and v3: the
// install/uninstall verbs and whether the release name is a positional
// chart argument (v3) or a --name flag (v2).
type Dialect struct {
	Name             string
	InstallVerb      string
	UninstallVerb    string
	ReleaseAsArg     bool
	SupportsNoCrdHook bool
	SupportsSkipCrds bool
}

// Helm2 and Helm3 are the two dialects the original deployment supported.
var (
	Helm2 = Dialect{Name: "helm2", InstallVerb: "install", UninstallVerb: "delete", ReleaseAsArg: false, SupportsNoCrdHook: true}
	Helm3 = Dialect{Name: "helm3", InstallVerb: "install", UninstallVerb: "uninstall", ReleaseAsArg: true, SupportsSkipCrds: true}
)

// Options carries every flag a deploy/undeploy invocation may render,
// keyed by the long CLI flag name. Values follow connector.GetOption's
// type rules (bool/string/[]string).
type Options map[string]any

// Render renders every key in order, skipping keys the dialect doesn't
// support (currently only no-crd-hook/skip-crds, which are mutually
// exclusive between v2 and v3).
func (o Options) Render(order []string, d Dialect) string {
	var b strings.Builder
	for _, key := range order {
		if key == "no-crd-hook" && !d.SupportsNoCrdHook {
			continue
		}
		if key == "skip-crds" && !d.SupportsSkipCrds {
			continue
		}
		v, ok := o[key]
		if !ok {
			continue
		}
		b.WriteString(connector.GetOption(key, v))
	}
	return b.String()
}

// installOrder is the flag order the original implementation renders in,
// kept identical across both dialects apart from dialect-specific keys.
var installOrder = []string{
	"atomic", "ca-file", "cert-file", "dep-up", "description", "devel",
	"key-file", "keyring", "name-template", "namespace", "no-crd-hook",
	"no-hooks", "password", "render-subchart-notes", "repo", "set",
	"set-file", "set-string", "skip-crds", "timeout", "tls", "tls-ca-cert",
	"tls-cert", "tls-hostname", "tls-key", "tls-verify", "username",
	"values", "verify", "version", "wait",
}

var uninstallOrder = []string{
	"keep-history", "no-hooks", "timeout", "purge",
	"tls", "tls-ca-cert", "tls-cert", "tls-hostname", "tls-key", "tls-verify",
}

// BuildInstall renders `helm <verb> <options> [name] "<chart>"`.
func (d Dialect) BuildInstall(opts Options, releaseName, chart string) string {
	cmd := fmt.Sprintf("helm %s %s", d.InstallVerb, opts.Render(installOrder, d))
	if d.ReleaseAsArg {
		cmd += fmt.Sprintf("%s ", releaseName)
	} else {
		cmd += connector.GetOption("name", releaseName)
	}
	return strings.TrimRight(cmd, " ") + fmt.Sprintf(" \"%s\"", chart)
}

// BuildUninstall renders `helm <verb> <options> <release>`.
func (d Dialect) BuildUninstall(opts Options, releaseName string) string {
	cmd := fmt.Sprintf("helm %s %s%s", d.UninstallVerb, opts.Render(uninstallOrder, d), releaseName)
	return cmd
}
