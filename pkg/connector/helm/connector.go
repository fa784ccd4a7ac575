package helm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/streamflow-go/engine/pkg/connector"
	kubeconnector "github.com/streamflow-go/engine/pkg/connector/kubernetes"
	"github.com/streamflow-go/engine/pkg/log"
)

// Connector deploys a chart with the Helm CLI, then delegates Run/Copy/
// GetAvailableResources to a Kubernetes connector targeting the resulting
// release's pods — the same structure the original implementation gets by
// having BaseHelmConnector extend BaseConnector: Helm only performs
// chart lifecycle, everything else is plain Kubernetes pod exec.
type Connector struct {
	dialect     Dialect
	chart       string
	releaseName string
	installOpts Options
	uninstallOpts Options

	kube *kubeconnector.Connector

	mu         sync.Mutex
	isDeployed bool
}

// NewConnector builds a Helm-backed connector for chart, deployed as
// releaseName, driving pods through kube once installed.
func NewConnector(dialect Dialect, chart, releaseName string, installOpts, uninstallOpts Options, kube *kubeconnector.Connector) *Connector {
	return &Connector{
		dialect:       dialect,
		chart:         chart,
		releaseName:   releaseName,
		installOpts:   installOpts,
		uninstallOpts: uninstallOpts,
		kube:          kube,
	}
}

// Deploy installs the chart, idempotently: a second Deploy call on an
// already-deployed connector is a no-op.
func (c *Connector) Deploy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isDeployed {
		return nil
	}

	command := c.dialect.BuildInstall(c.installOpts, c.releaseName, c.chart)
	log.WithConnector(c.releaseName).Debug().Str("command", command).Msg("executing helm install")

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("helm install failed for release %s: %w: %s", c.releaseName, err, strings.TrimSpace(string(out)))
	}
	c.isDeployed = true
	return nil
}

// Undeploy uninstalls the release and releases the Kubernetes connector's
// cached API clients.
func (c *Connector) Undeploy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isDeployed {
		return nil
	}

	command := c.dialect.BuildUninstall(c.uninstallOpts, c.releaseName)
	log.WithConnector(c.releaseName).Debug().Str("command", command).Msg("executing helm uninstall")

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("helm %s failed for release %s: %w: %s", c.dialect.UninstallVerb, c.releaseName, err, strings.TrimSpace(string(out)))
	}
	c.isDeployed = false
	return c.kube.Undeploy(ctx)
}

func (c *Connector) Run(ctx context.Context, location connector.Location, opts connector.RunOptions) (*connector.RunResult, error) {
	return c.kube.Run(ctx, location, opts)
}

func (c *Connector) Copy(ctx context.Context, req connector.CopyRequest) error {
	return c.kube.Copy(ctx, req)
}

func (c *Connector) GetAvailableResources(ctx context.Context, service string) ([]connector.Location, error) {
	return c.kube.GetAvailableResources(ctx, service)
}
