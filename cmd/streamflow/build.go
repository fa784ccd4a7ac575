package main

import (
	"context"
	"fmt"

	"github.com/streamflow-go/engine/pkg/combinator"
	"github.com/streamflow-go/engine/pkg/config"
	"github.com/streamflow-go/engine/pkg/connector"
	"github.com/streamflow-go/engine/pkg/connector/helm"
	"github.com/streamflow-go/engine/pkg/connector/kubernetes"
	"github.com/streamflow-go/engine/pkg/connector/remote"
	"github.com/streamflow-go/engine/pkg/log"
	"github.com/streamflow-go/engine/pkg/metrics"
	"github.com/streamflow-go/engine/pkg/workflow"
)

const defaultTransferBufferSize = 32 * 1024

// graph is the assembled, runnable form of a manifest: one connector per
// deployment, one shared Port per port name any task references, and one
// Task per manifest task entry.
type graph struct {
	tasks    []*workflow.Task
	deployer *mapDeploymentManager
}

// buildGraph wires a config.Manifest into a runnable workflow graph,
// following the manifest's deployments → connectors and tasks → Task
// mapping spec.md §9 describes for pkg/config.
func buildGraph(m *config.Manifest) (*graph, error) {
	connectors := make(map[string]connector.Connector, len(m.Deployments))
	for name, dep := range m.Deployments {
		conn, err := buildConnector(dep)
		if err != nil {
			return nil, fmt.Errorf("deployment %s: %w", name, err)
		}
		connectors[name] = conn
	}
	deployer := &mapDeploymentManager{connectors: connectors}

	ports := make(map[string]*workflow.Port)
	portFor := func(name string) *workflow.Port {
		if p, ok := ports[name]; ok {
			return p
		}
		p := workflow.NewPort(name)
		ports[name] = p
		return p
	}

	scheduler := newRoundRobinScheduler()

	tasks := make([]*workflow.Task, 0, len(m.Tasks))
	for name, spec := range m.Tasks {
		task := workflow.NewTask(name)

		switch spec.Combinator {
		case "cartesianProduct":
			task.Combinator = combinator.NewCartesianProduct(name)
		default:
			task.Combinator = combinator.NewDotProduct()
		}

		for _, portName := range spec.InputPorts {
			task.AddInputPort(portName, portFor(portName), &workflow.PassthroughTokenProcessor{PortName: portName})
		}
		for _, portName := range spec.OutputPorts {
			task.AddOutputPort(portName, portFor(portName), &workflow.PassthroughTokenProcessor{PortName: portName})
		}

		executor := &workflow.CommandExecutor{Command: spec.Command, Local: connector.NewLocalConnector(defaultTransferBufferSize)}
		task.Executor = executor

		if spec.Target != nil {
			if _, ok := connectors[spec.Target.Model]; !ok {
				return nil, fmt.Errorf("task %s targets undefined deployment %s", name, spec.Target.Model)
			}
			task.Target = &workflow.Target{Model: spec.Target.Model, Service: spec.Target.Service}
			task.Deployer = deployer
			task.Scheduler = scheduler
		}

		tasks = append(tasks, task)
	}

	metrics.RegisterComponent("connector", true, "")
	metrics.RegisterComponent("scheduler", true, "")
	return &graph{tasks: tasks, deployer: deployer}, nil
}

// undeployAll tears down every deployment the graph brought up, logging
// rather than failing on individual errors since the run has already
// completed by the time this runs.
func (g *graph) undeployAll(ctx context.Context) {
	for name := range g.deployer.connectors {
		if err := g.deployer.Undeploy(ctx, name); err != nil {
			log.WithConnector(name).Warn().Err(err).Msg("undeploy failed")
		}
	}
}

func buildConnector(dep config.Deployment) (connector.Connector, error) {
	switch dep.Kind {
	case "", "local":
		return connector.NewLocalConnector(defaultTransferBufferSize), nil

	case "kubernetes":
		cfg := kubernetes.Config{
			InCluster:   optBool(dep.Options, "inCluster", false),
			Kubeconfig:  optString(dep.Options, "kubeconfig", ""),
			Namespace:   optString(dep.Options, "namespace", ""),
			ReleaseName: optString(dep.Options, "releaseName", ""),
		}
		return kubernetes.NewConnector(cfg, defaultTransferBufferSize), nil

	case "helm":
		cfg := kubernetes.Config{
			InCluster:   optBool(dep.Options, "inCluster", false),
			Kubeconfig:  optString(dep.Options, "kubeconfig", ""),
			Namespace:   optString(dep.Options, "namespace", ""),
			ReleaseName: optString(dep.Options, "releaseName", ""),
		}
		kube := kubernetes.NewConnector(cfg, defaultTransferBufferSize)

		dialect := helm.Helm3
		if optString(dep.Options, "dialect", "helm3") == "helm2" {
			dialect = helm.Helm2
		}
		chart := optString(dep.Options, "chart", "")
		releaseName := optString(dep.Options, "releaseName", "")
		installOpts := helmOptionsFrom(dep.Options, "install")
		uninstallOpts := helmOptionsFrom(dep.Options, "uninstall")
		return helm.NewConnector(dialect, chart, releaseName, installOpts, uninstallOpts, kube), nil

	case "remote":
		return remote.NewConnector(remote.Config{
			Address:  optString(dep.Options, "address", ""),
			Insecure: optBool(dep.Options, "insecure", true),
		}), nil

	default:
		return nil, fmt.Errorf("unknown deployment kind %q", dep.Kind)
	}
}

func optString(options map[string]any, key, def string) string {
	if v, ok := options[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func optBool(options map[string]any, key string, def bool) bool {
	if v, ok := options[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// helmOptionsFrom pulls the nested "install"/"uninstall" option maps a
// helm deployment's manifest entry carries (atomic, wait, set, timeout,
// tls*, no-crd-hook/skip-crds, ...) out of the deployment's otherwise
// connector-construction-only Options map.
func helmOptionsFrom(options map[string]any, key string) helm.Options {
	raw, ok := options[key]
	if !ok {
		return helm.Options{}
	}
	nested, ok := raw.(map[string]any)
	if !ok {
		return helm.Options{}
	}
	return helm.Options(nested)
}
