package kubernetes

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/streamflow-go/engine/internal/util"
	"github.com/streamflow-go/engine/pkg/connector"
	"github.com/streamflow-go/engine/pkg/log"
)

// Connector drives a deployment's pods through the Kubernetes pod-exec
// API. Its location identifiers are "<pod-name>:<container-name>".
type Connector struct {
	cfg                Config
	transferBufferSize int

	mu         sync.Mutex
	restCfg    *rest.Config
	clientset  *kubernetes.Clientset
	namespace  string
	isDeployed bool
}

// NewConnector builds a Kubernetes connector for the given configuration.
// transferBufferSize governs the chunk size used by tar copy operations.
func NewConnector(cfg Config, transferBufferSize int) *Connector {
	return &Connector{cfg: cfg, transferBufferSize: transferBufferSize}
}

func (c *Connector) client(ctx context.Context) (*kubernetes.Clientset, *rest.Config, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clientset != nil {
		return c.clientset, c.restCfg, c.namespace, nil
	}

	restCfg, err := buildRESTConfig(c.cfg)
	if err != nil {
		return nil, nil, "", err
	}
	namespace, err := resolveNamespace(c.cfg)
	if err != nil {
		return nil, nil, "", err
	}
	cs, err := newClientset(restCfg)
	if err != nil {
		return nil, nil, "", err
	}

	c.restCfg = restCfg
	c.clientset = cs
	c.namespace = namespace
	log.WithConnector(c.cfg.ReleaseName).Info().Str("namespace", namespace).Msg("kubernetes client configured")
	return cs, restCfg, namespace, nil
}

// Deploy marks the connector deployed. Chart installation itself is
// performed by pkg/connector/helm against the same release; the
// Kubernetes connector only needs a working client to exec into it.
func (c *Connector) Deploy(ctx context.Context) error {
	_, _, _, err := c.client(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.isDeployed = true
	c.mu.Unlock()
	return nil
}

// Undeploy releases the cached API client.
func (c *Connector) Undeploy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clientset = nil
	c.restCfg = nil
	c.isDeployed = false
	return nil
}

// Run executes command on location through a pod-exec helper script,
// exactly as spec §4.3 describes: env/workdir assembled into a small
// shell script, built and uploaded on every call, then invoked with the
// base64-encoded user command as its sole argument.
func (c *Connector) Run(ctx context.Context, location connector.Location, opts connector.RunOptions) (*connector.RunResult, error) {
	pod, container, err := splitLocation(location)
	if err != nil {
		return nil, err
	}

	_, restCfg, namespace, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	envVars := make([]util.EnvVar, 0, len(opts.Env))
	for _, e := range opts.Env {
		envVars = append(envVars, util.EnvVar{Name: e.Name, Value: e.Value})
	}
	helperPath, err := c.buildHelperFile(ctx, pod, container, namespace, envVars, opts.Workdir)
	if err != nil {
		return nil, err
	}

	encoded := util.EncodeCommand(joinCommand(opts.Command), "sh")
	return execInPod(ctx, c.clientsetOrNil(), restCfg, namespace, pod, container,
		[]string{helperPath, encoded}, opts.CaptureOutput)
}

func (c *Connector) clientsetOrNil() *kubernetes.Clientset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientset
}

func joinCommand(command []string) string {
	out := ""
	for i, tok := range command {
		if i > 0 {
			out += " "
		}
		out += tok
	}
	return out
}

func splitLocation(location connector.Location) (pod, container string, err error) {
	s := string(location)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("location %q is not in \"pod:container\" form", location)
}

// Copy transfers data using the tar-over-pipe protocol of spec §4.2/§4.3,
// reusing pod-exec'd tar processes as the BaseConnector's subprocess model
// would use local ones.
func (c *Connector) Copy(ctx context.Context, req connector.CopyRequest) error {
	switch req.Kind {
	case connector.LocalToRemote:
		return c.copyLocalToRemote(ctx, req)
	case connector.RemoteToLocal:
		if len(req.Locations) != 1 {
			return fmt.Errorf("copy from multiple locations is not supported")
		}
		return c.copyRemoteToLocal(ctx, req.Src, req.Dst, req.Locations[0])
	case connector.RemoteToRemote:
		return c.copyRemoteToRemote(ctx, req)
	default:
		return fmt.Errorf("unsupported copy kind %s", req.Kind)
	}
}

// GetAvailableResources lists running pods backing service within the
// release, registering "<pod>:<service>" for each matching container.
func (c *Connector) GetAvailableResources(ctx context.Context, service string) ([]connector.Location, error) {
	return c.discover(ctx, service)
}
