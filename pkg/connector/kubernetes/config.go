// Package kubernetes implements the Connector contract against a
// Kubernetes cluster: pod exec over the SPDY-multiplexed remote-command
// API, resource discovery by label selector, and tar-over-pipe copy using
// the same streams.
package kubernetes

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/streamflow-go/engine/pkg/contract"
)

// ServiceNamespaceFile is the in-cluster service-account mount holding the
// pod's namespace.
const ServiceNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// Config selects how the connector authenticates to the cluster.
type Config struct {
	InCluster   bool
	Kubeconfig  string
	Namespace   string
	ReleaseName string
}

// buildRESTConfig loads an in-cluster config (when InCluster is set) or a
// kubeconfig file, defaulting to $HOME/.kube/config.
func buildRESTConfig(cfg Config) (*rest.Config, error) {
	if cfg.InCluster {
		restCfg, err := rest.InClusterConfig()
		if err != nil {
			return nil, &contract.ConfigError{Reason: fmt.Sprintf("loading in-cluster config: %v", err)}
		}
		return restCfg, nil
	}

	path := cfg.Kubeconfig
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".kube", "config")
	}
	restCfg, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, &contract.ConfigError{Reason: fmt.Sprintf("loading kubeconfig %s: %v", path, err)}
	}
	return restCfg, nil
}

// resolveNamespace returns cfg.Namespace when set. Otherwise, outside the
// cluster it returns "default", and in-cluster it reads the service-account
// namespace file, failing if it is missing or empty.
func resolveNamespace(cfg Config) (string, error) {
	if cfg.Namespace != "" {
		return cfg.Namespace, nil
	}
	if !cfg.InCluster {
		return "default", nil
	}
	data, err := os.ReadFile(ServiceNamespaceFile)
	if err != nil {
		return "", &contract.ConfigError{Reason: "service namespace file does not exist"}
	}
	if len(data) == 0 {
		return "", &contract.ConfigError{Reason: "namespace file exists but is empty"}
	}
	return string(data), nil
}

func newClientset(restCfg *rest.Config) (*kubernetes.Clientset, error) {
	cs, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, &contract.ConfigError{Reason: fmt.Sprintf("building clientset: %v", err)}
	}
	return cs, nil
}
