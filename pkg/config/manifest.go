// Package config loads a YAML workflow manifest describing the
// deployments, tasks, and ports an engine run should build. The document
// has three top-level keys: apiVersion, deployments and tasks.
package config

// Manifest is the top-level document a StreamFlow run file decodes into.
type Manifest struct {
	APIVersion  string                `yaml:"apiVersion"`
	Deployments map[string]Deployment `yaml:"deployments"`
	Tasks       map[string]TaskSpec   `yaml:"tasks"`
}

// Deployment names a connector backend and its backend-specific options.
// Kind selects which pkg/connector implementation to construct; Options
// is passed through verbatim (e.g. kubeconfig path, chart, release name).
type Deployment struct {
	Kind    string         `yaml:"kind"` // "local", "kubernetes", "helm", "remote"
	Service string         `yaml:"service,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
}

// TaskSpec describes one workflow task: its ports, which combinator
// joins its inputs, which deployment (if any) it targets, and an
// optional condition expression. Condition is decoded but not evaluated:
// cmd/streamflow's buildGraph does not attach it to the Task it builds.
type TaskSpec struct {
	InputPorts  []string `yaml:"inputPorts,omitempty"`
	OutputPorts []string `yaml:"outputPorts,omitempty"`
	Combinator  string   `yaml:"combinator,omitempty"` // "dotProduct" or "cartesianProduct"
	Target      *Target  `yaml:"target,omitempty"`
	Condition   string   `yaml:"condition,omitempty"`
	Command     []string `yaml:"command,omitempty"`
}

// Target names the deployment and service a task executes against.
type Target struct {
	Model   string `yaml:"model"`
	Service string `yaml:"service,omitempty"`
}
