package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/streamflow-go/engine/pkg/contract"
)

// Load reads and decodes a workflow manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &contract.ConfigError{Reason: fmt.Sprintf("reading manifest %s: %v", path, err)}
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &contract.ConfigError{Reason: fmt.Sprintf("parsing manifest %s: %v", path, err)}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	for name, task := range m.Tasks {
		if task.Target != nil {
			if _, ok := m.Deployments[task.Target.Model]; !ok {
				return &contract.ConfigError{Reason: fmt.Sprintf("task %s targets undefined deployment %s", name, task.Target.Model)}
			}
		}
		switch task.Combinator {
		case "", "dotProduct", "cartesianProduct":
		default:
			return &contract.ConfigError{Reason: fmt.Sprintf("task %s: unknown combinator %q", name, task.Combinator)}
		}
	}
	return nil
}

// InjectSchema is the pure function signature spec.md §9 calls out as an
// external collaborator contract: given a JSON Schema and a set of
// plugin descriptors, it returns the schema augmented with whatever the
// plugins contribute (additional properties, $defs). No concrete
// implementation ships here — callers supply their own
// contract.SchemaRegistry; this free function exists only so the
// contract has one canonical signature to implement against.
func InjectSchema(schema map[string]any, plugins map[string]string, definitionName string) (map[string]any, error) {
	return nil, fmt.Errorf("InjectSchema has no built-in implementation: supply a contract.SchemaRegistry")
}
