// Package contract defines the Token and Job data types, the engine's error
// types, and the interfaces of the collaborators the task runner calls
// through: DeploymentManager, Scheduler, Condition, TokenProcessor and
// SchemaRegistry. Default implementations of some of them live elsewhere in
// the module (cmd/streamflow, pkg/workflow).
package contract

import (
	"context"

	"github.com/streamflow-go/engine/pkg/connector"
)

// JobStatus is the terminal or in-flight state of a job execution.
type JobStatus string

const (
	JobCreated   JobStatus = "CREATED"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobSkipped   JobStatus = "SKIPPED"
)

// DeploymentManager materializes and tears down the execution environment a
// Target names (e.g. applying a Helm chart). cmd/streamflow's
// mapDeploymentManager is the implementation the CLI uses.
type DeploymentManager interface {
	// Deploy ensures the named deployment model is up, idempotently.
	Deploy(ctx context.Context, modelName string) error
	// Undeploy tears the named deployment down and releases any cached
	// client handles associated with it.
	Undeploy(ctx context.Context, modelName string) error
	// Connector returns the shared Connector for a deployed model.
	Connector(modelName string) (connector.Connector, error)
}

// Scheduler places a Job on a location and tracks its status. Resource
// allocation policy is explicitly out of scope (spec.md §1 Non-goals); this
// is the pluggable surface a concrete allocator implements.
type Scheduler interface {
	// Schedule picks a location serving job.Resource and records it in
	// job.Location.
	Schedule(ctx context.Context, job *Job) error
	// NotifyStatus reports a status transition for the named job.
	NotifyStatus(ctx context.Context, jobName string, status JobStatus) error
}

// Condition gates whether a job actually executes. A nil Condition always
// evaluates true.
type Condition interface {
	Evaluate(ctx context.Context, inputs []Token) (bool, error)
}

// TokenProcessor updates an input token before execution (e.g. staging
// files, rewriting paths) and computes an output token once a job has run.
type TokenProcessor interface {
	// UpdateToken returns a possibly-rewritten token for use as job input.
	UpdateToken(ctx context.Context, job *Job, token Token) (Token, error)
	// ComputeToken derives the output token for a completed (or skipped)
	// job, given its execution result (opaque; interpretation belongs to
	// the processor) and final status.
	ComputeToken(ctx context.Context, job *Job, result any, status JobStatus) (Token, error)
}

// SchemaRegistry is the plugin-descriptor self-description surface
// (spec.md §9 "JSON-schema mutation for plugin self-description"), modeled
// as a pure function external to this module's hard core.
type SchemaRegistry interface {
	InjectSchema(schema map[string]any, plugins map[string]string, definitionName string) (map[string]any, error)
}
