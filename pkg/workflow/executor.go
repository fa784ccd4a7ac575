package workflow

import (
	"context"

	"github.com/streamflow-go/engine/pkg/connector"
	"github.com/streamflow-go/engine/pkg/contract"
)

// CommandExecutor is the concrete Executor a manifest-driven task runs: it
// invokes Command on the job's connector at the job's location, capturing
// stdout as the job's opaque result. Local handles tasks with no Target,
// where job.Connector is nil.
type CommandExecutor struct {
	Command []string
	Local   connector.Connector
}

// Execute implements Executor.
func (e *CommandExecutor) Execute(ctx context.Context, job *contract.Job) (any, contract.JobStatus, error) {
	conn := job.Connector
	if conn == nil {
		conn = e.Local
	}

	location := connector.Location(job.Location)
	if job.Location == "" {
		location = connector.LocalLocation
	}

	result, err := conn.Run(ctx, location, connector.RunOptions{
		Command:       e.Command,
		Workdir:       job.OutputDirectory,
		CaptureOutput: true,
	})
	if err != nil {
		return nil, contract.JobFailed, err
	}
	return result.Stdout, contract.JobCompleted, nil
}
