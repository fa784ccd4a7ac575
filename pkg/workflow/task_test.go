package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamflow-go/engine/pkg/combinator"
	"github.com/streamflow-go/engine/pkg/contract"
)

// echoExecutor joins every input token's value with a space and reports it
// as the job result, always COMPLETED.
type echoExecutor struct{}

func (echoExecutor) Execute(_ context.Context, job *contract.Job) (any, contract.JobStatus, error) {
	parts := make([]string, len(job.Inputs))
	for i, in := range job.Inputs {
		parts[i] = fmt.Sprintf("%v", in.Value)
	}
	return strings.Join(parts, " "), contract.JobCompleted, nil
}

// passthroughProcessor returns the input token unchanged and, as an output
// processor, wraps the job's result in a Token on the given port.
type passthroughProcessor struct{ portName string }

func (p passthroughProcessor) UpdateToken(_ context.Context, _ *contract.Job, token contract.Token) (contract.Token, error) {
	return token, nil
}

func (p passthroughProcessor) ComputeToken(_ context.Context, _ *contract.Job, result any, status contract.JobStatus) (contract.Token, error) {
	if status == contract.JobSkipped {
		return contract.Token{Name: p.portName, Value: nil}, nil
	}
	return contract.Token{Name: p.portName, Value: result}, nil
}

func feedAndTerminate(p *Port, values ...string) {
	for _, v := range values {
		p.Put(contract.Token{Name: p.Name, Value: v})
	}
	p.Put(contract.NewTerminationToken(p.Name))
}

func TestTaskDotProductTwoPortEcho(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	portA := NewPort("A")
	portB := NewPort("B")
	feedAndTerminate(portA, "a1")
	feedAndTerminate(portB, "b1")

	out := NewPort("OUT")

	task := NewTask("echo-task")
	task.Combinator = combinator.NewDotProduct()
	task.Executor = echoExecutor{}
	task.AddInputPort("A", portA, passthroughProcessor{})
	task.AddInputPort("B", portB, passthroughProcessor{})
	task.AddOutputPort("OUT", out, passthroughProcessor{portName: "OUT"})

	require.NoError(t, task.Run(ctx))

	tok, err := out.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a1 b1", tok.Value)

	term, err := out.Get(ctx)
	require.NoError(t, err)
	assert.True(t, term.IsTermination())
}

func TestTaskCartesianProductFourFirings(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	portA := NewPort("A")
	portB := NewPort("B")
	feedAndTerminate(portA, "a1", "a2")
	feedAndTerminate(portB, "b1", "b2")

	out := NewPort("OUT")

	task := NewTask("cartesian-task")
	task.Combinator = combinator.NewCartesianProduct("cartesian-task")
	task.Executor = echoExecutor{}
	task.AddInputPort("A", portA, passthroughProcessor{})
	task.AddInputPort("B", portB, passthroughProcessor{})
	task.AddOutputPort("OUT", out, passthroughProcessor{portName: "OUT"})

	require.NoError(t, task.Run(ctx))

	var got []string
	for {
		tok, err := out.Get(ctx)
		require.NoError(t, err)
		if tok.IsTermination() {
			break
		}
		got = append(got, tok.Value.(string))
	}

	assert.ElementsMatch(t, []string{"a1 b1", "a1 b2", "a2 b1", "a2 b2"}, got)
}

// alwaysFalse never lets a job's command execute.
type alwaysFalse struct{}

func (alwaysFalse) Evaluate(_ context.Context, _ []contract.Token) (bool, error) { return false, nil }

func TestTaskSkippedJobEmitsNilResult(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	portA := NewPort("A")
	feedAndTerminate(portA, "a1")
	out := NewPort("OUT")

	task := NewTask("skipped-task")
	task.Combinator = combinator.NewDotProduct()
	task.Executor = echoExecutor{}
	task.Condition = alwaysFalse{}
	task.AddInputPort("A", portA, passthroughProcessor{})
	task.AddOutputPort("OUT", out, passthroughProcessor{portName: "OUT"})

	require.NoError(t, task.Run(ctx))

	tok, err := out.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, tok.Value)
}

func TestJobDriverCreatesDistinctStagingDirectories(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	task := NewTask("no-input-task")
	var captured *contract.Job
	task.Executor = captureExecutor{dst: &captured}

	require.NoError(t, task.Run(ctx))
	require.NotNil(t, captured)
	assert.NotEqual(t, captured.InputDirectory, captured.OutputDirectory)
	assert.Contains(t, captured.InputDirectory, "streamflow")
	assert.Contains(t, captured.OutputDirectory, "streamflow")
}

type captureExecutor struct{ dst **contract.Job }

func (c captureExecutor) Execute(_ context.Context, job *contract.Job) (any, contract.JobStatus, error) {
	*c.dst = job
	return nil, contract.JobCompleted, nil
}
