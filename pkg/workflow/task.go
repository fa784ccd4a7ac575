package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/streamflow-go/engine/internal/util"
	"github.com/streamflow-go/engine/pkg/combinator"
	"github.com/streamflow-go/engine/pkg/connector"
	"github.com/streamflow-go/engine/pkg/contract"
	"github.com/streamflow-go/engine/pkg/log"
)

// Target names the deployment a Task runs against. A nil Target on a Task
// means local execution.
type Target struct {
	Model   string
	Service string
}

// InputPort pairs a port with the token processor that updates tokens read
// from it before a job runs.
type InputPort struct {
	Port      *Port
	Processor contract.TokenProcessor
}

// OutputPort pairs a port with the token processor that computes the
// token a completed (or skipped) job writes to it.
type OutputPort struct {
	Port      *Port
	Processor contract.TokenProcessor
}

// Executor runs a job's command and returns an opaque result plus status.
// Concrete implementations dispatch through a Connector; kept as an
// interface here so pkg/workflow does not hardcode one execution strategy.
type Executor interface {
	Execute(ctx context.Context, job *contract.Job) (result any, status contract.JobStatus, err error)
}

// Task is a static dataflow graph node: ordered input/output ports, the
// combinator synchronising its inputs, the command executor, an optional
// guard Condition, and an optional remote Target.
type Task struct {
	Name string

	InputPorts  []string
	inputPorts  map[string]InputPort
	OutputPorts []string
	outputPorts map[string]OutputPort

	Combinator combinator.InputCombinator
	Executor   Executor
	Condition  contract.Condition
	Target     *Target

	Deployer  contract.DeploymentManager
	Scheduler contract.Scheduler

	driverSeq atomic.Int64
}

// NewTask builds an empty Task named name.
func NewTask(name string) *Task {
	return &Task{
		Name:        name,
		inputPorts:  make(map[string]InputPort),
		outputPorts: make(map[string]OutputPort),
	}
}

// TaskName implements contract.TaskRef.
func (t *Task) TaskName() string { return t.Name }

// AddInputPort registers an input port, preserving insertion order, and
// wires it into the task's combinator.
func (t *Task) AddInputPort(name string, port *Port, processor contract.TokenProcessor) {
	t.InputPorts = append(t.InputPorts, name)
	t.inputPorts[name] = InputPort{Port: port, Processor: processor}
	if t.Combinator != nil {
		t.Combinator.AddPort(name, port)
	}
}

// AddOutputPort registers an output port, preserving insertion order.
func (t *Task) AddOutputPort(name string, port *Port, processor contract.TokenProcessor) {
	t.OutputPorts = append(t.OutputPorts, name)
	t.outputPorts[name] = OutputPort{Port: port, Processor: processor}
}

// Run drives the task to completion: spawn a job driver per firing (or a
// single empty-input driver when the task has no input ports), await every
// driver, then emit a TerminationToken on every output port.
func (t *Task) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	var firstErr error
	var errMu sync.Mutex

	recordErr := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	if len(t.InputPorts) == 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recordErr(t.runJob(ctx, nil))
		}()
	} else {
		for {
			firing, err := t.Combinator.Get(ctx)
			if err != nil {
				recordErr(err)
				break
			}
			if contract.AllTerminated(firing) {
				break
			}
			inputs := append([]contract.Token(nil), firing...)
			wg.Add(1)
			go func() {
				defer wg.Done()
				recordErr(t.runJob(ctx, inputs))
			}()
		}
	}

	wg.Wait()

	for _, name := range t.OutputPorts {
		t.outputPorts[name].Port.Put(contract.NewTerminationToken(name))
	}

	return firstErr
}

// runJob is the per-firing job driver (spec §4.5 "_run_job"): construct a
// Job, deploy/schedule/stage/update-tokens/execute/notify if its Condition
// holds (SKIPPED otherwise), then compute and emit every output token.
func (t *Task) runJob(ctx context.Context, inputs []contract.Token) error {
	driverID := t.driverSeq.Add(1)
	job := &contract.Job{
		Name:   fmt.Sprintf("%s/%d", t.Name, driverID),
		Task:   t,
		Inputs: inputs,
	}

	var result any
	status := contract.JobSkipped

	run, err := t.shouldRun(ctx, inputs)
	if err != nil {
		return err
	}

	if run {
		if t.Target != nil {
			if err := t.Deployer.Deploy(ctx, t.Target.Model); err != nil {
				return fmt.Errorf("deploying %s for job %s: %w", t.Target.Model, job.Name, err)
			}
			conn, err := t.Deployer.Connector(t.Target.Model)
			if err != nil {
				return fmt.Errorf("resolving connector for %s: %w", t.Target.Model, err)
			}
			job.Connector = conn
			job.Resource = t.Target.Service
			if err := t.Scheduler.Schedule(ctx, job); err != nil {
				return fmt.Errorf("scheduling job %s: %w", job.Name, err)
			}
		}

		if err := t.stageDirectories(ctx, job); err != nil {
			return err
		}

		if err := t.updateInputTokens(ctx, job); err != nil {
			return err
		}

		if t.Target != nil {
			if err := t.Scheduler.NotifyStatus(ctx, job.Name, contract.JobRunning); err != nil {
				log.WithJobName(job.Name).Error().Err(err).Msg("notifying job running status")
			}
		}

		result, status, err = t.Executor.Execute(ctx, job)
		if err != nil {
			return fmt.Errorf("executing job %s: %w", job.Name, err)
		}

		if t.Target != nil {
			if nErr := t.Scheduler.NotifyStatus(ctx, job.Name, status); nErr != nil {
				log.WithJobName(job.Name).Error().Err(nErr).Msg("notifying job final status")
			}
		}
	}

	return t.emitOutputs(ctx, job, result, status)
}

func (t *Task) shouldRun(ctx context.Context, inputs []contract.Token) (bool, error) {
	if t.Condition == nil {
		return true, nil
	}
	return t.Condition.Evaluate(ctx, inputs)
}

func (t *Task) stageDirectories(ctx context.Context, job *contract.Job) error {
	root := os.TempDir()
	if t.Target != nil {
		root = "/tmp"
	}
	base := filepath.Join(root, "streamflow", util.RandomName())

	inDir := filepath.Join(base, "input")
	outDir := filepath.Join(base, "output")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = t.mkdir(ctx, job, inDir)
	}()
	go func() {
		defer wg.Done()
		errs[1] = t.mkdir(ctx, job, outDir)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	job.InputDirectory = inDir
	job.OutputDirectory = outDir
	return nil
}

func (t *Task) mkdir(ctx context.Context, job *contract.Job, dir string) error {
	if t.Target == nil {
		return os.MkdirAll(dir, 0o755)
	}
	_, err := job.Connector.Run(ctx, connector.Location(job.Location), connector.RunOptions{
		Command: []string{"mkdir", "-p", dir},
	})
	return err
}

func (t *Task) updateInputTokens(ctx context.Context, job *contract.Job) error {
	updated := make([]contract.Token, len(job.Inputs))
	errs := make([]error, len(job.Inputs))
	var wg sync.WaitGroup
	for i, token := range job.Inputs {
		wg.Add(1)
		go func(i int, token contract.Token) {
			defer wg.Done()
			processor := t.inputPorts[t.InputPorts[i]].Processor
			if processor == nil {
				updated[i] = token
				return
			}
			tok, err := processor.UpdateToken(ctx, job, token)
			updated[i] = tok
			errs[i] = err
		}(i, token)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("updating input tokens for job %s: %w", job.Name, err)
		}
	}
	job.Inputs = updated
	return nil
}

func (t *Task) emitOutputs(ctx context.Context, job *contract.Job, result any, status contract.JobStatus) error {
	var wg sync.WaitGroup
	errs := make([]error, len(t.OutputPorts))
	for i, name := range t.OutputPorts {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			out := t.outputPorts[name]
			if out.Processor == nil {
				errs[i] = nil
				return
			}
			tok, err := out.Processor.ComputeToken(ctx, job, result, status)
			if err != nil {
				errs[i] = fmt.Errorf("computing output token for port %s on job %s: %w", name, job.Name, err)
				return
			}
			out.Port.Put(tok)
		}(i, name)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
