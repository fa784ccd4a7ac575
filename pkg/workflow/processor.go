package workflow

import (
	"context"

	"github.com/streamflow-go/engine/pkg/contract"
)

// PassthroughTokenProcessor carries an input token unchanged, and on
// completion wraps a job's raw result (or nil, if skipped) into a token
// named after its port. It's the default processor a manifest-driven task
// uses for ports with no scripted rewrite.
type PassthroughTokenProcessor struct {
	PortName string
}

func (p *PassthroughTokenProcessor) UpdateToken(ctx context.Context, job *contract.Job, token contract.Token) (contract.Token, error) {
	return token, nil
}

func (p *PassthroughTokenProcessor) ComputeToken(ctx context.Context, job *contract.Job, result any, status contract.JobStatus) (contract.Token, error) {
	if status == contract.JobSkipped {
		return contract.Token{Name: p.PortName, Tag: TagOf(job.Inputs)}, nil
	}
	return contract.Token{Name: p.PortName, Tag: TagOf(job.Inputs), Value: result}, nil
}
