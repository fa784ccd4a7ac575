package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamflow-go/engine/pkg/contract"
)

func TestPassthroughTokenProcessorUpdateIsIdentity(t *testing.T) {
	p := &PassthroughTokenProcessor{PortName: "out"}
	tok := contract.Token{Name: "in", Tag: "0.1", Value: "hello"}

	got, err := p.UpdateToken(context.Background(), &contract.Job{}, tok)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestPassthroughTokenProcessorComputeWrapsResult(t *testing.T) {
	p := &PassthroughTokenProcessor{PortName: "out"}
	job := &contract.Job{Inputs: []contract.Token{{Tag: "0.3"}}}

	got, err := p.ComputeToken(context.Background(), job, "stdout text", contract.JobCompleted)
	require.NoError(t, err)
	assert.Equal(t, "out", got.Name)
	assert.Equal(t, "0.3", got.Tag)
	assert.Equal(t, "stdout text", got.Value)
}

func TestPassthroughTokenProcessorSkippedHasNilValue(t *testing.T) {
	p := &PassthroughTokenProcessor{PortName: "out"}

	got, err := p.ComputeToken(context.Background(), &contract.Job{}, "ignored", contract.JobSkipped)
	require.NoError(t, err)
	assert.Nil(t, got.Value)
}
