// Package combinator implements the input combinators that synchronise
// multiple asynchronous token streams into job firings: DotProduct
// (element-wise) and CartesianProduct (full cross product), both with
// correct termination propagation.
package combinator

import (
	"context"

	"github.com/streamflow-go/engine/pkg/contract"
)

// PortReader is the minimal view of a workflow.Port a combinator needs: a
// suspending read. Kept as an interface here so this package never imports
// pkg/workflow (which imports pkg/combinator to drive Task.Run).
type PortReader interface {
	Get(ctx context.Context) (contract.Token, error)
}

// InputCombinator holds an insertion-ordered mapping of port name to
// PortReader and exposes Get, producing one firing per call.
type InputCombinator interface {
	// AddPort registers a port under name, preserving insertion order.
	AddPort(name string, port PortReader)
	// Get returns the next firing: either a non-terminal token list with
	// one entry per registered port (in registration order), or a
	// singleton TerminationToken list once the combinator has fully
	// terminated. Behaviour after that point is unspecified.
	Get(ctx context.Context) ([]contract.Token, error)
}
