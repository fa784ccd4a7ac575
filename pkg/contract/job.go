package contract

import "github.com/streamflow-go/engine/pkg/connector"

// TaskRef is the minimal view of a Task a Job needs to carry a back
// reference without pkg/contract importing pkg/workflow (which itself
// depends on pkg/contract for Token/Job/the collaborator interfaces).
type TaskRef interface {
	TaskName() string
}

// Job is created per combinator firing. Mutable only by the task runner
// that owns it; destroyed once its output tokens have been emitted.
type Job struct {
	Name             string
	Task             TaskRef
	Inputs           []Token
	InputDirectory   string
	OutputDirectory  string
	Resource         string
	Connector        connector.Connector
	Location         string
}
