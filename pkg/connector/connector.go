// Package connector defines the uniform copy/run contract every concrete
// execution backend (local shell, Kubernetes pod, other remote environment)
// implements, plus the BaseConnector streaming tar-transfer engine used by
// the local connector and the WriteTar/ExtractTarStream helpers shared by
// all of them.
package connector

import (
	"context"
	"time"
)

// LocalLocation is the sentinel resource identifier for the in-process
// filesystem, used as a Location when no remote target applies.
const LocalLocation = "__LOCAL__"

// CopyKind selects the direction and topology of a Copy invocation.
type CopyKind int

const (
	LocalToRemote CopyKind = iota
	RemoteToLocal
	RemoteToRemote
)

func (k CopyKind) String() string {
	switch k {
	case LocalToRemote:
		return "LOCAL_TO_REMOTE"
	case RemoteToLocal:
		return "REMOTE_TO_LOCAL"
	case RemoteToRemote:
		return "REMOTE_TO_REMOTE"
	default:
		return "UNKNOWN"
	}
}

// Location identifies one execution endpoint within a deployment (for the
// Kubernetes connector: "<pod-name>:<container-name>").
type Location string

// EnvVar is a single exported environment variable for a RunOptions.
type EnvVar struct {
	Name  string
	Value string
}

// RunOptions carries the assembled parameters of a single remote command
// invocation, mirroring the structured request in spec §4.1/§4.2.
type RunOptions struct {
	Command       []string
	Env           []EnvVar
	Workdir       string
	Stdin         string
	Stdout        string
	Stderr        string
	CaptureOutput bool
	Timeout       time.Duration
	JobName       string
}

// RunResult is returned only when CaptureOutput is set: the trimmed,
// decoded stdout and the process exit code.
type RunResult struct {
	Stdout   string
	ExitCode int
}

// CopyRequest describes one Copy invocation. SourceConnector/SourceLocation
// are mandatory for RemoteToRemote and ignored otherwise.
type CopyRequest struct {
	Src             string
	Dst             string
	Locations       []Location
	Kind            CopyKind
	SourceConnector Connector
	SourceLocation  Location
	ReadOnly        bool
}

// Connector is the uniform contract a concrete execution backend satisfies.
// Instances are long-lived, shared across tasks targeting the same
// deployment, and must be safe for concurrent invocation.
type Connector interface {
	// Run executes a command on location, optionally capturing output.
	Run(ctx context.Context, location Location, opts RunOptions) (*RunResult, error)
	// Copy transfers a filesystem tree per req's kind and topology.
	Copy(ctx context.Context, req CopyRequest) error
	// Deploy materializes the backend's execution environment.
	Deploy(ctx context.Context) error
	// Undeploy tears the backend down and releases cached client handles.
	Undeploy(ctx context.Context) error
	// GetAvailableResources returns the locations currently serving the
	// named service within this deployment.
	GetAvailableResources(ctx context.Context, service string) ([]Location, error)
}
