package connector

import "context"

// LocalConnector runs commands as plain subprocesses on the same host the
// engine process runs on, using LocalLocation as its only resource.
type LocalConnector struct {
	BaseConnector
}

// NewLocalConnector builds a connector that executes directly on the local
// filesystem and process table.
func NewLocalConnector(transferBufferSize int) *LocalConnector {
	c := &LocalConnector{}
	c.BaseConnector = BaseConnector{Builder: c, TransferBufferSize: transferBufferSize}
	return c
}

func (c *LocalConnector) Shell() string { return "sh" }

func (c *LocalConnector) BuildRunCommand(command string, _ Location, _ bool) []string {
	return []string{"/bin/sh", "-c", command}
}

func (c *LocalConnector) Deploy(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isDeployed = true
	return nil
}

func (c *LocalConnector) Undeploy(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isDeployed = false
	return nil
}

func (c *LocalConnector) GetAvailableResources(_ context.Context, _ string) ([]Location, error) {
	return []Location{LocalLocation}, nil
}
