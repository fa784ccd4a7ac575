package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/streamflow-go/engine/pkg/connector"
	"github.com/streamflow-go/engine/pkg/metrics"
)

// mapDeploymentManager is the simplest contract.DeploymentManager: one
// pre-built Connector per model name, deployed idempotently on first use
// and shared by every task that targets it. Deploy is serialized per model
// so two firings of the same task (or two tasks sharing a Target.Model)
// racing into Deploy at once can't both observe "not yet deployed" and
// both call through to the underlying connector.
type mapDeploymentManager struct {
	connectors map[string]connector.Connector

	mu          sync.Mutex
	deployed    map[string]bool
	deployLocks map[string]*sync.Mutex
}

func (d *mapDeploymentManager) lockFor(modelName string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deployLocks == nil {
		d.deployLocks = make(map[string]*sync.Mutex)
	}
	l, ok := d.deployLocks[modelName]
	if !ok {
		l = &sync.Mutex{}
		d.deployLocks[modelName] = l
	}
	return l
}

func (d *mapDeploymentManager) Deploy(ctx context.Context, modelName string) error {
	conn, ok := d.connectors[modelName]
	if !ok {
		return fmt.Errorf("no connector configured for deployment %s", modelName)
	}

	l := d.lockFor(modelName)
	l.Lock()
	defer l.Unlock()

	d.mu.Lock()
	alreadyDeployed := d.deployed[modelName]
	d.mu.Unlock()
	if alreadyDeployed {
		return nil
	}

	if err := conn.Deploy(ctx); err != nil {
		metrics.UpdateComponent("connector", false, fmt.Sprintf("deploying %s: %v", modelName, err))
		return err
	}

	d.mu.Lock()
	if d.deployed == nil {
		d.deployed = make(map[string]bool)
	}
	d.deployed[modelName] = true
	d.mu.Unlock()
	metrics.DeploymentsActive.WithLabelValues(modelName).Set(1)
	metrics.UpdateComponent("connector", true, "")
	return nil
}

func (d *mapDeploymentManager) Undeploy(ctx context.Context, modelName string) error {
	conn, ok := d.connectors[modelName]
	if !ok {
		return fmt.Errorf("no connector configured for deployment %s", modelName)
	}
	if err := conn.Undeploy(ctx); err != nil {
		return err
	}

	d.mu.Lock()
	delete(d.deployed, modelName)
	d.mu.Unlock()
	metrics.DeploymentsActive.WithLabelValues(modelName).Set(0)
	return nil
}

func (d *mapDeploymentManager) Connector(modelName string) (connector.Connector, error) {
	conn, ok := d.connectors[modelName]
	if !ok {
		return nil, fmt.Errorf("no connector configured for deployment %s", modelName)
	}
	return conn, nil
}
