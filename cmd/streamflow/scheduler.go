package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/streamflow-go/engine/pkg/contract"
	"github.com/streamflow-go/engine/pkg/log"
	"github.com/streamflow-go/engine/pkg/metrics"
)

// roundRobinScheduler assigns each job the next available resource for its
// deployment's service, cycling through whatever GetAvailableResources
// returns. Resource allocation policy is out of scope for the engine core
// (spec.md §1 Non-goals); this is the minimal default the CLI needs to run
// a manifest end to end.
type roundRobinScheduler struct {
	mu      sync.Mutex
	cursors map[string]*atomic.Uint64
}

func newRoundRobinScheduler() *roundRobinScheduler {
	return &roundRobinScheduler{cursors: make(map[string]*atomic.Uint64)}
}

func (s *roundRobinScheduler) Schedule(ctx context.Context, job *contract.Job) error {
	if job.Connector == nil {
		return fmt.Errorf("scheduling job %s: no connector resolved", job.Name)
	}

	locations, err := job.Connector.GetAvailableResources(ctx, job.Resource)
	if err != nil {
		metrics.UpdateComponent("scheduler", false, fmt.Sprintf("listing resources for %s: %v", job.Resource, err))
		return fmt.Errorf("listing resources for job %s: %w", job.Name, err)
	}
	if len(locations) == 0 {
		metrics.UpdateComponent("scheduler", false, fmt.Sprintf("no resources available for %s", job.Resource))
		return fmt.Errorf("no resources available for service %q", job.Resource)
	}
	metrics.UpdateComponent("scheduler", true, "")

	cursor := s.cursorFor(job.Resource)
	idx := cursor.Add(1) % uint64(len(locations))
	job.Location = string(locations[idx])
	return nil
}

func (s *roundRobinScheduler) cursorFor(resource string) *atomic.Uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[resource]
	if !ok {
		c = &atomic.Uint64{}
		s.cursors[resource] = c
	}
	return c
}

func (s *roundRobinScheduler) NotifyStatus(ctx context.Context, jobName string, status contract.JobStatus) error {
	log.WithJobName(jobName).Info().Str("status", string(status)).Msg("job status")
	return nil
}
