// Package workflow implements the task runner and dataflow port model:
// the C5/C6 components that drive jobs through deploy, schedule, stage,
// execute and notify, and the single-producer multi-consumer FIFO ports
// that connect tasks.
package workflow

import (
	"context"
	"sync"

	"github.com/streamflow-go/engine/pkg/contract"
)

// Port is an unbounded, ordered, single-producer multi-consumer channel.
// Put never blocks; Get suspends until a token is available or ctx is done.
type Port struct {
	Name string

	mu       sync.Mutex
	queue    []contract.Token
	notifyCh chan struct{}
}

// NewPort builds an empty port identified by name.
func NewPort(name string) *Port {
	return &Port{Name: name, notifyCh: make(chan struct{}, 1)}
}

// Put enqueues token. It never blocks.
func (p *Port) Put(token contract.Token) {
	p.mu.Lock()
	p.queue = append(p.queue, token)
	p.mu.Unlock()
	select {
	case p.notifyCh <- struct{}{}:
	default:
	}
}

// Get suspends until a token is available, returning it in FIFO order, or
// returns ctx.Err() if ctx is cancelled first.
func (p *Port) Get(ctx context.Context) (contract.Token, error) {
	for {
		p.mu.Lock()
		if len(p.queue) > 0 {
			tok := p.queue[0]
			p.queue = p.queue[1:]
			p.mu.Unlock()
			return tok, nil
		}
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return contract.Token{}, ctx.Err()
		case <-p.notifyCh:
		}
	}
}
