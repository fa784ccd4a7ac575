package combinator

import (
	"context"
	"sync"

	"github.com/streamflow-go/engine/pkg/contract"
)

// CartesianProduct merges N streams into every combination seen so far: the
// first firing pairs the initial token from each port; every subsequent
// token received on port P is combined with the latest token lists of every
// other port, preserving port order. A single terminal firing is emitted
// once every port has terminated.
type CartesianProduct struct {
	name  string
	names []string
	ports []PortReader

	initOnce sync.Once
	initErr  error

	mu         sync.Mutex
	tokenLists map[string][]contract.Token
	terminated map[string]bool

	qmu   sync.Mutex
	queue []queueItem
	notCh chan struct{}
}

type queueItem struct {
	firing []contract.Token
	err    error
}

// NewCartesianProduct builds an empty CartesianProduct combinator
// identified by name (used to tag its terminal token).
func NewCartesianProduct(name string) *CartesianProduct {
	return &CartesianProduct{
		name:       name,
		tokenLists: make(map[string][]contract.Token),
		terminated: make(map[string]bool),
		notCh:      make(chan struct{}, 1),
	}
}

func (c *CartesianProduct) AddPort(name string, port PortReader) {
	c.names = append(c.names, name)
	c.ports = append(c.ports, port)
}

func (c *CartesianProduct) Get(ctx context.Context) ([]contract.Token, error) {
	c.initOnce.Do(func() {
		c.initErr = c.initialize(ctx)
	})
	if c.initErr != nil {
		return nil, c.initErr
	}
	return c.dequeue(ctx)
}

func (c *CartesianProduct) initialize(ctx context.Context) error {
	tokens := make([]contract.Token, len(c.ports))
	errs := make([]error, len(c.ports))
	var wg sync.WaitGroup
	for i, p := range c.ports {
		wg.Add(1)
		go func(i int, p PortReader) {
			defer wg.Done()
			tok, err := p.Get(ctx)
			tokens[i] = tok
			errs[i] = err
		}(i, p)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	if contract.AllTerminated(tokens) {
		c.enqueue(queueItem{firing: []contract.Token{contract.NewTerminationToken(c.name)}})
		return nil
	}

	for i, name := range c.names {
		c.tokenLists[name] = append(c.tokenLists[name], tokens[i])
	}
	c.enqueue(queueItem{firing: append([]contract.Token(nil), tokens...)})

	go c.multiply(ctx)
	return nil
}

type readResult struct {
	name string
	tok  contract.Token
	err  error
}

func (c *CartesianProduct) multiply(ctx context.Context) {
	// Buffered to the port count: at most one spawn is in flight per port at
	// any time, so a send here never blocks even if multiply has already
	// returned (port error, or every port terminated) and nobody is left
	// reading results.
	results := make(chan readResult, len(c.names))
	spawn := func(name string, port PortReader) {
		go func() {
			tok, err := port.Get(ctx)
			results <- readResult{name: name, tok: tok, err: err}
		}()
	}
	for i, name := range c.names {
		spawn(name, c.ports[i])
	}

	for {
		r := <-results
		if r.err != nil {
			c.enqueue(queueItem{err: r.err})
			return
		}

		if r.tok.IsTermination() {
			c.mu.Lock()
			c.terminated[r.name] = true
			done := len(c.terminated) == len(c.names)
			c.mu.Unlock()
			if done {
				c.enqueue(queueItem{firing: []contract.Token{contract.NewTerminationToken(c.name)}})
				return
			}
			continue
		}

		c.mu.Lock()
		firings := cartesianWith(c.names, c.tokenLists, r.name, r.tok)
		c.tokenLists[r.name] = append(c.tokenLists[r.name], r.tok)
		c.mu.Unlock()

		for _, f := range firings {
			c.enqueue(queueItem{firing: f})
		}

		idx := portIndex(c.names, r.name)
		spawn(r.name, c.ports[idx])
	}
}

// cartesianWith computes [tokenLists[Q] for Q != pinned] x [pinnedTok],
// preserving names order, with pinned's slot fixed to the singleton
// containing pinnedTok.
func cartesianWith(names []string, tokenLists map[string][]contract.Token, pinned string, pinnedTok contract.Token) [][]contract.Token {
	lists := make([][]contract.Token, len(names))
	for i, name := range names {
		if name == pinned {
			lists[i] = []contract.Token{pinnedTok}
		} else {
			lists[i] = tokenLists[name]
		}
	}

	result := [][]contract.Token{{}}
	for _, list := range lists {
		var next [][]contract.Token
		for _, partial := range result {
			for _, tok := range list {
				combo := append(append([]contract.Token(nil), partial...), tok)
				next = append(next, combo)
			}
		}
		result = next
	}
	return result
}

func portIndex(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func (c *CartesianProduct) enqueue(item queueItem) {
	c.qmu.Lock()
	c.queue = append(c.queue, item)
	c.qmu.Unlock()
	select {
	case c.notCh <- struct{}{}:
	default:
	}
}

func (c *CartesianProduct) dequeue(ctx context.Context) ([]contract.Token, error) {
	for {
		c.qmu.Lock()
		if len(c.queue) > 0 {
			item := c.queue[0]
			c.queue = c.queue[1:]
			c.qmu.Unlock()
			return item.firing, item.err
		}
		c.qmu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.notCh:
		}
	}
}
