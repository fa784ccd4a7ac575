package combinator

import (
	"context"
	"sync"

	"github.com/streamflow-go/engine/pkg/contract"
)

// DotProduct merges N streams element-wise: the k-th firing pairs the k-th
// token from every port. Once any read round comes back all-terminated, a
// single terminal firing is returned and the combinator is done.
type DotProduct struct {
	names []string
	ports []PortReader

	mu         sync.Mutex
	terminated bool
}

// NewDotProduct builds an empty DotProduct combinator.
func NewDotProduct() *DotProduct {
	return &DotProduct{}
}

func (d *DotProduct) AddPort(name string, port PortReader) {
	d.names = append(d.names, name)
	d.ports = append(d.ports, port)
}

func (d *DotProduct) Get(ctx context.Context) ([]contract.Token, error) {
	d.mu.Lock()
	if d.terminated {
		d.mu.Unlock()
		return []contract.Token{contract.NewTerminationToken("")}, nil
	}
	d.mu.Unlock()

	tokens := make([]contract.Token, len(d.ports))
	errs := make([]error, len(d.ports))
	var wg sync.WaitGroup
	for i, p := range d.ports {
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
			return nil, err
		}
	}

	if contract.AllTerminated(tokens) {
		d.mu.Lock()
		d.terminated = true
		d.mu.Unlock()
		return []contract.Token{contract.NewTerminationToken("")}, nil
	}
	return tokens, nil
}
