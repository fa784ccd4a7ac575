package combinator

import (
	"context"

	"github.com/streamflow-go/engine/pkg/contract"
)

// fakePort replays a fixed sequence of tokens followed by a TerminationToken,
// then blocks until ctx is done.
type fakePort struct {
	name   string
	tokens chan contract.Token
}

func newFakePort(name string, values []string) *fakePort {
	ch := make(chan contract.Token, len(values)+1)
	for i, v := range values {
		ch <- contract.Token{Name: name, Tag: "0." + string(rune('0'+i)), Value: v}
	}
	ch <- contract.NewTerminationToken(name)
	return &fakePort{name: name, tokens: ch}
}

func (p *fakePort) Get(ctx context.Context) (contract.Token, error) {
	select {
	case tok := <-p.tokens:
		return tok, nil
	case <-ctx.Done():
		return contract.Token{}, ctx.Err()
	}
}
