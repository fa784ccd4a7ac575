package combinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotProductEmitsOneFiringPerElement(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d := NewDotProduct()
	d.AddPort("a", newFakePort("a", []string{"a1", "a2"}))
	d.AddPort("b", newFakePort("b", []string{"b1", "b2"}))

	for i := 0; i < 2; i++ {
		firing, err := d.Get(ctx)
		require.NoError(t, err)
		require.Len(t, firing, 2)
		assert.False(t, firing[0].IsTermination())
		assert.False(t, firing[1].IsTermination())
	}

	terminal, err := d.Get(ctx)
	require.NoError(t, err)
	require.Len(t, terminal, 1)
	assert.True(t, terminal[0].IsTermination())
}

func TestDotProductTwoPortEcho(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d := NewDotProduct()
	d.AddPort("A", newFakePort("A", []string{"a1"}))
	d.AddPort("B", newFakePort("B", []string{"b1"}))

	firing, err := d.Get(ctx)
	require.NoError(t, err)
	require.Len(t, firing, 2)
	assert.Equal(t, "a1", firing[0].Value)
	assert.Equal(t, "b1", firing[1].Value)

	terminal, err := d.Get(ctx)
	require.NoError(t, err)
	assert.True(t, terminal[0].IsTermination())
}
