package dag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventNodeRequiresTrigger(t *testing.T) {
	g := New()
	_, err := g.AddEventNode("ev", constant(1), nil)
	assert.ErrorContains(t, err, "requires a trigger source")
}

func TestEventNodeTriggerGating(t *testing.T) {
	ctx := context.Background()
	g := New()

	data := 1
	dataNode, err := g.AddNode("data", func(ctx context.Context, deps []any) (any, error) {
		return data, nil
	})
	require.NoError(t, err)

	var counter uint64
	ev, err := g.AddEventNode("sample", func(ctx context.Context, deps []any) (any, error) {
		return deps[0], nil
	}, func() uint64 { return counter })
	require.NoError(t, err)
	require.NoError(t, g.AddEdge("data", "sample"))
	require.NoError(t, g.Finalize(ctx))

	t.Run("first pull computes without a trigger advance", func(t *testing.T) {
		v, err := g.Value(ctx, "sample")
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		assert.Equal(t, 1, ev.recomputes)
	})

	t.Run("data change alone does not refire", func(t *testing.T) {
		data = 2
		dataNode.Invalidate()

		v, err := g.Value(ctx, "sample")
		require.NoError(t, err)
		assert.Equal(t, 1, v, "cached sample survives upstream changes")
		assert.Equal(t, 1, ev.recomputes)
	})

	t.Run("trigger advance reads live upstream data", func(t *testing.T) {
		counter++
		v, err := g.Value(ctx, "sample")
		require.NoError(t, err)
		assert.Equal(t, 2, v, "the fire observes the current, not snapshot, dependency value")
		assert.Equal(t, 2, ev.recomputes)
	})

	t.Run("repeated pulls after a fire are cache reads", func(t *testing.T) {
		_, err := g.Value(ctx, "sample")
		require.NoError(t, err)
		assert.Equal(t, 2, ev.recomputes)
	})
}

func TestEventNodeFailedFireKeepsTriggerPending(t *testing.T) {
	ctx := context.Background()
	g := New()

	sampleErr := errors.New("nothing to sample")
	fail := false
	var counter uint64
	ev, err := g.AddEventNode("sample", func(ctx context.Context, deps []any) (any, error) {
		if fail {
			return nil, sampleErr
		}
		return "story", nil
	}, func() uint64 { return counter })
	require.NoError(t, err)
	require.NoError(t, g.Finalize(ctx))

	v, err := g.Value(ctx, "sample")
	require.NoError(t, err)
	assert.Equal(t, "story", v)

	fail = true
	counter++
	_, err = g.Value(ctx, "sample")
	assert.ErrorIs(t, err, sampleErr, "the failure surfaces to the caller")

	fail = false
	v, err = g.Value(ctx, "sample")
	require.NoError(t, err, "an unconsumed trigger retries on the next pull")
	assert.Equal(t, "story", v)
	assert.Equal(t, 2, ev.recomputes)
}
