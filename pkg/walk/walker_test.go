package walk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkerDeterministicWithSeed(t *testing.T) {
	es := gridEdges(t, []int{5, 8, 13})
	cfg := DefaultConfig()
	cfg.Seed = 1234
	cfg.Policy = PolicyLinear

	w1, err := NewWalker(es, cfg)
	require.NoError(t, err)
	w2, err := NewWalker(es, cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), w1.Seed())

	ctx := context.Background()
	for range 5 {
		b1, err := w1.Next(ctx)
		require.NoError(t, err)
		b2, err := w2.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, b1.Data, b2.Data)
	}
}

func TestWalkerReset(t *testing.T) {
	w, err := NewWalker(gridEdges(t, []int{40}), DefaultConfig())
	require.NoError(t, err)
	assert.NotZero(t, w.Seed())

	ctx := context.Background()
	var first [][]float64
	for range 3 {
		b, err := w.Next(ctx)
		require.NoError(t, err)
		first = append(first, b.Data)
	}

	w.Reset()
	for i := range 3 {
		b, err := w.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, first[i], b.Data)
	}
}

func TestWalkerBatchesIsUnbounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 3
	cfg.RWLen = 2
	w, err := NewWalker(gridEdges(t, []int{4, 6}), cfg)
	require.NoError(t, err)

	n := 0
	for b, err := range w.Batches(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, [3]int{3, 3, 3}, b.Shape())
		if n++; n == 250 {
			break
		}
	}
	assert.Equal(t, 250, n)
}

func TestWalkerBatchesStopsOnCancel(t *testing.T) {
	w, err := NewWalker(gridEdges(t, []int{10}), DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var errs []error
	n := 0
	for b, err := range w.Batches(ctx) {
		if err != nil {
			assert.Nil(t, b)
			errs = append(errs, err)
			continue
		}
		if n++; n == 3 {
			cancel()
		}
	}
	assert.Equal(t, 3, n)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestNewWalkerPropagatesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = TeleportBiased
	w, err := NewWalker(gridEdges(t, []int{10}), cfg)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Nil(t, w)
}

func TestNewWalkerWithSeedOverridesConfig(t *testing.T) {
	es := gridEdges(t, []int{6, 9})
	cfg := DefaultConfig()
	cfg.Seed = 1234

	base, err := NewWalker(es, cfg)
	require.NoError(t, err)
	other := NewWalkerWithSeed(base.Sampler(), 99)
	assert.Equal(t, uint64(99), other.Seed())
	assert.NotZero(t, NewWalkerWithSeed(base.Sampler(), 0).Seed())

	cfg.Seed = 99
	want, err := NewWalker(es, cfg)
	require.NoError(t, err)

	ctx := context.Background()
	b1, err := other.Next(ctx)
	require.NoError(t, err)
	b2, err := want.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, b2.Data, b1.Data)
}
