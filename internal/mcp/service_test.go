package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/tempwalk/pkg/dataset"
	"github.com/sanonone/tempwalk/pkg/walk"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	es, err := dataset.FromRows([][]float64{
		{0, 1, 2, 0.1},
		{0, 2, 3, 0.2},
		{0, 3, 4, 0.3},
		{1, 4, 5, 0.6},
		{1, 5, 6, 0.9},
	})
	require.NoError(t, err)

	cfg := walk.DefaultConfig()
	cfg.RWLen = 2
	cfg.BatchSize = 3
	cfg.Seed = 3
	w, err := walk.NewWalker(es, cfg)
	require.NoError(t, err)
	return NewService(es, w)
}

func TestSampleWalks(t *testing.T) {
	s := newTestService(t)

	_, res, err := s.SampleWalks(context.Background(), nil, SampleWalksArgs{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Seed)
	assert.Equal(t, [3]int{3, 3, 3}, res.Shape)
	assert.Len(t, res.Walks, 1)

	_, res, err = s.SampleWalks(context.Background(), nil, SampleWalksArgs{Batches: 4})
	require.NoError(t, err)
	assert.Len(t, res.Walks, 4)

	_, _, err = s.SampleWalks(context.Background(), nil, SampleWalksArgs{Batches: maxBatchesPerCall + 1})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = s.SampleWalks(ctx, nil, SampleWalksArgs{Batches: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDescribeDataset(t *testing.T) {
	s := newTestService(t)

	_, res, err := s.DescribeDataset(context.Background(), nil, DescribeDatasetArgs{Bins: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Edges)
	assert.Equal(t, 2, res.Days)
	assert.Equal(t, 2, res.QualifyingDays)
	assert.Equal(t, 6, res.MaxNode)
	assert.Equal(t, 0.1, res.MinTime)
	assert.Equal(t, 0.9, res.MaxTime)
	assert.Equal(t, "uniform", res.Policy)
	require.Len(t, res.TimeHistogram, 4)

	var total float64
	for _, c := range res.TimeHistogram {
		total += c
	}
	assert.Equal(t, 5.0, total)
}
