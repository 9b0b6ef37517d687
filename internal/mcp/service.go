package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/tempwalk/pkg/dataset"
	"github.com/sanonone/tempwalk/pkg/walk"
)

const (
	defaultBins       = 10
	maxBatchesPerCall = 16
)

type Service struct {
	edges *dataset.EdgeSet

	mu     sync.Mutex
	walker *walk.Walker
}

func NewService(edges *dataset.EdgeSet, w *walk.Walker) *Service {
	return &Service{
		edges:  edges,
		walker: w,
	}
}

// --- Tool Handlers ---

func (s *Service) SampleWalks(ctx context.Context, req *mcp.CallToolRequest, args SampleWalksArgs) (*mcp.CallToolResult, SampleWalksResult, error) {
	n := args.Batches
	if n <= 0 {
		n = 1
	}
	if n > maxBatchesPerCall {
		return nil, SampleWalksResult{}, fmt.Errorf("batches must be at most %d, got %d", maxBatchesPerCall, n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := SampleWalksResult{Seed: s.walker.Seed()}
	for range n {
		b, err := s.walker.Next(ctx)
		if err != nil {
			return nil, SampleWalksResult{}, err
		}
		res.Shape = b.Shape()
		res.Walks = append(res.Walks, b.Slices())
	}
	return nil, res, nil
}

func (s *Service) DescribeDataset(ctx context.Context, req *mcp.CallToolRequest, args DescribeDatasetArgs) (*mcp.CallToolResult, DescribeDatasetResult, error) {
	bins := args.Bins
	if bins <= 0 {
		bins = defaultBins
	}

	sum := dataset.Summarize(s.edges)
	cfg := s.walker.Sampler().Config()
	res := DescribeDatasetResult{
		Edges:          sum.Edges,
		Days:           sum.Days,
		QualifyingDays: len(s.walker.Sampler().QualifyingDays()),
		MaxNode:        sum.MaxNode,
		MinTime:        sum.MinTime,
		MaxTime:        sum.MaxTime,
		WeekendEdges:   sum.Weekend,
		Policy:         cfg.Policy.String(),
		RWLen:          cfg.RWLen,
		BatchSize:      cfg.BatchSize,
	}
	// A single distinct timestamp leaves no range to bin.
	if sum.MinTime < sum.MaxTime {
		hist, err := dataset.TimeHistogram(s.edges.Times, sum.MinTime, sum.MaxTime, bins)
		if err != nil {
			return nil, DescribeDatasetResult{}, err
		}
		res.TimeHistogram = hist
	}
	return nil, res, nil
}
