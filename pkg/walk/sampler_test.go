package walk

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/tempwalk/pkg/dataset"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func mustEdges(t *testing.T, rows [][]float64) *dataset.EdgeSet {
	t.Helper()
	es, err := dataset.FromRows(rows)
	require.NoError(t, err)
	return es
}

// gridEdges builds days 0..len(counts)-1 where day d has counts[d] edges at
// times d*100+k, so every timestamp identifies its day and position.
func gridEdges(t *testing.T, counts []int) *dataset.EdgeSet {
	t.Helper()
	var rows [][]float64
	for d, c := range counts {
		for k := 0; k < c; k++ {
			rows = append(rows, []float64{float64(d), float64(k % 5), float64((k + 1) % 5), float64(d*100 + k)})
		}
	}
	return mustEdges(t, rows)
}

func TestSampleWorkedExample(t *testing.T) {
	es := mustEdges(t, [][]float64{
		{0, 0, 1, 1.0},
		{0, 1, 2, 2.0},
		{0, 2, 3, 3.0},
	})
	cfg := DefaultConfig()
	cfg.RWLen = 2
	cfg.BatchSize = 200
	cfg.TEnd = 5

	s, err := NewSampler(es, cfg)
	require.NoError(t, err)

	b, err := s.Sample(context.Background(), testRNG(7))
	require.NoError(t, err)
	require.Equal(t, [3]int{200, 3, 3}, b.Shape())

	first := [][]float64{{1, 0, 5}, {0, 1, 4}, {1, 2, 3}}
	last := [][]float64{{0, 1, 4}, {1, 2, 3}, {2, 3, 2}}

	seen := map[bool]int{}
	for i, walk := range b.Slices() {
		switch walk[0][0] {
		case 1:
			assert.Equal(t, first, walk, "walk %d", i)
			seen[true]++
		default:
			assert.Equal(t, last, walk, "walk %d", i)
			seen[false]++
		}
	}
	assert.Positive(t, seen[true])
	assert.Positive(t, seen[false])
}

func TestSampleDayWithExactlyRWLenEdges(t *testing.T) {
	es := mustEdges(t, [][]float64{
		{3, 0, 1, 0.2},
		{3, 1, 0, 0.4},
		{3, 0, 2, 0.6},
	})
	cfg := DefaultConfig()
	cfg.RWLen = 3
	cfg.BatchSize = 10
	cfg.TEnd = 1

	s, err := NewSampler(es, cfg)
	require.NoError(t, err)
	b, err := s.Sample(context.Background(), testRNG(1))
	require.NoError(t, err)

	for i := 0; i < b.Size; i++ {
		m := b.Meta(i)
		assert.True(t, m.Start)
		assert.True(t, m.End)
		assert.Equal(t, 1.0, m.TRes0)
		assert.InDeltaSlice(t, []float64{0, 1, 0.8}, b.Walk(i).RawRowView(1), 1e-12)
		assert.InDeltaSlice(t, []float64{0, 2, 0.4}, b.Walk(i).RawRowView(3), 1e-12)
	}
}

func TestSampleFlagsMatchOffsets(t *testing.T) {
	counts := []int{2, 9, 4, 6, 1, 12}
	es := gridEdges(t, counts)

	for _, p := range allPolicies {
		cfg := DefaultConfig()
		cfg.RWLen = 4
		cfg.BatchSize = 500
		cfg.TEnd = 1000
		cfg.Policy = p

		s, err := NewSampler(es, cfg)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 5}, s.QualifyingDays())

		b, err := s.Sample(context.Background(), testRNG(99))
		require.NoError(t, err)

		for i := 0; i < b.Size; i++ {
			firstT := cfg.TEnd - b.At(i, 1, ColTime)
			day, offset := int(firstT)/100, int(firstT)%100
			n := counts[day] - cfg.RWLen + 1
			m := b.Meta(i)

			assert.Equal(t, offset == 0, m.Start, "policy %s walk %d", p, i)
			assert.Equal(t, offset == n-1, m.End, "policy %s walk %d", p, i)
			if offset == 0 {
				assert.Equal(t, cfg.TEnd, m.TRes0)
			} else {
				assert.Equal(t, cfg.TEnd-float64(day*100+offset-1), m.TRes0)
			}
			for r := 1; r <= cfg.RWLen; r++ {
				assert.Equal(t, cfg.TEnd-float64(day*100+offset+r-1), b.At(i, r, ColTime))
			}
		}
	}
}

func TestSampleExpFavorsFirstOffset(t *testing.T) {
	es := gridEdges(t, []int{30})
	cfg := DefaultConfig()
	cfg.RWLen = 2
	cfg.BatchSize = 5000
	cfg.TEnd = 100

	starts := func(p Policy) int {
		cfg.Policy = p
		s, err := NewSampler(es, cfg)
		require.NoError(t, err)
		b, err := s.Sample(context.Background(), testRNG(3))
		require.NoError(t, err)
		c := 0
		for i := 0; i < b.Size; i++ {
			if b.Meta(i).Start {
				c++
			}
		}
		return c
	}
	assert.Greater(t, starts(PolicyExp), starts(PolicyUniform))
}

func TestFillPadsWithStopRows(t *testing.T) {
	es := gridEdges(t, []int{2})
	cfg := DefaultConfig()
	cfg.RWLen = 4
	cfg.TEnd = 10
	s := &Sampler{cfg: cfg, edges: es}

	dst := make([]float64, (cfg.RWLen+1)*Width)
	s.fill(dst, dataset.DaySpan{Day: 0, Rows: []int{0, 1}}, 0)

	b := &Batch{Size: 1, WalkLen: cfg.RWLen, Data: dst}
	assert.Equal(t, [][]float64{
		{1, 0, 10},
		{0, 1, 10},
		{1, 2, 9},
		{Stop, Stop, Stop},
		{Stop, Stop, Stop},
	}, b.Slices()[0])
	assert.Len(t, b.Edges(0), 2)
}

func TestNewSamplerInsufficientData(t *testing.T) {
	es := gridEdges(t, []int{2, 3, 1})
	cfg := DefaultConfig()
	cfg.RWLen = 4

	_, err := NewSampler(es, cfg)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = NewSampler(dataset.NewEdgeSet(nil), DefaultConfig())
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestNewSamplerRejectsReservedModes(t *testing.T) {
	es := gridEdges(t, []int{10})
	for _, flags := range [][2]bool{{true, false}, {false, true}, {true, true}} {
		cfg := DefaultConfig()
		cfg.Mode = ModeFromFlags(flags[0], flags[1])
		s, err := NewSampler(es, cfg)
		assert.ErrorIs(t, err, ErrNotImplemented)
		assert.Nil(t, s)
	}
}

func TestNewSamplerInvalidConfig(t *testing.T) {
	es := gridEdges(t, []int{10})
	for name, mutate := range map[string]func(*Config){
		"policy":     func(c *Config) { c.Policy = Policy(7) },
		"rw_len":     func(c *Config) { c.RWLen = 0 },
		"batch_size": func(c *Config) { c.BatchSize = -1 },
		"n_nodes":    func(c *Config) { c.NNodes = -3 },
	} {
		cfg := DefaultConfig()
		mutate(&cfg)
		_, err := NewSampler(es, cfg)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, name)
	}
}

func TestNewSamplerOutOfRangeNodesIsAdvisory(t *testing.T) {
	es := gridEdges(t, []int{10})
	cfg := DefaultConfig()
	cfg.NNodes = 2
	_, err := NewSampler(es, cfg)
	assert.NoError(t, err)
}

func TestSampleCanceled(t *testing.T) {
	s, err := NewSampler(gridEdges(t, []int{10}), DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b, err := s.Sample(ctx, testRNG(1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, b)
}

func TestSampleConcurrentStreams(t *testing.T) {
	s, err := NewSampler(gridEdges(t, []int{10, 20, 30}), DefaultConfig())
	require.NoError(t, err)

	want, err := s.Sample(context.Background(), testRNG(42))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Batch, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = s.Sample(context.Background(), testRNG(42))
		}()
	}
	wg.Wait()
	for _, got := range results {
		require.NotNil(t, got)
		assert.Equal(t, want.Data, got.Data)
	}
}

func TestResidualIsSelfInverse(t *testing.T) {
	for _, x := range []float64{0, 0.25, 3.5, -2, 1e6} {
		assert.Equal(t, x, Residual(7.5, Residual(7.5, x)))
	}
}

func TestDrawOffsetFollowsPolicyWithoutAllocating(t *testing.T) {
	// Days of 5, 5 and 7 edges give offset counts 4 and 6; day 3 gives one.
	es := gridEdges(t, []int{5, 5, 7, 2})
	cfg := DefaultConfig()
	cfg.RWLen = 2
	cfg.Policy = PolicyLinear

	s, err := NewSampler(es, cfg)
	require.NoError(t, err)
	assert.Len(t, s.cdfs, 2)
	assert.Contains(t, s.cdfs, 4)
	assert.Contains(t, s.cdfs, 6)
	assert.InDelta(t, 1.0, s.cdfs[6][5], 1e-12)

	rng := testRNG(8)
	assert.Zero(t, testing.AllocsPerRun(100, func() { s.drawOffset(5, rng) }))
	assert.Zero(t, s.drawOffset(2, rng))

	const draws = 40000
	counts := make([]int, 4)
	for range draws {
		counts[s.drawOffset(5, rng)]++
	}
	want, err := StartProbs(4, PolicyLinear)
	require.NoError(t, err)
	for i, c := range counts {
		assert.InDelta(t, want[i], float64(c)/draws, 0.015, "offset %d", i)
	}
}
