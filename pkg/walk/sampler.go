package walk

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/sanonone/tempwalk/pkg/dataset"
)

// Sampler draws batches of temporal walks from a fixed edge set.
//
// The days that hold at least RWLen edges are enumerated once at
// construction; each walk picks one of them uniformly. This is the same
// distribution as drawing among all days and rejecting the short ones, but it
// cannot loop forever.
//
// A Sampler holds no mutable state: it is safe for concurrent use as long as
// every caller passes its own random stream.
type Sampler struct {
	cfg   Config
	edges *dataset.EdgeSet
	days  []dataset.DaySpan
	total int
	// cdfs maps a start-offset count n > 1 to the cumulative StartProbs(n).
	cdfs map[int][]float64
}

// NewSampler validates cfg against edges and indexes the qualifying days.
// It fails with ErrInsufficientData when no day has RWLen edges.
func NewSampler(edges *dataset.EdgeSet, cfg Config) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if edges.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientData, dataset.ErrEmpty)
	}
	if cfg.NNodes > 0 {
		if bad := edges.OutOfRange(cfg.NNodes); bad > 0 {
			slog.Warn("edges reference nodes outside [0, n_nodes)",
				"n_nodes", cfg.NNodes,
				"edges", bad,
			)
		}
	}

	idx := dataset.NewDayIndex(edges)
	days := idx.AtLeast(cfg.RWLen)
	if len(days) == 0 {
		return nil, fmt.Errorf("no day has at least %d edges (%d days): %w",
			cfg.RWLen, idx.Len(), ErrInsufficientData)
	}

	cdfs := make(map[int][]float64)
	for _, d := range days {
		n := d.Len() - cfg.RWLen + 1
		if _, ok := cdfs[n]; ok || n == 1 {
			continue
		}
		probs, err := StartProbs(n, cfg.Policy)
		if err != nil {
			return nil, err
		}
		cdfs[n] = floats.CumSum(probs, probs)
	}

	slog.Debug("sampler ready",
		"edges", edges.Len(),
		"days", idx.Len(),
		"qualifying_days", len(days),
		"rw_len", cfg.RWLen,
		"policy", cfg.Policy.String(),
		"offset_tables", len(cdfs),
	)

	return &Sampler{cfg: cfg, edges: edges, days: days, total: idx.Len(), cdfs: cdfs}, nil
}

// Config returns the sampler configuration.
func (s *Sampler) Config() Config { return s.cfg }

// QualifyingDays returns the days a walk can be drawn from, in ascending order.
func (s *Sampler) QualifyingDays() []int {
	out := make([]int, len(s.days))
	for i, d := range s.days {
		out[i] = d.Day
	}
	return out
}

// TotalDays returns the number of distinct days in the edge set.
func (s *Sampler) TotalDays() int { return s.total }

// Sample draws one batch of BatchSize independent walks. The context is
// checked before every walk; on cancellation no partial batch is returned.
func (s *Sampler) Sample(ctx context.Context, rng *rand.Rand) (*Batch, error) {
	b := newBatch(s.cfg.BatchSize, s.cfg.RWLen)
	for i := 0; i < b.Size; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		span := s.days[rng.IntN(len(s.days))]
		offset := s.drawOffset(span.Len(), rng)
		s.fill(b.walkData(i), span, offset)
	}
	return b, nil
}

// drawOffset picks the start of the window among the nEdges-RWLen+1 valid
// positions by inverting the precomputed cumulative weights. It does not allocate.
func (s *Sampler) drawOffset(nEdges int, rng *rand.Rand) int {
	n := nEdges - s.cfg.RWLen + 1
	if n == 1 {
		return 0
	}
	cdf := s.cdfs[n]
	u := rng.Float64() * cdf[n-1]
	return sort.Search(n-1, func(i int) bool { return cdf[i] > u })
}

// fill writes the walk starting at offset within span into dst.
func (s *Sampler) fill(dst []float64, span dataset.DaySpan, offset int) {
	tEnd := s.cfg.TEnd
	n := span.Len() - s.cfg.RWLen + 1

	tRes0 := tEnd
	if offset > 0 {
		tRes0 = tEnd - s.edges.Times[span.Rows[offset-1]]
	}
	dst[0] = boolToFloat(offset == 0)
	dst[1] = boolToFloat(offset == n-1)
	dst[2] = tRes0

	for k := 0; k < s.cfg.RWLen; k++ {
		row := dst[(k+1)*Width : (k+2)*Width]
		pos := offset + k
		if pos >= span.Len() {
			row[ColOrigin], row[ColDestination], row[ColTime] = Stop, Stop, Stop
			continue
		}
		e := span.Rows[pos]
		row[ColOrigin] = float64(s.edges.Origins[e])
		row[ColDestination] = float64(s.edges.Destinations[e])
		row[ColTime] = Residual(tEnd, s.edges.Times[e])
	}
}

// Residual converts an absolute time into the time remaining until tEnd.
// Applying it twice with the same horizon returns t.
func Residual(tEnd, t float64) float64 {
	return tEnd - t
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
