package dataset

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidRange is returned by TimeHistogram for an empty range or a non-positive bin count.
var ErrInvalidRange = errors.New("histogram needs t0 < tmax and bins > 0")

// NodePair identifies a directed (origin, destination) pair.
type NodePair struct {
	Origin      int `json:"origin"`
	Destination int `json:"destination"`
}

// EdgeTimes groups timestamps by (origin, destination) pair, in input order.
func EdgeTimes(es *EdgeSet) map[NodePair][]float64 {
	out := make(map[NodePair][]float64)
	for i := 0; i < es.Len(); i++ {
		p := NodePair{Origin: es.Origins[i], Destination: es.Destinations[i]}
		out[p] = append(out[p], es.Times[i])
	}
	return out
}

// SortedPairs returns the keys of an EdgeTimes result ordered by origin, then destination.
func SortedPairs(m map[NodePair][]float64) []NodePair {
	pairs := make([]NodePair, 0, len(m))
	for p := range m {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b NodePair) int {
		if a.Origin != b.Origin {
			return a.Origin - b.Origin
		}
		return a.Destination - b.Destination
	})
	return pairs
}

// TimeHistogram counts times into bins equal-width bins over [t0, tmax].
// Values outside the range are ignored; tmax itself falls in the last bin.
func TimeHistogram(times []float64, t0, tmax float64, bins int) ([]float64, error) {
	if bins <= 0 || !(t0 < tmax) {
		return nil, fmt.Errorf("t0=%v tmax=%v bins=%d: %w", t0, tmax, bins, ErrInvalidRange)
	}
	dividers := floats.Span(make([]float64, bins+1), t0, tmax)
	dividers[bins] = math.Nextafter(tmax, math.Inf(1))

	x := make([]float64, 0, len(times))
	for _, t := range times {
		if t >= t0 && t <= tmax {
			x = append(x, t)
		}
	}
	slices.Sort(x)
	return stat.Histogram(nil, dividers, x, nil), nil
}

// Summary describes an edge set.
type Summary struct {
	Edges    int         `json:"edges"`
	Days     int         `json:"days"`
	MaxNode  int         `json:"max_node"`
	MinTime  float64     `json:"min_time"`
	MaxTime  float64     `json:"max_time"`
	MeanTime float64     `json:"mean_time"`
	PerDay   map[int]int `json:"per_day"`
	Weekend  int         `json:"weekend_edges"`
}

// Summarize computes a Summary of es.
func Summarize(es *EdgeSet) Summary {
	idx := NewDayIndex(es)
	s := Summary{
		Edges:   es.Len(),
		Days:    idx.Len(),
		MaxNode: es.MaxNode(),
		PerDay:  idx.Counts(),
	}
	if es.Len() == 0 {
		return s
	}
	s.MinTime = floats.Min(es.Times)
	s.MaxTime = floats.Max(es.Times)
	s.MeanTime = stat.Mean(es.Times, nil)
	for day, n := range s.PerDay {
		if IsWeekend(day) {
			s.Weekend += n
		}
	}
	return s
}
