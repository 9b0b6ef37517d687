package dataset

import (
	"github.com/tidwall/btree"
)

// DaySpan lists the rows of one day, in input order.
type DaySpan struct {
	Day  int
	Rows []int
}

// Len returns the number of edges of the day.
func (s DaySpan) Len() int { return len(s.Rows) }

// DayIndex groups the rows of an EdgeSet by day.
// Days are kept in ascending order so that iteration, and any sampling that
// depends on it, is deterministic.
type DayIndex struct {
	days btree.Map[int, DaySpan]
}

// NewDayIndex builds the day index of es in a single pass.
func NewDayIndex(es *EdgeSet) *DayIndex {
	idx := &DayIndex{}
	for i := 0; i < es.Len(); i++ {
		day := es.Days[i]
		span, _ := idx.days.Get(day)
		span.Day = day
		span.Rows = append(span.Rows, i)
		idx.days.Set(day, span)
	}
	return idx
}

// Len returns the number of distinct days.
func (idx *DayIndex) Len() int { return idx.days.Len() }

// Days returns the distinct days in ascending order.
func (idx *DayIndex) Days() []int {
	out := make([]int, 0, idx.days.Len())
	idx.days.Scan(func(day int, _ DaySpan) bool {
		out = append(out, day)
		return true
	})
	return out
}

// Span returns the rows of the given day.
func (idx *DayIndex) Span(day int) (DaySpan, bool) {
	return idx.days.Get(day)
}

// AtLeast returns, in ascending day order, the days that have at least minEdges edges.
func (idx *DayIndex) AtLeast(minEdges int) []DaySpan {
	var out []DaySpan
	idx.days.Scan(func(_ int, span DaySpan) bool {
		if span.Len() >= minEdges {
			out = append(out, span)
		}
		return true
	})
	return out
}

// Counts returns the number of edges per day.
func (idx *DayIndex) Counts() map[int]int {
	out := make(map[int]int, idx.days.Len())
	idx.days.Scan(func(day int, span DaySpan) bool {
		out[day] = span.Len()
		return true
	})
	return out
}
