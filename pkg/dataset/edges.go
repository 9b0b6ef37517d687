package dataset

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Columns is the number of columns of the edge table: day, origin, destination, timestamp.
const Columns = 4

var (
	// ErrShapeMismatch is returned when an edge table does not have exactly four columns.
	ErrShapeMismatch = errors.New("edges must have shape: samples x 4")
	// ErrNotInteger is returned when a day or node id column holds a non-integer value.
	ErrNotInteger = errors.New("day and node ids must be integer-valued")
	// ErrEmpty is returned by operations that need at least one edge.
	ErrEmpty = errors.New("edge set is empty")
)

// Edge is a single timestamped edge of the dynamic graph.
type Edge struct {
	Day         int     `json:"day"`
	Origin      int     `json:"origin"`
	Destination int     `json:"destination"`
	Time        float64 `json:"time"`
}

// EdgeSet stores edges column-wise, in input order.
// An EdgeSet is never mutated after construction and is safe for concurrent reads.
type EdgeSet struct {
	Days         []int
	Origins      []int
	Destinations []int
	Times        []float64
}

// NewEdgeSet builds an EdgeSet from edge records, preserving their order.
func NewEdgeSet(edges []Edge) *EdgeSet {
	es := &EdgeSet{
		Days:         make([]int, len(edges)),
		Origins:      make([]int, len(edges)),
		Destinations: make([]int, len(edges)),
		Times:        make([]float64, len(edges)),
	}
	for i, e := range edges {
		es.Days[i] = e.Day
		es.Origins[i] = e.Origin
		es.Destinations[i] = e.Destination
		es.Times[i] = e.Time
	}
	return es
}

// FromRows converts a numeric table [day, origin, destination, timestamp] into an EdgeSet.
func FromRows(rows [][]float64) (*EdgeSet, error) {
	edges := make([]Edge, 0, len(rows))
	for i, row := range rows {
		if len(row) != Columns {
			return nil, fmt.Errorf("row %d has %d columns: %w", i, len(row), ErrShapeMismatch)
		}
		e, err := edgeFromValues(row[0], row[1], row[2], row[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		edges = append(edges, e)
	}
	return NewEdgeSet(edges), nil
}

// FromMatrix converts a samples x 4 matrix into an EdgeSet.
func FromMatrix(m mat.Matrix) (*EdgeSet, error) {
	r, c := m.Dims()
	if c != Columns {
		return nil, fmt.Errorf("matrix has %d columns: %w", c, ErrShapeMismatch)
	}
	edges := make([]Edge, 0, r)
	for i := 0; i < r; i++ {
		e, err := edgeFromValues(m.At(i, 0), m.At(i, 1), m.At(i, 2), m.At(i, 3))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		edges = append(edges, e)
	}
	return NewEdgeSet(edges), nil
}

func edgeFromValues(day, origin, dest, t float64) (Edge, error) {
	for _, v := range [...]float64{day, origin, dest} {
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return Edge{}, fmt.Errorf("value %v: %w", v, ErrNotInteger)
		}
	}
	return Edge{Day: int(day), Origin: int(origin), Destination: int(dest), Time: t}, nil
}

// Len returns the number of edges.
func (es *EdgeSet) Len() int {
	if es == nil {
		return 0
	}
	return len(es.Days)
}

// Edge returns the i-th edge.
func (es *EdgeSet) Edge(i int) Edge {
	return Edge{
		Day:         es.Days[i],
		Origin:      es.Origins[i],
		Destination: es.Destinations[i],
		Time:        es.Times[i],
	}
}

// Edges returns a copy of all edges as records.
func (es *EdgeSet) Edges() []Edge {
	out := make([]Edge, es.Len())
	for i := range out {
		out[i] = es.Edge(i)
	}
	return out
}

// Matrix returns the edge table as a samples x 4 dense matrix.
func (es *EdgeSet) Matrix() *mat.Dense {
	if es.Len() == 0 {
		return nil
	}
	data := make([]float64, 0, es.Len()*Columns)
	for i := 0; i < es.Len(); i++ {
		data = append(data, float64(es.Days[i]), float64(es.Origins[i]), float64(es.Destinations[i]), es.Times[i])
	}
	return mat.NewDense(es.Len(), Columns, data)
}

// Filter returns a new EdgeSet with the edges for which keep returns true, in input order.
func (es *EdgeSet) Filter(keep func(Edge) bool) *EdgeSet {
	var edges []Edge
	for i := 0; i < es.Len(); i++ {
		if e := es.Edge(i); keep(e) {
			edges = append(edges, e)
		}
	}
	return NewEdgeSet(edges)
}

// MaxNode returns the largest node id appearing as origin or destination, or -1 if empty.
func (es *EdgeSet) MaxNode() int {
	maxID := -1
	for i := 0; i < es.Len(); i++ {
		maxID = max(maxID, es.Origins[i], es.Destinations[i])
	}
	return maxID
}

// OutOfRange counts the edges whose endpoints fall outside [0, nNodes).
func (es *EdgeSet) OutOfRange(nNodes int) int {
	bad := 0
	for i := 0; i < es.Len(); i++ {
		o, d := es.Origins[i], es.Destinations[i]
		if o < 0 || o >= nNodes || d < 0 || d >= nNodes {
			bad++
		}
	}
	return bad
}
