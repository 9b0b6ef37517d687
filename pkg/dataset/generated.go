package dataset

import "fmt"

// FromGenerated converts generated walks back into an edge set. graphs[d] holds
// the rows [origin, destination, residual time] produced for graph d; rows
// with a residual time <= 0, stop rows included, are dropped. The graph index
// becomes the day of the resulting edges.
func FromGenerated(graphs [][][]float64) (*EdgeSet, error) {
	var edges []Edge
	for d, rows := range graphs {
		for i, row := range rows {
			if len(row) != Columns-1 {
				return nil, fmt.Errorf("graph %d row %d has %d columns, want %d: %w",
					d, i, len(row), Columns-1, ErrShapeMismatch)
			}
			if row[2] <= 0 {
				continue
			}
			e, err := edgeFromValues(float64(d), row[0], row[1], row[2])
			if err != nil {
				return nil, fmt.Errorf("graph %d row %d: %w", d, i, err)
			}
			edges = append(edges, e)
		}
	}
	return NewEdgeSet(edges), nil
}
