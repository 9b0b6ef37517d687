package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFromRows(t *testing.T) {
	es, err := FromRows([][]float64{
		{1, 0, 2, 0.5},
		{0, 3, 1, 0.25},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, es.Len())
	assert.Equal(t, Edge{Day: 0, Origin: 3, Destination: 1, Time: 0.25}, es.Edge(1))
	assert.Equal(t, 3, es.MaxNode())
	assert.Equal(t, 1, es.OutOfRange(3))
}

func TestFromRowsShapeMismatch(t *testing.T) {
	_, err := FromRows([][]float64{{1, 0, 2}})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = FromMatrix(mat.NewDense(2, 3, nil))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFromRowsRejectsFractionalIDs(t *testing.T) {
	_, err := FromRows([][]float64{{1, 0.5, 2, 1}})
	assert.ErrorIs(t, err, ErrNotInteger)
}

func TestMatrixRoundTrip(t *testing.T) {
	m := mat.NewDense(3, 4, []float64{
		0, 1, 2, 0.1,
		0, 2, 1, 0.2,
		1, 0, 0, 0.3,
	})
	es, err := FromMatrix(m)
	require.NoError(t, err)
	assert.True(t, mat.Equal(m, es.Matrix()))
	assert.Nil(t, NewEdgeSet(nil).Matrix())
}

func TestReadWrite(t *testing.T) {
	input := `# day origin dest time
0 1 2 0.5

0	2 3 0.75
1,3,1,0.1
`
	es, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, es.Len())
	assert.Equal(t, Edge{Day: 1, Origin: 3, Destination: 1, Time: 0.1}, es.Edge(2))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, es))
	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, es.Edges(), back.Edges())
}

func TestReadShapeMismatch(t *testing.T) {
	_, err := Read(strings.NewReader("0 1 2 0.5\n0 1 2\n"))
	assert.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "line 2")

	_, err = Read(strings.NewReader("0 1 x 0.5\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.txt")
	require.NoError(t, os.WriteFile(path, []byte("2 0 1 0.5\n"), 0644))

	es, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, es.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDayIndex(t *testing.T) {
	// Rows of day 5 are not contiguous in the input; the index keeps input order.
	es, err := FromRows([][]float64{
		{5, 0, 1, 0.1},
		{2, 0, 1, 0.2},
		{5, 1, 2, 0.3},
		{9, 1, 2, 0.4},
		{5, 2, 0, 0.5},
	})
	require.NoError(t, err)

	idx := NewDayIndex(es)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []int{2, 5, 9}, idx.Days())

	span, ok := idx.Span(5)
	require.True(t, ok)
	assert.Equal(t, []int{0, 2, 4}, span.Rows)

	_, ok = idx.Span(3)
	assert.False(t, ok)

	qualifying := idx.AtLeast(2)
	require.Len(t, qualifying, 1)
	assert.Equal(t, 5, qualifying[0].Day)
	assert.Len(t, idx.AtLeast(1), 3)
	assert.Equal(t, map[int]int{2: 1, 5: 3, 9: 1}, idx.Counts())
}

func TestSplitByDay(t *testing.T) {
	var rows [][]float64
	for d := 0; d < 10; d++ {
		rows = append(rows, []float64{float64(d), 0, 1, 0.5}, []float64{float64(d), 1, 0, 0.6})
	}
	es, err := FromRows(rows)
	require.NoError(t, err)

	train, test, err := SplitByDay(es, 0.5)
	require.NoError(t, err)
	// threshold = days[5] = 5, inclusive.
	assert.Equal(t, 12, train.Len())
	assert.Equal(t, 8, test.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, NewDayIndex(train).Days())

	train, test, err = SplitByDay(es, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, train.Len())
	assert.Equal(t, 18, test.Len())

	_, _, err = SplitByDay(es, 1)
	assert.ErrorIs(t, err, ErrInvalidRatio)
	_, _, err = SplitByDay(NewEdgeSet(nil), 0.5)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCalendar(t *testing.T) {
	assert.Equal(t, time.Sunday, Weekday(0))
	assert.Equal(t, time.Monday, Weekday(1))
	assert.Equal(t, time.Saturday, Weekday(6))
	assert.True(t, IsWeekend(0))
	assert.False(t, IsWeekend(1))
	assert.True(t, IsWeekend(6))
	assert.True(t, IsWeekend(7))
	assert.Equal(t, time.Date(2016, time.June, 1, 0, 0, 0, 0, time.UTC), Date(31))
}

func TestNodesToEdge(t *testing.T) {
	const n = 91
	for _, p := range [][2]int{{0, 0}, {3, 7}, {90, 90}, {12, 0}} {
		e := NodesToEdge(p[0], p[1], n)
		v, u := EdgeToNodes(e, n)
		assert.Equal(t, p, [2]int{v, u})
	}
}
