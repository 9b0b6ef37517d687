package walk

import "gonum.org/v1/gonum/mat"

// Column layout of a walk row.
const (
	ColOrigin = iota
	ColDestination
	ColTime

	// Width is the number of columns of a walk matrix.
	Width
)

// Stop is the value written in every column of a padding row.
const Stop = -1.0

// Meta is the decoded metadata row of a walk.
type Meta struct {
	// Start is set when the window begins at the first edge of its day.
	Start bool `json:"start"`
	// End is set when the window is the last one that fits in its day.
	End bool `json:"end"`
	// TRes0 is the residual time before the window starts.
	TRes0 float64 `json:"t_res_0"`
}

// Batch is a [Size, WalkLen+1, Width] tensor stored row-major in Data.
type Batch struct {
	Size    int
	WalkLen int
	Data    []float64
}

func newBatch(size, walkLen int) *Batch {
	return &Batch{
		Size:    size,
		WalkLen: walkLen,
		Data:    make([]float64, size*(walkLen+1)*Width),
	}
}

// Shape returns [Size, WalkLen+1, Width].
func (b *Batch) Shape() [3]int {
	return [3]int{b.Size, b.WalkLen + 1, Width}
}

func (b *Batch) stride() int { return (b.WalkLen + 1) * Width }

// At returns element (i, r, c): walk i, row r, column c.
func (b *Batch) At(i, r, c int) float64 {
	return b.Data[i*b.stride()+r*Width+c]
}

// walkData returns the backing slice of walk i.
func (b *Batch) walkData(i int) []float64 {
	s := b.stride()
	return b.Data[i*s : (i+1)*s : (i+1)*s]
}

// Walk returns walk i as a (WalkLen+1) x Width matrix sharing the batch storage.
func (b *Batch) Walk(i int) *mat.Dense {
	return mat.NewDense(b.WalkLen+1, Width, b.walkData(i))
}

// Meta decodes the metadata row of walk i.
func (b *Batch) Meta(i int) Meta {
	return Meta{
		Start: b.At(i, 0, 0) == 1,
		End:   b.At(i, 0, 1) == 1,
		TRes0: b.At(i, 0, 2),
	}
}

// Edges returns the window rows of walk i, without the metadata row and
// without trailing stop rows.
func (b *Batch) Edges(i int) [][]float64 {
	var rows [][]float64
	for r := 1; r <= b.WalkLen; r++ {
		if isStop(b.At(i, r, ColOrigin), b.At(i, r, ColDestination), b.At(i, r, ColTime)) {
			break
		}
		rows = append(rows, []float64{b.At(i, r, ColOrigin), b.At(i, r, ColDestination), b.At(i, r, ColTime)})
	}
	return rows
}

// Slices returns the batch as nested slices, e.g. for JSON encoding.
func (b *Batch) Slices() [][][]float64 {
	out := make([][][]float64, b.Size)
	for i := range out {
		walk := make([][]float64, b.WalkLen+1)
		for r := range walk {
			off := r * Width
			walk[r] = append([]float64(nil), b.walkData(i)[off:off+Width]...)
		}
		out[i] = walk
	}
	return out
}

// Generated returns the window rows of every walk, the shape expected by
// dataset.FromGenerated.
func (b *Batch) Generated() [][][]float64 {
	out := make([][][]float64, b.Size)
	for i := range out {
		out[i] = b.Edges(i)
	}
	return out
}

func isStop(o, d, t float64) bool {
	return o == Stop && d == Stop && t == Stop
}
