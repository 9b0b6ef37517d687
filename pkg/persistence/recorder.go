package persistence

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/x448/float16"

	"github.com/sanonone/tempwalk/pkg/metrics"
	"github.com/sanonone/tempwalk/pkg/walk"
)

// Precision is the numeric encoding of recorded batches.
type Precision string

const (
	Float32 Precision = "float32"
	// Float16 halves the file size. Integers are exact only up to 2048.
	Float16 Precision = "float16"
)

const (
	// maxExactFloat16 is the largest integer up to which every integer is representable in float16.
	maxExactFloat16 = 2048
	// maxExactFloat32 is the same bound for float32.
	maxExactFloat32 = 1 << 24
	// maxFloat16 is the largest finite float16.
	maxFloat16 = 65504
)

var (
	// ErrUnknownPrecision is returned for a precision other than float32 or float16.
	ErrUnknownPrecision = errors.New("unknown precision")
	// ErrPrecisionLoss is returned when node ids cannot be stored exactly at the chosen precision.
	ErrPrecisionLoss = errors.New("node ids not representable at this precision")
	// ErrShapeChanged is returned when a batch does not match the recording header.
	ErrShapeChanged = errors.New("batch shape differs from recording header")
	// ErrClosed is returned when writing to a closed recorder.
	ErrClosed = errors.New("recorder is closed")
)

// Header describes a recording. It is written once, as the first frame.
type Header struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	RWLen     int       `json:"rw_len"`
	BatchSize int       `json:"batch_size"`
	TEnd      float64   `json:"t_end"`
	Policy    string    `json:"policy"`
	Seed      uint64    `json:"seed"`
	MaxNode   int       `json:"max_node"`
	Precision Precision `json:"precision"`
}

// NewHeader fills a Header from a walker configuration.
func NewHeader(cfg walk.Config, seed uint64, maxNode int, p Precision) Header {
	return Header{
		RunID:     uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		RWLen:     cfg.RWLen,
		BatchSize: cfg.BatchSize,
		TEnd:      cfg.TEnd,
		Policy:    cfg.Policy.String(),
		Seed:      seed,
		MaxNode:   maxNode,
		Precision: p,
	}
}

func (h Header) validate() error {
	switch h.Precision {
	case Float32:
		if h.MaxNode > maxExactFloat32 {
			return fmt.Errorf("max node %d > %d: %w", h.MaxNode, maxExactFloat32, ErrPrecisionLoss)
		}
	case Float16:
		if h.MaxNode > maxExactFloat16 {
			return fmt.Errorf("max node %d > %d: %w", h.MaxNode, maxExactFloat16, ErrPrecisionLoss)
		}
		// t_end is the first metadata residual of every start window.
		if math.Abs(h.TEnd) > maxFloat16 {
			return fmt.Errorf("t_end %v overflows float16: %w", h.TEnd, ErrPrecisionLoss)
		}
	default:
		return fmt.Errorf("%q: %w", h.Precision, ErrUnknownPrecision)
	}
	if h.RWLen < 1 || h.BatchSize < 1 {
		return fmt.Errorf("rw_len=%d batch_size=%d: %w", h.RWLen, h.BatchSize, ErrShapeChanged)
	}
	return nil
}

func (h Header) valueSize() int {
	if h.Precision == Float16 {
		return 2
	}
	return 4
}

func (h Header) batchValues() int {
	return h.BatchSize * (h.RWLen + 1) * walk.Width
}

// BatchRecorder appends sampled batches to a framed file.
// It is safe for concurrent use.
type BatchRecorder struct {
	mu     sync.Mutex
	file   *os.File
	buf    *bufio.Writer
	fw     *FrameWriter
	header Header
	count  int
	closed bool
}

// NewBatchRecorder creates (or truncates) the file at path and writes the header frame.
func NewBatchRecorder(path string, h Header) (*BatchRecorder, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording file: %w", err)
	}

	buf := bufio.NewWriter(file)
	r := &BatchRecorder{file: file, buf: buf, fw: NewFrameWriter(buf), header: h}

	payload, err := json.Marshal(h)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if err := r.fw.WriteFrame(OpCodeHeader, payload); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to write recording header: %w", err)
	}
	return r, nil
}

// Header returns the recording header.
func (r *BatchRecorder) Header() Header { return r.header }

// Count returns the number of batches recorded so far.
func (r *BatchRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Record appends one batch. A finite value that overflows the recording
// precision fails with ErrPrecisionLoss and nothing is written.
func (r *BatchRecorder) Record(b *walk.Batch) error {
	if b.Size != r.header.BatchSize || b.WalkLen != r.header.RWLen {
		return fmt.Errorf("got %v: %w", b.Shape(), ErrShapeChanged)
	}
	payload, err := encodeValues(b.Data, r.header.Precision)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if err := r.fw.WriteFrame(OpCodeBatch, payload); err != nil {
		return err
	}
	r.count++
	metrics.RecordedBatches.WithLabelValues(string(r.header.Precision)).Inc()
	return nil
}

// Sync flushes buffered frames and fsyncs the file.
func (r *BatchRecorder) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if err := r.buf.Flush(); err != nil {
		return err
	}
	return r.file.Sync()
}

// Close flushes pending frames and closes the file.
func (r *BatchRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.buf.Flush(); err != nil {
		_ = r.file.Close()
		return err
	}
	return r.file.Close()
}

func encodeValues(values []float64, p Precision) ([]byte, error) {
	if p == Float16 {
		out := make([]byte, 2*len(values))
		for i, v := range values {
			f := float16.Fromfloat32(float32(v))
			if f.IsInf(0) && !math.IsInf(v, 0) {
				return nil, fmt.Errorf("value %v at index %d overflows float16: %w", v, i, ErrPrecisionLoss)
			}
			binary.LittleEndian.PutUint16(out[2*i:], f.Bits())
		}
		return out, nil
	}
	out := make([]byte, 4*len(values))
	for i, v := range values {
		f := float32(v)
		if math.IsInf(float64(f), 0) && !math.IsInf(v, 0) {
			return nil, fmt.Errorf("value %v at index %d overflows float32: %w", v, i, ErrPrecisionLoss)
		}
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out, nil
}

func decodeValues(payload []byte, p Precision) []float64 {
	if p == Float16 {
		out := make([]float64, len(payload)/2)
		for i := range out {
			out[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(payload[2*i:])).Float32())
		}
		return out
	}
	out := make([]float64, len(payload)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:])))
	}
	return out
}
