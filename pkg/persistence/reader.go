package persistence

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sanonone/tempwalk/pkg/walk"
)

// ErrNotRecording is returned when a file does not start with a header frame.
var ErrNotRecording = errors.New("missing recording header")

// BatchReader replays a recording written by BatchRecorder.
type BatchReader struct {
	r      io.Reader
	closer io.Closer
	header Header
	offset int64
}

// OpenRecording opens the recording at path and reads its header.
func OpenRecording(path string) (*BatchReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	br, err := NewBatchReader(bufio.NewReader(f))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	br.closer = f
	return br, nil
}

// NewBatchReader reads the header frame from r.
func NewBatchReader(r io.Reader) (*BatchReader, error) {
	frame, n, err := ReadFrame(r)
	if err != nil {
		if err == io.EOF {
			return nil, ErrNotRecording
		}
		return nil, err
	}
	if frame.OpCode != OpCodeHeader {
		return nil, ErrNotRecording
	}
	var h Header
	if err := json.Unmarshal(frame.Payload, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRecording, err)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return &BatchReader{r: r, header: h, offset: int64(n)}, nil
}

// Header returns the recording header.
func (br *BatchReader) Header() Header { return br.header }

// Offset returns the number of bytes consumed so far.
func (br *BatchReader) Offset() int64 { return br.offset }

// Next returns the next recorded batch, or io.EOF after the last one.
func (br *BatchReader) Next() (*walk.Batch, error) {
	frame, n, err := ReadFrame(br.r)
	if err != nil {
		if err != io.EOF {
			err = fmt.Errorf("frame at offset %d: %w", br.offset, err)
		}
		return nil, err
	}
	br.offset += int64(n)
	if frame.OpCode != OpCodeBatch {
		return nil, fmt.Errorf("unexpected opcode 0x%02x at offset %d", frame.OpCode, br.offset)
	}
	want := br.header.batchValues() * br.header.valueSize()
	if len(frame.Payload) != want {
		return nil, fmt.Errorf("payload of %d bytes, want %d: %w", len(frame.Payload), want, ErrShapeChanged)
	}
	return &walk.Batch{
		Size:    br.header.BatchSize,
		WalkLen: br.header.RWLen,
		Data:    decodeValues(frame.Payload, br.header.Precision),
	}, nil
}

// Close closes the underlying file, if any.
func (br *BatchReader) Close() error {
	if br.closer == nil {
		return nil
	}
	return br.closer.Close()
}
