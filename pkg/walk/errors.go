package walk

import (
	"errors"

	"github.com/sanonone/tempwalk/pkg/dataset"
)

var (
	// ErrInvalidConfiguration reports an unknown weighting policy or an out-of-range parameter.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNotImplemented reports a sampling mode that is reserved but not available.
	ErrNotImplemented = errors.New("not implemented")
	// ErrInsufficientData reports that no day has at least RWLen edges.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrShapeMismatch reports an edge table without exactly four columns.
	ErrShapeMismatch = dataset.ErrShapeMismatch
)
