package dataset

import (
	"errors"
	"fmt"
)

// ErrInvalidRatio is returned by SplitByDay when the ratio is outside [0, 1).
var ErrInvalidRatio = errors.New("train ratio must be in [0, 1)")

// SplitByDay partitions edges by day: with the distinct days sorted, the
// threshold is days[int(ratio*len(days))]; edges of days up to and including
// the threshold go to train, the rest to test.
func SplitByDay(es *EdgeSet, ratio float64) (train, test *EdgeSet, err error) {
	if ratio < 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("ratio %v: %w", ratio, ErrInvalidRatio)
	}
	days := NewDayIndex(es).Days()
	if len(days) == 0 {
		return nil, nil, ErrEmpty
	}
	threshold := days[int(ratio*float64(len(days)))]

	train = es.Filter(func(e Edge) bool { return e.Day <= threshold })
	test = es.Filter(func(e Edge) bool { return e.Day > threshold })
	return train, test, nil
}
