// Package walk samples temporal walks from a timestamped edge stream.
//
// A walk is a contiguous window of RWLen edges cut from the edge list of a
// single day. Each walk is emitted as a (RWLen+1) x 3 matrix:
//
//	row 0:      [start_flag, end_flag, residual_time_at_start]
//	rows 1..L:  [origin, destination, residual_time]   or [-1, -1, -1] when padded
//
// where residual time is TEnd minus the absolute timestamp. A Batch stacks
// BatchSize independent walks.
//
// Basic usage:
//
//	cfg := walk.DefaultConfig()
//	cfg.TEnd = 1.0
//	w, err := walk.NewWalker(edges, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for batch, err := range w.Batches(ctx) {
//	    if err != nil {
//	        break
//	    }
//	    train(batch)
//	}
package walk
