// Package dataset holds the timestamped edge stream of a dynamic graph and the
// utilities that prepare it for walk sampling or consume sampled output.
//
// The canonical input is a table with four columns, one row per edge:
//
//	day  origin  destination  timestamp
//
// Rows of the same day must already be in non-decreasing time order: windows
// are cut positionally from each day's rows, so the order of the input decides
// which edges end up grouped together.
//
// Basic usage:
//
//	edges, err := dataset.Load("data/trips.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	train, test, err := dataset.SplitByDay(edges, 0.9)
package dataset
