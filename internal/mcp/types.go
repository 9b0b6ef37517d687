package mcp

// --- Tool Arguments ---

type SampleWalksArgs struct {
	Batches int `json:"batches,omitempty" jsonschema:"Number of batches to sample (default 1, max 16)"`
}

type SampleWalksResult struct {
	Seed  uint64 `json:"seed"`
	Shape [3]int `json:"shape"`
	// Walks holds one entry per batch; each walk is [start,end,t_res_0] followed by
	// [origin,destination,residual_time] rows, [-1,-1,-1] for padding.
	Walks [][][][]float64 `json:"walks"`
}

type DescribeDatasetArgs struct {
	Bins int `json:"bins,omitempty" jsonschema:"Number of histogram bins over the time range (default 10)"`
}

type DescribeDatasetResult struct {
	Edges          int       `json:"edges"`
	Days           int       `json:"days"`
	QualifyingDays int       `json:"qualifying_days"`
	MaxNode        int       `json:"max_node"`
	MinTime        float64   `json:"min_time"`
	MaxTime        float64   `json:"max_time"`
	WeekendEdges   int       `json:"weekend_edges"`
	TimeHistogram  []float64 `json:"time_histogram,omitempty"`
	Policy         string    `json:"policy"`
	RWLen          int       `json:"rw_len"`
	BatchSize      int       `json:"batch_size"`
}
