package walk

import (
	"fmt"
	"math"
)

// Config holds the construction-time parameters of a Sampler or Walker.
// It is copied on construction and never changes afterwards.
type Config struct {
	// NNodes is the number of nodes; node ids are expected in [0, NNodes).
	// The check is advisory: out-of-range ids are logged, not rejected.
	// 0 skips the check.
	NNodes int `json:"n_nodes" yaml:"n_nodes"`

	// TEnd is the horizon all residual times are measured against.
	TEnd float64 `json:"t_end" yaml:"t_end"`

	// Scale is carried for downstream time perturbation; sampling ignores it.
	Scale float64 `json:"scale" yaml:"scale"`

	// RWLen is the number of edges per walk.
	RWLen int `json:"rw_len" yaml:"rw_len"`

	// BatchSize is the number of walks per batch.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Policy weighs the start offset inside a day.
	Policy Policy `json:"start_weighting" yaml:"start_weighting"`

	// Mode selects the window extraction variant. Only Contiguous is available.
	Mode Mode `json:"-" yaml:"-"`

	// Seed initializes the random stream of a Walker. 0 picks a random seed.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// DefaultConfig returns the standard parameters: scale 0.1, walks of 4 edges,
// batches of 8, uniform start weighting.
func DefaultConfig() Config {
	return Config{
		TEnd:      1,
		Scale:     0.1,
		RWLen:     4,
		BatchSize: 8,
		Policy:    PolicyUniform,
		Mode:      Contiguous,
	}
}

// Validate checks the parameters that do not depend on the data.
func (c Config) Validate() error {
	if c.RWLen < 1 {
		return fmt.Errorf("rw_len must be positive, got %d: %w", c.RWLen, ErrInvalidConfiguration)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d: %w", c.BatchSize, ErrInvalidConfiguration)
	}
	if c.NNodes < 0 {
		return fmt.Errorf("n_nodes must not be negative, got %d: %w", c.NNodes, ErrInvalidConfiguration)
	}
	if math.IsNaN(c.TEnd) || math.IsInf(c.TEnd, 0) {
		return fmt.Errorf("t_end must be finite, got %v: %w", c.TEnd, ErrInvalidConfiguration)
	}
	if _, err := StartProbs(1, c.Policy); err != nil {
		return err
	}
	return c.Mode.supported()
}
