package walk

import (
	"fmt"
	"math"
)

// Policy selects how the start offset of a window is weighted within a day.
type Policy int

const (
	// PolicyUniform makes every start offset equally likely.
	PolicyUniform Policy = iota
	// PolicyLinear weighs offset i by n+1-i, favoring early windows.
	PolicyLinear
	// PolicyExp weighs offset i by exp(1/(i+1)), strongly favoring the first offsets.
	PolicyExp
)

var policyNames = map[Policy]string{
	PolicyUniform: "uniform",
	PolicyLinear:  "linear",
	PolicyExp:     "exp",
}

// ParsePolicy converts a policy name into a Policy.
func ParsePolicy(name string) (Policy, error) {
	for p, n := range policyNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown start weighting policy %q: %w", name, ErrInvalidConfiguration)
}

func (p Policy) String() string {
	if n, ok := policyNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	n, ok := policyNames[p]
	if !ok {
		return nil, fmt.Errorf("policy %d: %w", int(p), ErrInvalidConfiguration)
	}
	return []byte(n), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// StartProbs returns the probability of each of the n valid start offsets
// under policy p. The result has length n and sums to 1.
// For n == 1 every policy yields [1].
func StartProbs(n int, p Policy) ([]float64, error) {
	if _, ok := policyNames[p]; !ok {
		return nil, fmt.Errorf("policy %d: %w", int(p), ErrInvalidConfiguration)
	}
	if n < 1 {
		return nil, fmt.Errorf("start offset count %d: %w", n, ErrInvalidConfiguration)
	}
	if n == 1 {
		return []float64{1}, nil
	}

	probs := make([]float64, n)
	var sum float64
	for i := range probs {
		var w float64
		switch p {
		case PolicyUniform:
			w = 1
		case PolicyLinear:
			w = float64(n + 1 - i)
		case PolicyExp:
			w = math.Exp(1 / float64(i+1))
		}
		probs[i] = w
		sum += w
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

// Mode selects how window edges are chosen once a start offset is drawn.
type Mode int

const (
	// Contiguous takes the next RWLen edges of the day verbatim.
	Contiguous Mode = iota
	// TeleportBiased substitutes nodes with nearby ones. Reserved.
	TeleportBiased
	// JumpResampled resamples gaps inside the window. Reserved.
	JumpResampled
)

func (m Mode) String() string {
	switch m {
	case Contiguous:
		return "contiguous"
	case TeleportBiased:
		return "teleport"
	case JumpResampled:
		return "jump"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ModeFromFlags maps the allow_teleport / allow_jump switches onto a Mode.
func ModeFromFlags(teleport, jump bool) Mode {
	switch {
	case teleport:
		return TeleportBiased
	case jump:
		return JumpResampled
	default:
		return Contiguous
	}
}

func (m Mode) supported() error {
	switch m {
	case Contiguous:
		return nil
	case TeleportBiased, JumpResampled:
		return fmt.Errorf("%s sampling: %w", m, ErrNotImplemented)
	default:
		return fmt.Errorf("mode %d: %w", int(m), ErrInvalidConfiguration)
	}
}
