package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// posteriorCandidates is the number of prior draws weighed for each posterior sample.
const posteriorCandidates = 100

var (
	// ErrTooFewSamples is returned by NewKDE for fewer than two distinct samples.
	ErrTooFewSamples = errors.New("kde needs at least two distinct samples")
	// ErrDegeneratePosterior is returned when every candidate has zero posterior weight.
	ErrDegeneratePosterior = errors.New("posterior weights are all zero")
)

// KDE is a one-dimensional Gaussian kernel density estimate with Silverman's bandwidth.
type KDE struct {
	samples   []float64
	bandwidth float64
}

// NewKDE fits a KDE to samples.
func NewKDE(samples []float64) (*KDE, error) {
	n := float64(len(samples))
	if len(samples) < 2 {
		return nil, ErrTooFewSamples
	}
	sd := stat.StdDev(samples, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil, ErrTooFewSamples
	}
	// Silverman's rule for d=1: (n*(d+2)/4)^(-1/(d+4)).
	factor := math.Pow(n*3/4, -1.0/5)
	return &KDE{
		samples:   append([]float64(nil), samples...),
		bandwidth: sd * factor,
	}, nil
}

// Bandwidth returns the kernel standard deviation.
func (k *KDE) Bandwidth() float64 { return k.bandwidth }

// Prob returns the estimated density at x.
func (k *KDE) Prob(x float64) float64 {
	var sum float64
	for _, s := range k.samples {
		sum += distuv.Normal{Mu: s, Sigma: k.bandwidth}.Prob(x)
	}
	return sum / float64(len(k.samples))
}

// SamplePosterior draws n points around loc: for each point it draws candidates
// from N(loc, scale) and picks one with probability proportional to the
// standard-normal prior of the candidate times the KDE density.
func SamplePosterior(k *KDE, loc, scale float64, n int, src rand.Source) ([]float64, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %v", scale)
	}
	prior := distuv.Normal{Mu: loc, Sigma: scale, Src: src}

	points := make([]float64, 0, n)
	candidates := make([]float64, posteriorCandidates)
	weights := make([]float64, posteriorCandidates)
	for range n {
		var total float64
		for j := range candidates {
			c := prior.Rand()
			candidates[j] = c
			weights[j] = distuv.UnitNormal.Prob((c-loc)/scale) * k.Prob(c)
			total += weights[j]
		}
		if total == 0 {
			return nil, ErrDegeneratePosterior
		}
		idx, ok := sampleuv.NewWeighted(weights, src).Take()
		if !ok {
			return nil, ErrDegeneratePosterior
		}
		points = append(points, candidates[idx])
	}
	return points, nil
}
