package walk

import (
	"context"
	"iter"
	"math/rand/v2"
	"time"

	"github.com/sanonone/tempwalk/pkg/dataset"
	"github.com/sanonone/tempwalk/pkg/metrics"
)

// streamSalt decorrelates the two PCG state words derived from one seed.
const streamSalt = 0x9e3779b97f4a7c15

// Walker is an endless producer of batches over a fixed configuration.
// The only state it advances is its random stream; Reset rewinds it.
//
// A Walker is not safe for concurrent use.
type Walker struct {
	sampler *Sampler
	seed    uint64
	rng     *rand.Rand
}

// NewWalker builds the sampler for edges and cfg and starts a random stream
// from cfg.Seed (a random seed when 0).
func NewWalker(edges *dataset.EdgeSet, cfg Config) (*Walker, error) {
	s, err := NewSampler(edges, cfg)
	if err != nil {
		return nil, err
	}
	return NewWalkerFromSampler(s), nil
}

// NewWalkerFromSampler starts a random stream over an existing sampler.
// Several walkers may share one sampler.
func NewWalkerFromSampler(s *Sampler) *Walker {
	return NewWalkerWithSeed(s, s.cfg.Seed)
}

// NewWalkerWithSeed is NewWalkerFromSampler with an explicit seed in place of
// Config.Seed. 0 picks a random seed.
func NewWalkerWithSeed(s *Sampler, seed uint64) *Walker {
	if seed == 0 {
		seed = rand.Uint64()
	}
	w := &Walker{sampler: s, seed: seed}
	w.Reset()
	return w
}

// Sampler returns the underlying sampler.
func (w *Walker) Sampler() *Sampler { return w.sampler }

// Seed returns the seed of the random stream.
func (w *Walker) Seed() uint64 { return w.seed }

// Reset rewinds the random stream: the following batches repeat those
// produced since construction.
func (w *Walker) Reset() {
	w.rng = rand.New(rand.NewPCG(w.seed, w.seed^streamSalt))
}

// Next blocks until one freshly sampled batch is ready.
func (w *Walker) Next(ctx context.Context) (*Batch, error) {
	policy := w.sampler.cfg.Policy.String()
	start := time.Now()

	b, err := w.sampler.Sample(ctx, w.rng)
	if err != nil {
		metrics.SampleErrorsTotal.WithLabelValues(policy).Inc()
		return nil, err
	}

	metrics.BatchDuration.WithLabelValues(policy).Observe(time.Since(start).Seconds())
	metrics.BatchesTotal.WithLabelValues(policy).Inc()
	metrics.WalksTotal.WithLabelValues(policy).Add(float64(b.Size))
	return b, nil
}

// Batches yields batches forever. The sequence ends only when the consumer
// stops ranging, or after yielding the error that aborted a batch
// (cancellation of ctx included).
func (w *Walker) Batches(ctx context.Context) iter.Seq2[*Batch, error] {
	return func(yield func(*Batch, error) bool) {
		for {
			b, err := w.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}
