package monty

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Stats summarizes the per-batch win percentages of RunBatches.
type Stats struct {
	Batches int     `json:"batches"`
	Mean    float64 `json:"mean"`
	Var     float64 `json:"var"`
	StdDev  float64 `json:"stddev"`
	P50     float64 `json:"p50"`
	P90     float64 `json:"p90"`
	P99     float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []float64 `json:"-"`
}

// calcStats computes mean/variance/percentiles for float samples.
func calcStats(xs []float64) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := v - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return cp[0]
		}
		if p >= 1 {
			return cp[n-1]
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return cp[i]
		}
		return cp[i]*(1-f) + cp[i+1]*f
	}

	return Stats{
		Batches: n,
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// RunBatches repeats Simulate batches times and summarizes the spread of
// the win percentage across batches.
func RunBatches(batches, trialsPerBatch int, strategy Strategy, rng RandomSource) (Stats, error) {
	if batches < 1 {
		return Stats{}, fmt.Errorf("%w: batch count must be >= 1, got %d", ErrInvalidInput, batches)
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	samples := make([]float64, batches)
	for i := range samples {
		res, err := Simulate(trialsPerBatch, strategy, rng)
		if err != nil {
			return Stats{}, err
		}
		samples[i] = res.WinPercentage
	}
	return calcStats(samples), nil
}

// SimulateParallel splits the trial loop across workers, each with its own
// source seeded from seed and the worker index. Results for the same seed
// and worker count are reproducible. Cancellation is checked before the
// workers start and once they finish; a cancelled run returns ctx.Err().
func SimulateParallel(ctx context.Context, trials int, strategy Strategy, workers int, seed uint64) (SimulationResult, error) {
	if err := validateRun(trials, strategy); err != nil {
		return SimulationResult{}, err
	}
	if workers < 1 {
		workers = 1
	}
	if workers > trials {
		workers = trials
	}
	if err := ctx.Err(); err != nil {
		return SimulationResult{}, err
	}

	per := trials / workers
	remainder := trials % workers

	var wg sync.WaitGroup
	results := make(chan int, workers)
	for i := 0; i < workers; i++ {
		n := per
		if i == workers-1 {
			n += remainder
		}
		wg.Add(1)
		go func(worker, n int) {
			defer wg.Done()
			rng := NewSeededRNG(seed + uint64(worker)*0x9E3779B97F4A7C15)
			results <- countWins(n, strategy, rng)
		}(i, n)
	}
	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return SimulationResult{}, err
	}
	wins := 0
	for w := range results {
		wins += w
	}
	return SimulationResult{
		Trials:        trials,
		Strategy:      strategy,
		Wins:          wins,
		WinPercentage: WinPercentage(wins, trials),
	}, nil
}
