// Package autocalibrate implements the outer auto-calibration driver: it
// re-runs the simulation kernel with an increasing target request count
// until the estimated rejection probability stabilises. It sits outside
// the kernel; qnet never imports it.
package autocalibrate

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/smo-sim/smo/qnet"
)

// tA and delta are the fixed constants of the convergence formula: a 90%
// Student's-t critical value and the target relative precision.
const (
	tA    = 1.643
	delta = 0.1
)

// ErrEstimationImpossible is returned when the observed rejection
// probability is too small to extrapolate a next target from
// (p < 1/maxRequests).
var ErrEstimationImpossible = errors.New("autocalibrate: rejection probability too small to estimate")

// ErrOvershoot is returned when the extrapolated next target exceeds the
// configured ceiling.
var ErrOvershoot = errors.New("autocalibrate: estimated next target exceeds max requests")

// Config controls the outer loop.
type Config struct {
	// MaxRequests bounds the target the loop may reach; exceeding it is
	// reported as ErrOvershoot.
	MaxRequests int64
	// Replications is the number of independent simulator runs executed
	// at each stage's target; their rejection-probability estimates are
	// reduced with stat.MeanVariance instead of taken from a single run.
	// Replications <= 1 behaves exactly like a single run per stage.
	Replications int
}

// Stage records one iteration of the outer loop.
type Stage struct {
	Target               int64
	RejectionProbability float64
	Variance             float64
}

// Result is the outcome of a completed calibration run.
type Result struct {
	Stages               []Stage
	FinalTarget          int64
	RejectionProbability float64
}

// RunnerFactory builds a fresh simulator targeting the given request
// count. Callers typically close over fixed source/device providers and
// buffer capacity, varying only the target across calls.
type RunnerFactory func(target int64) *qnet.Simulator

// Run executes the calibration loop starting at initialTarget, using
// factory to construct (or reset) a simulator for each stage's target.
func Run(factory RunnerFactory, initialTarget int64, cfg Config) (*Result, error) {
	if cfg.Replications < 1 {
		cfg.Replications = 1
	}

	result := &Result{}
	target := initialTarget
	var prevP float64
	first := true

	for {
		p, variance := replicate(factory, target, cfg.Replications)
		result.Stages = append(result.Stages, Stage{Target: target, RejectionProbability: p, Variance: variance})

		if !first {
			if prevP != 0 && absFloat(p-prevP)/absFloat(prevP) < delta {
				result.FinalTarget = target
				result.RejectionProbability = p
				return result, nil
			}
		}
		first = false
		prevP = p

		if p < 1/float64(cfg.MaxRequests) {
			return result, fmt.Errorf("%w: p=%v at target=%d", ErrEstimationImpossible, p, target)
		}

		nextTarget := int64(tA * tA * (1 - p) / (p * delta * delta))
		if nextTarget > cfg.MaxRequests {
			return result, fmt.Errorf("%w: N'=%d exceeds max=%d", ErrOvershoot, nextTarget, cfg.MaxRequests)
		}
		if nextTarget <= target {
			// Guard against a non-increasing extrapolation stalling the loop.
			nextTarget = target + 1
		}
		target = nextTarget
	}
}

// replicate runs Replications independent simulations at target and
// reduces their rejection-probability estimates to a mean and variance.
// With Replications == 1 this degenerates to the single observed value
// with zero variance.
func replicate(factory RunnerFactory, target int64, replications int) (mean, variance float64) {
	samples := make([]float64, replications)
	for i := 0; i < replications; i++ {
		sim := factory(target)
		sim.RunToCompletion()
		generated := sim.CurrentAmountOfRequests()
		if generated == 0 {
			samples[i] = 0
			continue
		}
		samples[i] = float64(sim.RejectedAmount()) / float64(generated)
	}
	if replications == 1 {
		return samples[0], 0
	}
	return stat.MeanVariance(samples, nil)
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
