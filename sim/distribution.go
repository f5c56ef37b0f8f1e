package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution is a continuous random sampler.
// Each instance owns its pseudo-random stream; instances are never shared
// between subsystems.
type Distribution interface {
	// Sample returns the next value drawn from the distribution.
	Sample() float64
}

// Reseeder is implemented by distributions that can restart their stream from
// the original seed. Engine.Initialize reseeds every such distribution so that
// repeated runs reproduce the same samples.
type Reseeder interface {
	Reseed()
}

// NegExp samples negative-exponential values; used for interarrival gaps.
type NegExp struct {
	mean float64
	seed int64
	dist distuv.Exponential
}

// NewNegExp creates a negative-exponential distribution with the given mean.
// Panics if mean is not a finite positive number.
func NewNegExp(mean float64, seed int64) *NegExp {
	mustBePositive("NewNegExp", "mean", mean)
	d := &NegExp{mean: mean, seed: seed}
	d.Reseed()
	return d
}

func (d *NegExp) Sample() float64 { return d.dist.Rand() }

// Reseed restarts the stream from the construction seed.
func (d *NegExp) Reseed() {
	d.dist = distuv.Exponential{Rate: 1 / d.mean, Src: newSource(d.seed)}
}

// Mean returns the configured mean.
func (d *NegExp) Mean() float64 { return d.mean }

// Normal samples service durations from a Normal law truncated at zero.
//
// A service cannot take zero or negative time, so Sample rejects every
// non-positive draw and draws again. The effective distribution is therefore
// the Normal conditioned on X > 0: its mean is slightly above the nominal mean,
// noticeably so when the mean is within a couple of standard deviations of 0.
type Normal struct {
	mean     float64
	variance float64
	seed     int64
	dist     distuv.Normal
}

// NewNormal creates a zero-truncated Normal distribution.
// Panics if mean or variance is not a finite positive number.
func NewNormal(mean, variance float64, seed int64) *Normal {
	mustBePositive("NewNormal", "mean", mean)
	mustBePositive("NewNormal", "variance", variance)
	d := &Normal{mean: mean, variance: variance, seed: seed}
	d.Reseed()
	return d
}

// Sample returns a strictly positive draw (see the type comment).
// A positive mean keeps the acceptance rate above one half, so the loop
// terminates quickly.
func (d *Normal) Sample() float64 {
	for {
		if v := d.dist.Rand(); v > 0 {
			return v
		}
	}
}

// Reseed restarts the stream from the construction seed.
func (d *Normal) Reseed() {
	d.dist = distuv.Normal{Mu: d.mean, Sigma: math.Sqrt(d.variance), Src: newSource(d.seed)}
}

// Mean returns the nominal (untruncated) mean.
func (d *Normal) Mean() float64 { return d.mean }

// Constant always returns the same value.
// Used to pin service or interarrival times in deterministic runs.
type Constant struct {
	value float64
}

// NewConstant creates a Constant distribution.
// Panics if value is not a finite positive number.
func NewConstant(value float64) *Constant {
	mustBePositive("NewConstant", "value", value)
	return &Constant{value: value}
}

func (d *Constant) Sample() float64 { return d.value }

func mustBePositive(fn, name string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		panic(fmt.Sprintf("%s: %s must be a finite positive number, got %v", fn, name, v))
	}
}
