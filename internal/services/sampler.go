package services

import "math/rand/v2"

// RegionActivationSampler produces the physiological values attached to a
// synthesized event. The random implementation stands in for a real signal
// source.
type RegionActivationSampler interface {
	// Intensity returns a value in [3,7].
	Intensity() int
	// Duration returns milliseconds in [3000,5000).
	Duration() int
}

type randomSampler struct{}

// NewRandomSampler returns the default pseudo-random sampler.
func NewRandomSampler() RegionActivationSampler { return randomSampler{} }

func (randomSampler) Intensity() int { return 3 + rand.IntN(5) }

func (randomSampler) Duration() int { return 3000 + rand.IntN(2000) }
