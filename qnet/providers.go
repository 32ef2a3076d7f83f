package qnet

import (
	"hash/fnv"
	"math/rand"
)

// SourcePeriodProvider supplies a source's inter-arrival period. The
// contract only requires a positive duration.
type SourcePeriodProvider interface {
	SourcePeriod(sourceID int) Time
}

// DeviceProcessingTimeProvider samples a device's processing time for a
// request.
type DeviceProcessingTimeProvider interface {
	DeviceProcessingTime(deviceID int, request Request) Time
}

// FixedPeriods is a SourcePeriodProvider returning a fixed period per
// source.
type FixedPeriods []Time

func (p FixedPeriods) SourcePeriod(sourceID int) Time { return p[sourceID] }

// partitionedRNG gives each device its own deterministic *rand.Rand
// stream, derived from a master seed by hashing the device's identity.
// A device's seed is order-independent of when its stream is first
// requested, because it comes from the master seed XORed with a hash of
// the device index rather than drawn sequentially off one shared
// generator.
type partitionedRNG struct {
	masterSeed int64
	streams    map[int]*rand.Rand
}

func newPartitionedRNG(masterSeed int64) *partitionedRNG {
	return &partitionedRNG{masterSeed: masterSeed, streams: make(map[int]*rand.Rand)}
}

func (p *partitionedRNG) forDevice(deviceID int) *rand.Rand {
	if r, ok := p.streams[deviceID]; ok {
		return r
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte{byte(deviceID), byte(deviceID >> 8), byte(deviceID >> 16), byte(deviceID >> 24)})
	seed := p.masterSeed ^ int64(h.Sum64())
	r := rand.New(rand.NewSource(seed))
	p.streams[deviceID] = r
	return r
}

// DeterministicProcessingTime returns each device's configured coefficient
// verbatim, with no sampling.
type DeterministicProcessingTime struct {
	Coefficients []Time
}

func (d *DeterministicProcessingTime) DeviceProcessingTime(deviceID int, _ Request) Time {
	return d.Coefficients[deviceID]
}

// ExponentialProcessingTime samples coefficient*X for X drawn from an
// exponential distribution with rate 1, one independent stream per
// device.
type ExponentialProcessingTime struct {
	Coefficients []Time
	rng          *partitionedRNG
}

// NewExponentialProcessingTime builds a provider with one RNG stream per
// device, derived from seed.
func NewExponentialProcessingTime(coefficients []Time, seed int64) *ExponentialProcessingTime {
	return &ExponentialProcessingTime{Coefficients: coefficients, rng: newPartitionedRNG(seed)}
}

func (e *ExponentialProcessingTime) DeviceProcessingTime(deviceID int, _ Request) Time {
	r := e.rng.forDevice(deviceID)
	return e.Coefficients[deviceID] * Time(r.ExpFloat64())
}
