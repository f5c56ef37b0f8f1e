package sim

import (
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce identical notification streams and results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemArrival is the stream for interarrival gaps.
	// Uses the master seed directly so --seed alone pins arrival times.
	SubsystemArrival = "arrival"

	// SubsystemCustomerClass is the stream for the general/specialist coin flip.
	SubsystemCustomerClass = "customer_class"
)

// SubsystemService returns the stream name for a station's service times.
func SubsystemService(station StationID) string {
	return "service_" + station.String()
}

// === PartitionedRNG ===

// PartitionedRNG derives deterministic, isolated seeds per subsystem so that
// every distribution owns its own stream.
//
// Derivation formula:
//   - explicit override from SetSeed, if any
//   - SubsystemArrival: masterSeed directly
//   - all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key       SimulationKey
	overrides map[string]int64
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:       key,
		overrides: make(map[string]int64),
	}
}

// SetSeed pins the seed of one subsystem, bypassing derivation.
func (p *PartitionedRNG) SetSeed(name string, seed int64) {
	p.overrides[name] = seed
}

// SeedFor returns the seed of the named subsystem.
// The same name always yields the same seed.
func (p *PartitionedRNG) SeedFor(name string) int64 {
	if seed, ok := p.overrides[name]; ok {
		return seed
	}
	if name == SubsystemArrival {
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// ForSubsystem returns a freshly seeded RNG for the named subsystem.
// Each call starts the stream from the beginning.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	return rand.New(newSource(p.SeedFor(name)))
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// newSource builds the PCG source used by every stream in the kernel.
func newSource(seed int64) *rand.PCG {
	return rand.NewPCG(uint64(seed), uint64(seed)^pcgStreamSalt)
}

// pcgStreamSalt separates the two PCG state words derived from one seed.
const pcgStreamSalt = 0x9e3779b97f4a7c15

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
