package battle

import (
	"hash/fnv"
	"math/rand"
)

// SeedKey identifies a reproducible collection run. Two runs with the same key,
// configuration and opponent behaviour draw identical opponents, teams and
// random policy choices.
type SeedKey int64

// RNG subsystems used by the collector.
const (
	// SubsystemOpponents draws the opponent kind of each battle.
	// Uses the master seed directly.
	SubsystemOpponents = "opponents"
	// SubsystemTeams drives team rotation.
	SubsystemTeams = "teams"
	// SubsystemLocalSim drives damage rolls and speed ties of the offline engine.
	SubsystemLocalSim = "localsim"
)

// SubsystemPolicy returns the subsystem name for a named policy instance.
func SubsystemPolicy(name string) string {
	return "policy/" + name
}

// PartitionedRNG hands out independent, deterministically seeded generators per
// subsystem so that drawing from one never shifts another's sequence.
//
// Derivation: SubsystemOpponents uses the master seed; every other subsystem
// uses masterSeed XOR fnv1a64(name).
//
// Not safe for concurrent use. Each returned *rand.Rand must be owned by a
// single goroutine at a time.
type PartitionedRNG struct {
	key        SeedKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG for key.
func NewPartitionedRNG(key SeedKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the cached generator for name, creating it on first use.
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	seed := int64(p.key)
	if name != SubsystemOpponents {
		seed ^= fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(seed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the master seed.
func (p *PartitionedRNG) Key() SeedKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
