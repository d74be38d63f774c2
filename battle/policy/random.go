package policy

import (
	"context"
	"math/rand"
	"sync"

	"github.com/vgc-imitation/collector/battle"
)

// Random picks a uniformly random legal action per slot.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random agent.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) Decide(_ context.Context, b *battle.DoubleBattle) (battle.DoubleOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var orders [battle.NumSlots]battle.Order
	for slot := 0; slot < battle.NumSlots; slot++ {
		cands := legalCandidates(b, slot)
		if slot == 1 {
			cands = filterCompatible(orders[0], cands)
		}
		if c, ok := pickRandom(r.rng, cands); ok {
			orders[slot] = c.order
		} else {
			orders[slot] = fallbackOrder(b, slot)
		}
	}
	return battle.DoubleOrder{First: orders[0], Second: orders[1]}, nil
}
