package policy

import (
	"context"
	"math/rand"
	"sync"

	"github.com/vgc-imitation/collector/battle"
)

// MaxBasePower uses each slot's highest base-power legal move against the
// weaker opponent, and falls back to a random legal action.
type MaxBasePower struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMaxBasePower returns a MaxBasePower agent.
func NewMaxBasePower(rng *rand.Rand) *MaxBasePower {
	return &MaxBasePower{rng: rng}
}

func (m *MaxBasePower) Decide(_ context.Context, b *battle.DoubleBattle) (battle.DoubleOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	preferred := weakerOpponent(b)
	var orders [battle.NumSlots]battle.Order
	for slot := 0; slot < battle.NumSlots; slot++ {
		cands := legalCandidates(b, slot)
		if slot == 1 {
			cands = filterCompatible(orders[0], cands)
		}
		if c, ok := strongestMove(cands, preferred); ok {
			orders[slot] = c.order
		} else if c, ok := pickRandom(m.rng, cands); ok {
			orders[slot] = c.order
		} else {
			orders[slot] = fallbackOrder(b, slot)
		}
	}
	return battle.DoubleOrder{First: orders[0], Second: orders[1]}, nil
}

// strongestMove returns the gimmick-free move candidate with the highest base
// power. Among its targets the preferred opponent wins, then any opponent,
// then whatever the move allows.
func strongestMove(cands []candidate, preferred int) (candidate, bool) {
	var (
		best      candidate
		bestPower = -1
		bestRank  = -1
	)
	for _, c := range cands {
		o := c.order
		if o.Kind != battle.OrderMove || o.Gimmick != battle.GimmickNone || o.Move.BasePower <= 0 {
			continue
		}
		rank := targetRank(o.Target, preferred)
		if o.Move.BasePower > bestPower || (o.Move.BasePower == bestPower && rank > bestRank) {
			best, bestPower, bestRank = c, o.Move.BasePower, rank
		}
	}
	return best, bestPower > 0
}

func targetRank(target, preferred int) int {
	switch {
	case target == preferred && target != battle.TargetEmpty:
		return 3
	case target == battle.TargetOpponentA || target == battle.TargetOpponentB:
		return 2
	case target == battle.TargetEmpty:
		return 1
	default: // ally
		return 0
	}
}
