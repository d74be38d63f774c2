package policy

import (
	"math/rand"

	"github.com/vgc-imitation/collector/battle"
)

// candidate is a legal action index together with its decoded order.
type candidate struct {
	action int
	order  battle.Order
}

// legalCandidates decodes every legal index of slot.
func legalCandidates(b *battle.DoubleBattle, slot int) []candidate {
	n := battle.ActionSpaceSize(b.Format)
	mask := battle.LegalityMask(b, slot, n)
	out := make([]candidate, 0, mask.Count())
	for _, i := range mask.Legal() {
		o, err := battle.ActionToOrder(b, slot, i, false)
		if err != nil {
			continue
		}
		out = append(out, candidate{action: i, order: o})
	}
	return out
}

// compatible reports whether second can be sent alongside first: the two
// slots may not switch in the same Pokemon or use the same gimmick.
func compatible(first, second battle.Order) bool {
	if first.Kind == battle.OrderSwitch && second.Kind == battle.OrderSwitch &&
		first.Pokemon != nil && second.Pokemon != nil &&
		first.Pokemon.BaseSpecies == second.Pokemon.BaseSpecies {
		return false
	}
	if first.Kind == battle.OrderMove && second.Kind == battle.OrderMove &&
		first.Gimmick != battle.GimmickNone && first.Gimmick == second.Gimmick {
		return false
	}
	return true
}

func filterCompatible(first battle.Order, cands []candidate) []candidate {
	out := cands[:0:0]
	for _, c := range cands {
		if compatible(first, c.order) {
			out = append(out, c)
		}
	}
	return out
}

// fallbackOrder is sent when a slot has no usable candidate.
func fallbackOrder(b *battle.DoubleBattle, slot int) battle.Order {
	if b.ForceSwitch[slot] || b.Idle(slot) {
		return battle.PassOrder()
	}
	return battle.DefaultOrder()
}

func pickRandom(rng *rand.Rand, cands []candidate) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	return cands[rng.Intn(len(cands))], true
}

// weakerOpponent returns the occupied opponent position with the lower HP
// ratio, preferring opponent a on ties, or 0 when both are empty.
func weakerOpponent(b *battle.DoubleBattle) int {
	best, bestHP := battle.TargetEmpty, 2.0
	for slot := 0; slot < battle.NumSlots; slot++ {
		p := b.OpponentActivePokemon(slot)
		if p == nil {
			continue
		}
		if hp := p.HPRatio(); hp < bestHP {
			best, bestHP = slot+1, hp
		}
	}
	return best
}

// opponentAt returns the opponent Pokemon at a target position, or nil.
func opponentAt(b *battle.DoubleBattle, target int) *battle.Pokemon {
	if target != battle.TargetOpponentA && target != battle.TargetOpponentB {
		return nil
	}
	return b.OpponentActivePokemon(target - 1)
}
