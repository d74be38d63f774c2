package policy

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/vgc-imitation/collector/battle"
)

const (
	// spreadMultiplier is the damage reduction of moves hitting both foes.
	spreadMultiplier = 0.75
	// switchOutThreshold is the matchup below which the active Pokemon leaves.
	switchOutThreshold = -2.0
	// statusMoveScore values landing a status on a healthy foe.
	statusMoveScore = 30.0
	// teraMinHP is the HP ratio required before terastallizing.
	teraMinHP = 0.5
)

// SimpleHeuristics scores every legal move by base power, accuracy, STAB and
// type effectiveness, switches out of clearly losing matchups, and uses
// gimmicks when they line up with the chosen move.
type SimpleHeuristics struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimpleHeuristics returns a SimpleHeuristics agent.
func NewSimpleHeuristics(rng *rand.Rand) *SimpleHeuristics {
	return &SimpleHeuristics{rng: rng}
}

func (h *SimpleHeuristics) Decide(_ context.Context, b *battle.DoubleBattle) (battle.DoubleOrder, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var orders [battle.NumSlots]battle.Order
	for slot := 0; slot < battle.NumSlots; slot++ {
		cands := legalCandidates(b, slot)
		if slot == 1 {
			cands = filterCompatible(orders[0], cands)
		}
		if c, ok := h.choose(b, slot, cands); ok {
			orders[slot] = c.order
		} else {
			orders[slot] = fallbackOrder(b, slot)
		}
	}
	return battle.DoubleOrder{First: orders[0], Second: orders[1]}, nil
}

func (h *SimpleHeuristics) choose(b *battle.DoubleBattle, slot int, cands []candidate) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	active := b.ActivePokemon(slot)
	if sw, ok := h.switchOut(b, active, cands); ok {
		return sw, true
	}

	var (
		best      candidate
		bestScore = math.Inf(-1)
		found     bool
	)
	for _, c := range cands {
		if c.order.Kind != battle.OrderMove || c.order.Gimmick != battle.GimmickNone {
			continue
		}
		score := moveScore(b, active, c.order.Move, c.order.Target)
		if score > bestScore {
			best, bestScore, found = c, score, true
		}
	}
	if !found {
		for _, c := range cands {
			if c.order.Kind == battle.OrderSwitch {
				return c, true
			}
		}
		return pickRandom(h.rng, cands)
	}
	return h.withGimmick(b, slot, active, best, cands), true
}

// withGimmick upgrades the chosen move to its gimmick variant when one applies
// and is legal.
func (h *SimpleHeuristics) withGimmick(b *battle.DoubleBattle, slot int, active *battle.Pokemon, chosen candidate, cands []candidate) candidate {
	if active == nil {
		return chosen
	}
	var want battle.Gimmick
	switch {
	case b.CanMegaEvolve[slot]:
		want = battle.GimmickMega
	case b.CanTerastallize[slot] && active.TeraType != battle.TypeUnknown &&
		chosen.order.Move.Type == active.TeraType && active.HPRatio() >= teraMinHP:
		want = battle.GimmickTerastallize
	case b.CanDynamax[slot] && slot == 0 && active.HPRatio() == 1:
		want = battle.GimmickDynamax
	default:
		return chosen
	}
	for _, c := range cands {
		o := c.order
		if o.Kind == battle.OrderMove && o.Gimmick == want &&
			o.Move.ID == chosen.order.Move.ID && o.Target == chosen.order.Target {
			return c
		}
	}
	return chosen
}

// switchOut returns the best switch when the active Pokemon's matchup is
// clearly losing and a reserve does better.
func (h *SimpleHeuristics) switchOut(b *battle.DoubleBattle, active *battle.Pokemon, cands []candidate) (candidate, bool) {
	if active == nil {
		// Forced switch: take the reserve with the best matchup.
		return bestSwitch(b, cands, math.Inf(-1))
	}
	current := matchup(b, active)
	if current >= switchOutThreshold {
		return candidate{}, false
	}
	return bestSwitch(b, cands, current)
}

func bestSwitch(b *battle.DoubleBattle, cands []candidate, floor float64) (candidate, bool) {
	var (
		best  candidate
		score = floor
		found bool
	)
	for _, c := range cands {
		if c.order.Kind != battle.OrderSwitch {
			continue
		}
		if m := matchup(b, c.order.Pokemon); m > score {
			best, score, found = c, m, true
		}
	}
	return best, found
}

// matchup estimates how well mon fares against the active opponents: its best
// offensive type multiplier minus the opponents' best, averaged over
// opponents, plus an HP term.
func matchup(b *battle.DoubleBattle, mon *battle.Pokemon) float64 {
	total, n := 0.0, 0
	for slot := 0; slot < battle.NumSlots; slot++ {
		opp := b.OpponentActivePokemon(slot)
		if opp == nil {
			continue
		}
		score := bestEffectiveness(mon.Types, opp.Types) - bestEffectiveness(opp.Types, mon.Types)
		score += 0.4 * (mon.HPRatio() - opp.HPRatio())
		total += score
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func bestEffectiveness(attackers, defenders []battle.PokemonType) float64 {
	best := 0.0
	for _, t := range attackers {
		if e := battle.Effectiveness(t, defenders...); e > best {
			best = e
		}
	}
	if len(attackers) == 0 {
		return 1
	}
	return best
}

// moveScore estimates the value of using m at target.
func moveScore(b *battle.DoubleBattle, user *battle.Pokemon, m *battle.Move, target int) float64 {
	if m.IsStatus() {
		if m.InflictsStatus == battle.StatusNone {
			return 0
		}
		if opp := opponentAt(b, target); opp != nil && opp.Status == battle.StatusNone {
			return statusMoveScore * m.Accuracy
		}
		return 0
	}
	if m.Target.IsSpread() {
		sum := 0.0
		for slot := 0; slot < battle.NumSlots; slot++ {
			if opp := b.OpponentActivePokemon(slot); opp != nil {
				sum += damageScore(user, m, opp)
			}
		}
		return sum * spreadMultiplier
	}
	opp := opponentAt(b, target)
	if opp == nil {
		// Ally or self targets never score for damaging moves.
		if target == battle.TargetEmpty {
			if w := opponentAt(b, weakerOpponent(b)); w != nil {
				return damageScore(user, m, w)
			}
		}
		return 0
	}
	return damageScore(user, m, opp)
}

func damageScore(user *battle.Pokemon, m *battle.Move, opp *battle.Pokemon) float64 {
	acc := m.Accuracy
	if acc <= 0 {
		acc = 1
	}
	stab := 1.0
	if user != nil && (user.HasType(m.Type) || (user.Terastallized && user.TeraType == m.Type)) {
		stab = 1.5
	}
	return float64(m.BasePower) * acc * stab * battle.Effectiveness(m.Type, opp.Types...)
}
