package localsim

import (
	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dex"
)

const (
	spreadModifier = 0.75
	stabModifier   = 1.5
	fullParaChance = 0.25
	thawChance     = 0.2
)

// protectMoves block every move aimed at the user for the rest of the turn.
var protectMoves = map[string]bool{"protect": true, "detect": true, "spikyshield": true}

// powderMoves do not affect Grass types.
var powderMoves = map[string]bool{"spore": true, "sleeppowder": true, "stunspore": true, "ragepowder": true}

func (e *engine) useMove(a *action) {
	user, s := a.user, a.side
	m := a.move

	switch a.gimmick {
	case battle.GimmickTerastallize:
		if !s.teraUsed && user.teraType != battle.TypeUnknown {
			s.teraUsed = true
			user.terastallized = true
			user.types = []battle.PokemonType{user.teraType}
		}
	case battle.GimmickDynamax:
		if !s.dynamaxUsed {
			s.dynamaxUsed = true
			user.dynamaxTurns = dynamaxDuration
			user.maxHP *= 2
			user.hp *= 2
		}
	}

	if !e.canAct(user) {
		return
	}
	if m != user.struggle && m.PP > 0 {
		m.PP--
	}
	if seen := user.seen; seen != nil && seen.Move(m.ID) == nil {
		seen.AddMove(&battle.Move{ID: m.ID, Name: m.Name, Type: m.Type, Category: m.Category,
			BasePower: m.BasePower, Accuracy: m.Accuracy, Priority: m.Priority, Target: m.Target,
			NonGhostTarget: m.NonGhostTarget, MaxPP: m.MaxPP, InflictsStatus: m.InflictsStatus})
	}

	if protectMoves[m.ID] {
		user.protected = user.protectStreak == 0
		if user.protected {
			user.protectStreak++
		} else {
			user.protectStreak = 0
		}
		return
	}
	user.protectStreak = 0
	if m.ID == "fakeout" && user.activeTurns > 0 {
		return
	}

	targets := e.targets(a)
	spread := len(targets) > 1
	for _, t := range targets {
		if t.protected && t != user {
			continue
		}
		if m.Accuracy < 1 && e.rng.Float64() >= m.Accuracy {
			continue
		}
		if m.IsStatus() {
			e.inflict(m, t)
			continue
		}
		e.hit(user, t, m, spread)
		if m.ID == "fakeout" {
			t.flinched = true
		}
	}
	if m == user.struggle {
		user.hp -= max(user.maxHP/4, 1)
	}
}

// canAct applies the status and flinch checks that may stop a move.
func (e *engine) canAct(f *fighter) bool {
	if f.flinched {
		return false
	}
	switch f.status {
	case battle.StatusSLP:
		f.sleepTurns--
		if f.sleepTurns > 0 {
			return false
		}
		f.status = battle.StatusNone
	case battle.StatusFRZ:
		if e.rng.Float64() >= thawChance {
			return false
		}
		f.status = battle.StatusNone
	case battle.StatusPAR:
		if e.rng.Float64() < fullParaChance {
			return false
		}
	}
	return true
}

// targets returns the fighters a move hits. Single-target moves aimed at an
// empty foe position redirect to the other foe.
func (e *engine) targets(a *action) []*fighter {
	s, m := a.side, a.move
	foe := s.foe
	var out []*fighter
	foes := func() {
		for slot := 0; slot < battle.NumSlots; slot++ {
			if f := foe.liveActive(slot); f != nil {
				out = append(out, f)
			}
		}
	}
	if a.user.dynamaxTurns > 0 && !m.IsStatus() {
		// Max moves hit a single foe.
		if f := e.foeAt(foe, a.target); f != nil {
			return []*fighter{f}
		}
		return nil
	}
	switch m.Target {
	case battle.TargetAllAdjacentFoes:
		foes()
	case battle.TargetAllAdjacent:
		foes()
		if ally := s.liveActive(1 - a.slot); ally != nil {
			out = append(out, ally)
		}
	case battle.TargetNormal, battle.TargetAny, battle.TargetAdjacentFoe, battle.TargetRandomNormal:
		switch a.target {
		case battle.TargetSelfA, battle.TargetSelfB:
			if ally := s.liveActive(-1 - a.target); ally != nil && ally != a.user {
				out = append(out, ally)
			}
		default:
			if f := e.foeAt(foe, a.target); f != nil {
				out = append(out, f)
			}
		}
	case battle.TargetAdjacentAlly:
		if ally := s.liveActive(1 - a.slot); ally != nil {
			out = append(out, ally)
		}
	}
	return out
}

// foeAt resolves a foe position, falling back to any live foe.
func (e *engine) foeAt(foe *side, target int) *fighter {
	if target == battle.TargetOpponentA || target == battle.TargetOpponentB {
		if f := foe.liveActive(target - 1); f != nil {
			return f
		}
	}
	var live []*fighter
	for slot := 0; slot < battle.NumSlots; slot++ {
		if f := foe.liveActive(slot); f != nil {
			live = append(live, f)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return live[e.rng.Intn(len(live))]
}

func (e *engine) hit(user, target *fighter, m *battle.Move, spread bool) {
	dmg := e.damage(user, target, m, spread)
	target.hp -= dmg
}

// damage follows the main-series formula: level- and stat-scaled base power,
// then spread, random roll, STAB, type effectiveness and burn.
func (e *engine) damage(user, target *fighter, m *battle.Move, spread bool) int {
	eff := battle.Effectiveness(m.Type, target.types...)
	if eff == 0 {
		return 0
	}
	atk, def := user.stats[dex.StatAtk], target.stats[dex.StatDef]
	if m.Category == battle.CategorySpecial {
		atk, def = user.stats[dex.StatSpA], target.stats[dex.StatSpD]
	}
	power := m.BasePower
	if user.dynamaxTurns > 0 {
		power = maxMovePower(power)
	}
	base := (2*user.level/5+2)*power*atk/max(def, 1)/50 + 2

	mod := float64(85+e.rng.Intn(16)) / 100
	if spread {
		mod *= spreadModifier
	}
	if user.hasSTAB(m.Type) {
		mod *= stabModifier
	}
	mod *= eff
	if user.status == battle.StatusBRN && m.Category == battle.CategoryPhysical {
		mod *= 0.5
	}
	return max(int(float64(base)*mod), 1)
}

// maxMovePower approximates the Max Move power table.
func maxMovePower(bp int) int {
	switch {
	case bp < 45:
		return 90
	case bp < 55:
		return 100
	case bp < 65:
		return 110
	case bp < 75:
		return 120
	case bp < 110:
		return 130
	case bp < 150:
		return 140
	default:
		return 150
	}
}

// inflict applies a status move's condition unless the target is immune or
// already has a status.
func (e *engine) inflict(m *battle.Move, t *fighter) {
	st := m.InflictsStatus
	if st == battle.StatusNone || t.status != battle.StatusNone {
		return
	}
	if battle.Effectiveness(m.Type, t.types...) == 0 {
		return
	}
	has := func(typ battle.PokemonType) bool {
		for _, own := range t.types {
			if own == typ {
				return true
			}
		}
		return false
	}
	switch {
	case powderMoves[m.ID] && has(battle.TypeGrass):
		return
	case st == battle.StatusPAR && has(battle.TypeElectric):
		return
	case st == battle.StatusBRN && has(battle.TypeFire):
		return
	case (st == battle.StatusPSN || st == battle.StatusTOX) && (has(battle.TypePoison) || has(battle.TypeSteel)):
		return
	case st == battle.StatusFRZ && has(battle.TypeIce):
		return
	}
	t.status = st
	switch st {
	case battle.StatusSLP:
		// Counts the waking turn too: 1-3 skipped turns.
		t.sleepTurns = 2 + e.rng.Intn(3)
	case battle.StatusTOX:
		t.toxicCounter = 1
	}
}
