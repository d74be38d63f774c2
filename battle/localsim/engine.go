package localsim

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dex"
)

const (
	dynamaxDuration = 3
	switchPriority  = 7
)

type side struct {
	role       string
	contestant battle.Contestant
	fighters   []*fighter
	active     [battle.NumSlots]*fighter
	view       *battle.DoubleBattle
	foe        *side

	teraUsed    bool
	dynamaxUsed bool
	forfeited   bool
	decisions   int
}

func (s *side) reserves() []*fighter {
	var out []*fighter
	for _, f := range s.fighters {
		if !f.fainted() && f != s.active[0] && f != s.active[1] {
			out = append(out, f)
		}
	}
	return out
}

func (s *side) defeated() bool {
	if s.forfeited {
		return true
	}
	for _, f := range s.fighters {
		if !f.fainted() {
			return false
		}
	}
	return true
}

func (s *side) slotOf(f *fighter) int {
	for slot, a := range s.active {
		if a == f {
			return slot
		}
	}
	return -1
}

// liveActive returns the non-fainted fighter in slot, or nil.
func (s *side) liveActive(slot int) *fighter {
	if f := s.active[slot]; f != nil && !f.fainted() {
		return f
	}
	return nil
}

func (s *side) fighterFor(p *battle.Pokemon) *fighter {
	if p == nil {
		return nil
	}
	for _, f := range s.fighters {
		if f.own == p || f.own.BaseSpecies == p.BaseSpecies {
			return f
		}
	}
	return nil
}

type engine struct {
	tag      string
	gen      int
	maxTurns int
	rng      *rand.Rand
	dex      *dex.Dex
	sides    [2]*side
	turn     int
}

// action is one resolved slot order.
type action struct {
	side     *side
	user     *fighter
	slot     int
	kind     battle.OrderKind
	move     *battle.Move
	target   int
	gimmick  battle.Gimmick
	switchTo *fighter
}

func (a *action) priority() int {
	if a.kind == battle.OrderSwitch {
		return switchPriority
	}
	if a.move != nil {
		return a.move.Priority
	}
	return 0
}

// sync pushes engine state into both trainers' views.
func (e *engine) sync() {
	for _, s := range e.sides {
		s.view.Turn = e.turn
		for _, f := range s.fighters {
			f.syncOwn()
			f.syncSeen()
			f.own.Active = s.slotOf(f) >= 0
		}
		for slot := 0; slot < battle.NumSlots; slot++ {
			s.view.Active[slot] = nil
			if f := s.active[slot]; f != nil {
				s.view.Active[slot] = f.own
			}
			s.foe.view.OpponentActive[slot] = nil
			if f := s.active[slot]; f != nil {
				s.foe.view.OpponentActive[slot] = f.reveal(s.foe.view, s.role)
			}
		}
	}
	for _, s := range e.sides {
		for _, f := range s.fighters {
			f.syncSeen()
		}
	}
}

// prepareRequest fills the request fields of s's view. A forced request only
// offers switches to slots whose Pokemon fainted. It reports whether any slot
// has something to do.
func (e *engine) prepareRequest(s *side, forced bool) bool {
	v := s.view
	v.ClearRequest()
	reserves := s.reserves()
	var reserveViews []*battle.Pokemon
	for _, f := range reserves {
		reserveViews = append(reserveViews, f.own)
	}
	busy := false
	for slot := 0; slot < battle.NumSlots; slot++ {
		f := s.active[slot]
		if forced {
			if f != nil && f.fainted() && len(reserves) > 0 {
				v.ForceSwitch[slot] = true
				v.AvailableSwitches[slot] = reserveViews
				busy = true
			}
			continue
		}
		if f == nil || f.fainted() {
			continue
		}
		v.AvailableMoves[slot] = f.usableMoves()
		v.AvailableSwitches[slot] = reserveViews
		v.CanTerastallize[slot] = e.gen >= 9 && !s.teraUsed && f.teraType != battle.TypeUnknown
		v.CanDynamax[slot] = e.gen == 8 && !s.dynamaxUsed
		busy = true
	}
	return busy
}

// decide asks s's agent for an order and resolves it against the engine.
func (e *engine) decide(ctx context.Context, s *side) ([]*action, error) {
	s.decisions++
	order, err := s.contestant.Agent.Decide(ctx, s.view)
	if err != nil {
		return nil, fmt.Errorf("%s decision: %w", s.contestant.Name, err)
	}
	if order.First.Kind == battle.OrderForfeit || order.Second.Kind == battle.OrderForfeit {
		s.forfeited = true
		return nil, nil
	}
	var actions []*action
	var switching *fighter
	for slot := 0; slot < battle.NumSlots; slot++ {
		a := e.resolve(s, slot, order.Slot(slot))
		if a == nil {
			continue
		}
		if a.kind == battle.OrderSwitch {
			if a.switchTo == switching {
				continue
			}
			switching = a.switchTo
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// resolve maps a slot order onto the engine. Illegal orders are replaced by
// the slot's default choice, as the server does after an invalid choice.
func (e *engine) resolve(s *side, slot int, o battle.Order) *action {
	v := s.view
	if v.Idle(slot) {
		return nil
	}
	if o.Kind == battle.OrderDefault || o.Kind == battle.OrderPass {
		o = defaultOrder(v, slot)
	} else if _, err := battle.OrderToAction(v, slot, o, false); err != nil {
		logrus.Debugf("%s: invalid choice for %s slot %d (%s): %v", e.tag, s.contestant.Name, slot, o.Choice(), err)
		o = defaultOrder(v, slot)
	}
	a := &action{side: s, user: s.active[slot], slot: slot, kind: o.Kind}
	switch o.Kind {
	case battle.OrderSwitch:
		a.switchTo = s.fighterFor(o.Pokemon)
		if a.switchTo == nil {
			return nil
		}
	case battle.OrderMove:
		a.move, a.target, a.gimmick = o.Move, o.Target, o.Gimmick
	default:
		return nil
	}
	return a
}

// defaultOrder is the first available move at its first target, else the
// first available switch, else pass.
func defaultOrder(v *battle.DoubleBattle, slot int) battle.Order {
	if mon := v.ActivePokemon(slot); mon != nil {
		for _, m := range v.AvailableMoves[slot] {
			if targets := battle.PossibleTargets(v, m, mon, false); len(targets) > 0 {
				target := targets[0]
				for _, t := range targets {
					if t > 0 {
						target = t
						break
					}
				}
				return battle.MoveOrder(m, target, battle.GimmickNone)
			}
		}
	}
	if sw := v.AvailableSwitches[slot]; len(sw) > 0 {
		return battle.SwitchOrder(sw[0])
	}
	return battle.PassOrder()
}

// order sorts actions by priority then speed; speed ties are broken randomly.
func (e *engine) order(actions []*action) {
	e.rng.Shuffle(len(actions), func(i, j int) { actions[i], actions[j] = actions[j], actions[i] })
	sort.SliceStable(actions, func(i, j int) bool {
		pi, pj := actions[i].priority(), actions[j].priority()
		if pi != pj {
			return pi > pj
		}
		return speedOf(actions[i]) > speedOf(actions[j])
	})
}

func speedOf(a *action) int {
	if a.user == nil {
		return 0
	}
	return a.user.speed()
}

func (e *engine) execute(a *action) {
	switch a.kind {
	case battle.OrderSwitch:
		e.switchIn(a.side, a.slot, a.switchTo)
	case battle.OrderMove:
		if a.user == nil || a.user.fainted() || a.side.active[a.slot] != a.user {
			return
		}
		e.useMove(a)
	}
}

func (e *engine) switchIn(s *side, slot int, f *fighter) {
	if f == nil || f.fainted() || s.slotOf(f) >= 0 {
		return
	}
	if out := s.active[slot]; out != nil && !out.fainted() {
		e.endDynamax(out)
		out.protectStreak = 0
	}
	f.activeTurns = 0
	f.protectStreak = 0
	f.flinched = false
	s.active[slot] = f
	f.reveal(s.foe.view, s.role)
}

func (e *engine) endDynamax(f *fighter) {
	if f.dynamaxTurns == 0 {
		return
	}
	f.dynamaxTurns = 0
	f.maxHP /= 2
	f.hp = (f.hp + 1) / 2
}

// endOfTurn applies residual damage and clears per-turn flags.
func (e *engine) endOfTurn() {
	for _, s := range e.sides {
		for slot := 0; slot < battle.NumSlots; slot++ {
			f := s.liveActive(slot)
			if f == nil {
				continue
			}
			switch f.status {
			case battle.StatusBRN:
				f.hp -= max(f.maxHP/16, 1)
			case battle.StatusPSN:
				f.hp -= max(f.maxHP/8, 1)
			case battle.StatusTOX:
				f.hp -= max(f.maxHP*f.toxicCounter/16, 1)
				f.toxicCounter++
			}
			f.protected = false
			f.flinched = false
			f.activeTurns++
			if f.dynamaxTurns == 1 {
				e.endDynamax(f)
			} else if f.dynamaxTurns > 1 {
				f.dynamaxTurns--
			}
		}
	}
}
