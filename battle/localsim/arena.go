// Package localsim is an in-process two-versus-two battle engine. It plays
// collection battles without a Showdown server, deterministically for a given
// seed, and asks agents for decisions at the same points the live server
// does: once per turn and once per forced switch.
//
// The engine covers what the recorded features depend on: stats from the
// dex, priority and speed order, damage from base power, STAB, type
// effectiveness and a random roll, non-volatile status, protection, and the
// generation's once-per-battle gimmick. Stat stages, weather, terrain,
// abilities and items are not modelled.
package localsim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dex"
	"github.com/vgc-imitation/collector/battle/teams"
)

// Config tunes the engine.
type Config struct {
	Format string
	// MaxTurns ends the battle in a tie.
	MaxTurns int
	// Level applies to sets that do not specify one.
	Level int
}

// DefaultConfig returns the settings used for offline collection.
func DefaultConfig(format string) Config {
	return Config{Format: format, MaxTurns: 100, Level: 50}
}

// Arena plays battles in process. It is safe for sequential use by one
// collector; concurrent Play calls are serialized.
type Arena struct {
	cfg Config
	dex *dex.Dex

	mu      sync.Mutex
	rng     *rand.Rand
	battles int
}

// NewArena returns an Arena drawing damage rolls and speed ties from rng.
func NewArena(cfg Config, rng *rand.Rand) *Arena {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultConfig(cfg.Format).MaxTurns
	}
	if cfg.Level <= 0 {
		cfg.Level = DefaultConfig(cfg.Format).Level
	}
	return &Arena{cfg: cfg, dex: dex.Default(), rng: rng}
}

// Close is a no-op; the engine holds no external resources.
func (a *Arena) Close() error { return nil }

// Play runs one battle to completion.
func (a *Arena) Play(ctx context.Context, teacher, opponent battle.Contestant) (battle.Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.battles++
	tag := fmt.Sprintf("battle-%s-%d", a.cfg.Format, a.battles)
	out := battle.Outcome{BattleTag: tag, Opponent: opponent.Name}

	e := &engine{
		tag:      tag,
		gen:      battle.GenFromFormat(a.cfg.Format),
		maxTurns: a.cfg.MaxTurns,
		rng:      a.rng,
		dex:      a.dex,
	}
	p1, err := a.newSide(tag, "p1", teacher)
	if err != nil {
		return out, err
	}
	p2, err := a.newSide(tag, "p2", opponent)
	if err != nil {
		return out, err
	}
	p1.foe, p2.foe = p2, p1
	p1.view.OpponentName, p2.view.OpponentName = opponent.Name, teacher.Name
	e.sides = [2]*side{p1, p2}

	for _, s := range e.sides {
		for slot := 0; slot < battle.NumSlots && slot < len(s.fighters); slot++ {
			e.switchIn(s, slot, s.fighters[slot])
		}
	}

	result, err := e.run(ctx)
	out.Turns = e.turn
	if err != nil {
		return out, err
	}
	out.Finished = true
	switch result {
	case p1:
		out.Winner, out.Won = teacher.Name, true
	case p2:
		out.Winner = opponent.Name
	}
	for _, s := range e.sides {
		s.view.Finished = true
		s.view.Winner = out.Winner
		s.view.Won = result == s
	}
	logrus.Debugf("%s: finished after %d turns, winner %q", tag, e.turn, out.Winner)
	return out, nil
}

func (a *Arena) newSide(tag, role string, c battle.Contestant) (*side, error) {
	if c.Agent == nil || c.Team == nil {
		return nil, fmt.Errorf("contestant %q needs an agent and a team", c.Name)
	}
	team, err := teams.ParseTeam(c.Team.NextTeam())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", battle.ErrTeamRejected, c.Name, err)
	}
	s := &side{role: role, contestant: c, view: battle.NewDoubleBattle(tag, a.cfg.Format, c.Name)}
	s.view.PlayerRole = role
	for _, set := range team {
		f, err := newFighter(a.dex, set, role, a.cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		s.fighters = append(s.fighters, f)
		s.view.AddTeamMember(f.own)
	}
	return s, nil
}

// run plays turns until one side is defeated or the turn cap is reached. It
// returns the winning side, or nil on a tie.
func (e *engine) run(ctx context.Context) (*side, error) {
	for e.turn = 1; ; e.turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.turn > e.maxTurns {
			e.turn = e.maxTurns
			return nil, nil
		}
		e.sync()

		var actions []*action
		for _, s := range e.sides {
			if !e.prepareRequest(s, false) {
				continue
			}
			acts, err := e.decide(ctx, s)
			if err != nil {
				return nil, err
			}
			actions = append(actions, acts...)
		}
		if w, done := e.winner(); done {
			return w, nil
		}

		e.order(actions)
		for _, a := range actions {
			e.execute(a)
		}
		e.endOfTurn()
		if w, done := e.winner(); done {
			e.sync()
			return w, nil
		}
		if err := e.forcedSwitches(ctx); err != nil {
			return nil, err
		}
		if w, done := e.winner(); done {
			return w, nil
		}
	}
}

// forcedSwitches asks each side with fainted actives and remaining reserves
// for replacements.
func (e *engine) forcedSwitches(ctx context.Context) error {
	e.sync()
	var actions []*action
	for _, s := range e.sides {
		if !e.prepareRequest(s, true) {
			continue
		}
		acts, err := e.decide(ctx, s)
		if err != nil {
			return err
		}
		actions = append(actions, acts...)
	}
	for _, a := range actions {
		if a.kind == battle.OrderSwitch {
			e.switchIn(a.side, a.slot, a.switchTo)
		}
	}
	for _, s := range e.sides {
		s.view.ClearRequest()
	}
	return nil
}

// winner reports whether the battle is over and who won; a nil side with
// done set is a tie.
func (e *engine) winner() (*side, bool) {
	p1, p2 := e.sides[0].defeated(), e.sides[1].defeated()
	switch {
	case p1 && p2:
		return nil, true
	case p1:
		return e.sides[1], true
	case p2:
		return e.sides[0], true
	default:
		return nil, false
	}
}
