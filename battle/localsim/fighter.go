package localsim

import (
	"fmt"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dex"
	"github.com/vgc-imitation/collector/battle/teams"
)

// fighter is the engine's ground truth for one team member. own is the
// Pokemon its trainer sees; seen is what the other trainer sees once it has
// been revealed.
type fighter struct {
	name      string
	level     int
	stats     [6]int
	hp, maxHP int
	status    battle.Status
	// baseTypes are the species types; types changes on terastallization.
	baseTypes []battle.PokemonType
	types     []battle.PokemonType
	teraType  battle.PokemonType

	terastallized bool
	dynamaxTurns  int
	sleepTurns    int
	toxicCounter  int
	activeTurns   int
	protectStreak int
	protected     bool
	flinched      bool

	moves    []*battle.Move
	struggle *battle.Move

	own  *battle.Pokemon
	seen *battle.Pokemon
}

func (f *fighter) fainted() bool {
	return f.hp <= 0
}

// usableMoves returns the moves with PP left, or struggle when none remain.
func (f *fighter) usableMoves() []*battle.Move {
	var out []*battle.Move
	for _, m := range f.moves {
		if m.PP > 0 && !m.Disabled {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		out = append(out, f.struggle)
	}
	return out
}

func (f *fighter) speed() int {
	s := f.stats[dex.StatSpe]
	if f.status == battle.StatusPAR {
		s /= 2
	}
	return s
}

func (f *fighter) hasSTAB(t battle.PokemonType) bool {
	for _, own := range f.baseTypes {
		if own == t {
			return true
		}
	}
	return f.terastallized && f.teraType == t
}

// newFighter builds a fighter from a team set. Species and moves must be in
// the dex; otherwise the team is rejected.
func newFighter(d *dex.Dex, set teams.Set, role string, defaultLevel int) (*fighter, error) {
	species, ok := d.Species(set.Species)
	if !ok {
		return nil, fmt.Errorf("%w: unknown species %q", battle.ErrTeamRejected, set.Species)
	}
	level := set.Level
	if level <= 0 || level == 100 {
		level = defaultLevel
	}
	f := &fighter{
		name:      set.Name(),
		level:     level,
		baseTypes: species.PokemonTypes(),
		teraType:  battle.TypeUnknown,
		struggle:  d.NewMove("struggle"),
	}
	f.types = append([]battle.PokemonType(nil), f.baseTypes...)
	if set.TeraType != "" {
		if t, ok := battle.ParseType(set.TeraType); ok {
			f.teraType = t
		}
	}
	for i := range f.stats {
		f.stats[i] = calcStat(i, species.BaseStats[i], set.IVs[i], set.EVs[i], level)
	}
	f.maxHP, f.hp = f.stats[dex.StatHP], f.stats[dex.StatHP]
	for _, name := range set.Moves {
		m, ok := d.Move(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown move %q", battle.ErrTeamRejected, set.Species, name)
		}
		f.moves = append(f.moves, m)
	}

	f.own = battle.NewPokemon(role+": "+f.name, species.Name, level)
	f.own.Item, f.own.Ability = set.Item, set.Ability
	f.own.TeraType = f.teraType
	for _, m := range f.moves {
		f.own.AddMove(m)
	}
	f.syncOwn()
	return f, nil
}

// calcStat applies the level-scaled stat formula with a neutral nature.
func calcStat(stat, base, iv, ev, level int) int {
	core := (2*base + iv + ev/4) * level / 100
	if stat == dex.StatHP {
		return core + level + 10
	}
	return core + 5
}

func (f *fighter) syncOwn() {
	p := f.own
	p.CurrentHP, p.MaxHP = max(f.hp, 0), f.maxHP
	p.Status = f.status
	p.Types = append(p.Types[:0], f.types...)
	p.Terastallized = f.terastallized
	p.Dynamaxed = f.dynamaxTurns > 0
	if f.fainted() {
		p.SetFainted()
	}
}

// reveal creates the opponent-side view of f on first sight.
func (f *fighter) reveal(view *battle.DoubleBattle, role string) *battle.Pokemon {
	if f.seen == nil {
		f.seen = battle.NewPokemon(role+": "+f.name, f.own.Species, f.level)
		f.seen = view.AddOpponentMember(f.seen)
	}
	return f.seen
}

func (f *fighter) syncSeen() {
	p := f.seen
	if p == nil {
		return
	}
	p.MaxHP = 100
	p.CurrentHP = 0
	if f.hp > 0 {
		// Percent HP as the protocol reports it, never rounding a live Pokemon to 0.
		p.CurrentHP = max((f.hp*100+f.maxHP-1)/f.maxHP, 1)
	}
	p.Status = f.status
	p.Types = append(p.Types[:0], f.types...)
	p.Terastallized = f.terastallized
	if f.terastallized {
		p.TeraType = f.teraType
	}
	p.Dynamaxed = f.dynamaxTurns > 0
	if f.fainted() {
		p.SetFainted()
	}
}
