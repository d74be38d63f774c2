package showdown

import (
	"strconv"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dex"
)

// room is one battle the player takes part in.
type room struct {
	battle  *battle.DoubleBattle
	request *Request
	// pending is set when a move request waits for the next |turn| line.
	pending bool
	// splitLines counts down through a |split| pair; the public half is dropped.
	splitLines int
}

func newRoom(tag, format, playerName string) *room {
	if f := battle.FormatFromTag(tag); f != "" {
		format = f
	}
	return &room{battle: battle.NewDoubleBattle(tag, format, playerName)}
}

// applyLine updates the battle from one battle-log line.
func (r *room) applyLine(line Line, d *dex.Dex) {
	b := r.battle
	if r.splitLines > 0 {
		r.splitLines--
		if r.splitLines == 0 {
			return
		}
	}
	switch line.Kind {
	case "split":
		// The next line is the exact version for line.Arg(0); the one after is public.
		if line.Arg(0) == b.PlayerRole {
			r.splitLines = 2
		}
	case "player":
		role, name := line.Arg(0), line.Arg(1)
		if name == "" {
			return
		}
		if battle.ToID(name) == battle.ToID(b.PlayerName) {
			b.PlayerRole = role
		} else {
			b.OpponentName = name
		}
	case "poke":
		if line.Arg(0) == b.PlayerRole {
			return
		}
		det := parseDetails(line.Arg(1))
		if r.opponentBySpecies(det.Species) == nil {
			b.AddOpponentMember(newMember(line.Arg(0)+": "+det.Species, det, d))
		}
	case "switch", "drag", "replace":
		r.switchIn(line, d)
	case "-damage", "-heal", "-sethp":
		if mon := r.member(line.Arg(0)); mon != nil {
			parseCondition(line.Arg(1)).apply(mon)
		}
	case "faint":
		if mon := r.member(line.Arg(0)); mon != nil {
			mon.SetFainted()
			mon.Active = false
		}
	case "-status":
		if mon := r.member(line.Arg(0)); mon != nil {
			mon.Status = battle.ParseStatus(line.Arg(1))
		}
	case "-curestatus":
		if mon := r.member(line.Arg(0)); mon != nil && !mon.Fainted {
			mon.Status = battle.StatusNone
		}
	case "-terastallize":
		if mon := r.member(line.Arg(0)); mon != nil {
			if t, ok := battle.ParseType(line.Arg(1)); ok {
				mon.Terastallized = true
				mon.TeraType = t
				mon.Types = []battle.PokemonType{t}
			}
		}
	case "-start":
		if mon := r.member(line.Arg(0)); mon != nil && line.Arg(1) == "Dynamax" {
			mon.Dynamaxed = true
		}
	case "-end":
		if mon := r.member(line.Arg(0)); mon != nil && line.Arg(1) == "Dynamax" {
			mon.Dynamaxed = false
		}
	case "move":
		pos, ok := parsePosition(line.Arg(0))
		if !ok || pos.Role == b.PlayerRole {
			return
		}
		if mon := b.OpponentMember(pos.Ident); mon != nil {
			mon.AddMove(d.NewMove(line.Arg(1)))
		}
	case "detailschange":
		if mon := r.member(line.Arg(0)); mon != nil {
			det := parseDetails(line.Arg(1))
			mon.Species = det.Species
			mon.BaseSpecies = battle.ToID(det.Species)
			if s, ok := d.Species(det.Species); ok && !mon.Terastallized {
				mon.Types = s.PokemonTypes()
			}
		}
	case "turn":
		if turn, err := strconv.Atoi(line.Arg(0)); err == nil {
			b.Turn = turn
		}
	case "win":
		b.Finished = true
		b.Winner = line.Arg(0)
		b.Won = battle.ToID(b.Winner) == battle.ToID(b.PlayerName)
	case "tie":
		b.Finished = true
	}
}

// member resolves a position reference to a known Pokemon on either side.
func (r *room) member(ref string) *battle.Pokemon {
	pos, ok := parsePosition(ref)
	if !ok {
		return nil
	}
	if pos.Role == r.battle.PlayerRole {
		return r.battle.TeamMember(pos.Ident)
	}
	return r.battle.OpponentMember(pos.Ident)
}

func (r *room) opponentBySpecies(species string) *battle.Pokemon {
	id := battle.ToID(species)
	for _, mon := range r.battle.OpponentTeam {
		if mon.BaseSpecies == id {
			return mon
		}
	}
	return nil
}

func (r *room) switchIn(line Line, d *dex.Dex) {
	b := r.battle
	pos, ok := parsePosition(line.Arg(0))
	if !ok || pos.Slot < 0 || pos.Slot >= battle.NumSlots {
		return
	}
	det := parseDetails(line.Arg(1))
	cond := parseCondition(line.Arg(2))

	if pos.Role == b.PlayerRole {
		mon := b.TeamMember(pos.Ident)
		if mon == nil {
			mon = b.AddTeamMember(newMember(pos.Ident, det, d))
		}
		cond.apply(mon)
		if prev := b.Active[pos.Slot]; prev != nil && prev != mon {
			prev.Active = false
		}
		mon.Active = true
		b.Active[pos.Slot] = mon
		return
	}

	mon := b.OpponentMember(pos.Ident)
	if mon == nil {
		// Team preview registers members by species; nicknames show up on switch-in.
		if mon = r.opponentBySpecies(det.Species); mon != nil && !mon.Active && mon.MaxHP == 0 {
			mon.Ident = pos.Ident
		} else {
			mon = b.AddOpponentMember(newMember(pos.Ident, det, d))
		}
	}
	mon.Level = det.Level
	if det.TeraType != battle.TypeUnknown {
		mon.TeraType = det.TeraType
	}
	cond.apply(mon)
	if prev := b.OpponentActive[pos.Slot]; prev != nil && prev != mon {
		prev.Active = false
		prev.Dynamaxed = false
	}
	mon.Active = true
	b.OpponentActive[pos.Slot] = mon
}
