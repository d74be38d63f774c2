package showdown

import (
	"encoding/json"
	"fmt"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dex"
)

// Request is the JSON payload of a |request| line.
type Request struct {
	Active      []ActiveRequest `json:"active"`
	Side        SideRequest     `json:"side"`
	ForceSwitch []bool          `json:"forceSwitch"`
	TeamPreview bool            `json:"teamPreview"`
	Wait        bool            `json:"wait"`
	RQID        int             `json:"rqid"`
}

// ActiveRequest describes what one active slot may do.
type ActiveRequest struct {
	Moves           []MoveRequest `json:"moves"`
	Trapped         bool          `json:"trapped"`
	MaybeTrapped    bool          `json:"maybeTrapped"`
	CanMegaEvo      bool          `json:"canMegaEvo"`
	CanDynamax      bool          `json:"canDynamax"`
	CanTerastallize string        `json:"canTerastallize"`
	// CanZMove is aligned with Moves; nil entries cannot become Z-moves.
	CanZMove []*ZMoveRequest `json:"canZMove"`
}

// MoveRequest is one entry of ActiveRequest.Moves.
type MoveRequest struct {
	Move     string   `json:"move"`
	ID       string   `json:"id"`
	PP       int      `json:"pp"`
	MaxPP    int      `json:"maxpp"`
	Target   string   `json:"target"`
	Disabled flexBool `json:"disabled"`
}

// ZMoveRequest names the Z-move a base move turns into.
type ZMoveRequest struct {
	Move   string `json:"move"`
	Target string `json:"target"`
}

// SideRequest is the own side as the server sees it.
type SideRequest struct {
	Name    string        `json:"name"`
	ID      string        `json:"id"`
	Pokemon []SidePokemon `json:"pokemon"`
}

// SidePokemon is one own team member. The first entries are the active
// positions in slot order.
type SidePokemon struct {
	Ident         string   `json:"ident"`
	Details       string   `json:"details"`
	Condition     string   `json:"condition"`
	Active        bool     `json:"active"`
	Moves         []string `json:"moves"`
	Item          string   `json:"item"`
	Ability       string   `json:"ability"`
	BaseAbility   string   `json:"baseAbility"`
	TeraType      string   `json:"teraType"`
	Terastallized string   `json:"terastallized"`
}

// flexBool accepts true/false as well as the string form the server uses
// for moves disabled by an effect.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("disabled flag %s: %w", data, err)
	}
	*f = flexBool(s != "")
	return nil
}

// ParseRequest decodes a |request| payload.
func ParseRequest(payload string) (*Request, error) {
	var r Request
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return &r, nil
}

// ForcesSwitch reports whether any slot must switch before the turn continues.
func (r *Request) ForcesSwitch() bool {
	for _, f := range r.ForceSwitch {
		if f {
			return true
		}
	}
	return false
}

// Apply replaces the request-scoped state of b with r and refreshes the own
// team. Team order is fixed at first sight and never follows the server's
// reordering.
func (r *Request) Apply(b *battle.DoubleBattle, d *dex.Dex) {
	b.ClearRequest()
	b.Wait = r.Wait
	b.TeamPreview = r.TeamPreview
	if r.Side.ID != "" {
		b.PlayerRole = r.Side.ID
	}

	b.Active = [battle.NumSlots]*battle.Pokemon{}
	for i, sp := range r.Side.Pokemon {
		mon := b.TeamMember(sp.Ident)
		if mon == nil {
			mon = b.AddTeamMember(newMember(sp.Ident, parseDetails(sp.Details), d))
		}
		sp.update(mon, d)
		if i < battle.NumSlots && sp.Active && !b.TeamPreview {
			b.Active[i] = mon
		}
	}

	var reserves []*battle.Pokemon
	for _, mon := range b.Team {
		if !mon.Active && !mon.Fainted {
			reserves = append(reserves, mon)
		}
	}

	if r.ForcesSwitch() {
		for slot := 0; slot < battle.NumSlots && slot < len(r.ForceSwitch); slot++ {
			if r.ForceSwitch[slot] {
				b.ForceSwitch[slot] = true
				b.AvailableSwitches[slot] = append([]*battle.Pokemon(nil), reserves...)
			}
		}
		return
	}

	for slot := 0; slot < battle.NumSlots && slot < len(r.Active); slot++ {
		mon := b.ActivePokemon(slot)
		if mon == nil {
			continue
		}
		act := r.Active[slot]
		for i, mr := range act.Moves {
			m := requestMove(mon, mr, d)
			if m == nil {
				continue
			}
			b.AvailableMoves[slot] = append(b.AvailableMoves[slot], m)
			if i < len(act.CanZMove) && act.CanZMove[i] != nil {
				b.ZCapableMoves[slot] = append(b.ZCapableMoves[slot], m)
			}
		}
		b.Trapped[slot] = act.Trapped
		if !act.Trapped {
			b.AvailableSwitches[slot] = append([]*battle.Pokemon(nil), reserves...)
		}
		b.CanMegaEvolve[slot] = act.CanMegaEvo
		b.CanZMove[slot] = len(b.ZCapableMoves[slot]) > 0
		b.CanDynamax[slot] = act.CanDynamax
		b.CanTerastallize[slot] = act.CanTerastallize != ""
	}
}

// requestMove resolves a request move against the moveset of mon and
// refreshes its PP. It returns nil for disabled moves.
func requestMove(mon *battle.Pokemon, mr MoveRequest, d *dex.Dex) *battle.Move {
	id := mr.ID
	if id == "" {
		id = mr.Move
	}
	id = battle.ToID(id)
	if id == "struggle" || id == "recharge" {
		if mr.Disabled {
			return nil
		}
		return d.NewMove(id)
	}
	m := mon.Move(id)
	if m == nil {
		m = mon.AddMove(d.NewMove(id))
	}
	if mr.MaxPP > 0 {
		m.PP, m.MaxPP = mr.PP, mr.MaxPP
	}
	if m.Type == battle.TypeUnknown && mr.Target != "" {
		m.Target = battle.Target(mr.Target)
	}
	m.Disabled = bool(mr.Disabled)
	if m.Disabled {
		return nil
	}
	return m
}

func newMember(ident string, det details, d *dex.Dex) *battle.Pokemon {
	mon := battle.NewPokemon(ident, det.Species, det.Level)
	if s, ok := d.Species(det.Species); ok {
		mon.Types = s.PokemonTypes()
	}
	mon.TeraType = det.TeraType
	return mon
}

func (sp SidePokemon) update(mon *battle.Pokemon, d *dex.Dex) {
	parseCondition(sp.Condition).apply(mon)
	mon.Active = sp.Active && !mon.Fainted
	mon.Item = sp.Item
	mon.Ability = sp.Ability
	if mon.Ability == "" {
		mon.Ability = sp.BaseAbility
	}
	if t, ok := battle.ParseType(sp.TeraType); ok {
		mon.TeraType = t
	}
	if sp.Terastallized != "" {
		if t, ok := battle.ParseType(sp.Terastallized); ok {
			mon.Terastallized = true
			mon.TeraType = t
			mon.Types = []battle.PokemonType{t}
		}
	}
	for _, id := range sp.Moves {
		mon.AddMove(d.NewMove(id))
	}
}
