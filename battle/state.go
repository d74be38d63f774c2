package battle

import (
	"strconv"
	"strings"
)

// NumSlots is the number of simultaneous battle positions per side.
const NumSlots = 2

// MaxTeamSize is the number of Pokemon a side may bring; it fixes the switch block
// of the action space.
const MaxTeamSize = 6

// DoubleBattle is the mutable snapshot of one two-versus-two battle from one
// player's point of view. A battle client creates it when the battle starts and
// mutates it in place as protocol messages arrive. Everything else treats it as
// read-only.
type DoubleBattle struct {
	Tag    string
	Format string
	Gen    int
	Turn   int

	PlayerRole   string // "p1" or "p2"
	PlayerName   string
	OpponentName string

	// Team keeps first-seen order for the lifetime of the battle; switch action
	// i refers to Team[i-1].
	Team         []*Pokemon
	OpponentTeam []*Pokemon

	Active         [NumSlots]*Pokemon
	OpponentActive [NumSlots]*Pokemon

	AvailableMoves    [NumSlots][]*Move
	AvailableSwitches [NumSlots][]*Pokemon
	// ZCapableMoves lists the available moves that can be used as Z-moves.
	ZCapableMoves [NumSlots][]*Move

	CanMegaEvolve   [NumSlots]bool
	CanZMove        [NumSlots]bool
	CanDynamax      [NumSlots]bool
	CanTerastallize [NumSlots]bool
	Trapped         [NumSlots]bool
	ForceSwitch     [NumSlots]bool

	Wait        bool
	TeamPreview bool

	Finished bool
	Won      bool
	Winner   string
}

// NewDoubleBattle creates an empty battle snapshot.
func NewDoubleBattle(tag, format, playerName string) *DoubleBattle {
	if format == "" {
		format = FormatFromTag(tag)
	}
	return &DoubleBattle{
		Tag:        tag,
		Format:     format,
		Gen:        GenFromFormat(format),
		PlayerName: playerName,
	}
}

// FormatFromTag extracts the format from a battle tag such as
// "battle-gen9doublesou-1234". It returns "" when the tag has no format part.
func FormatFromTag(tag string) string {
	parts := strings.Split(tag, "-")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// GenFromFormat returns the generation number encoded in a format name
// ("gen9doublesou" -> 9), or 0 when none is present.
func GenFromFormat(format string) int {
	f := strings.ToLower(format)
	if !strings.HasPrefix(f, "gen") {
		return 0
	}
	end := 3
	for end < len(f) && f[end] >= '0' && f[end] <= '9' {
		end++
	}
	gen, err := strconv.Atoi(f[3:end])
	if err != nil {
		return 0
	}
	return gen
}

// OpponentRole returns the protocol side id of the opponent.
func (b *DoubleBattle) OpponentRole() string {
	if b.PlayerRole == "p2" {
		return "p1"
	}
	return "p2"
}

// ActivePokemon returns the Pokemon in the given own slot, or nil when the slot
// is empty or its occupant has fainted.
func (b *DoubleBattle) ActivePokemon(slot int) *Pokemon {
	if slot < 0 || slot >= NumSlots {
		return nil
	}
	if p := b.Active[slot]; p != nil && !p.Fainted {
		return p
	}
	return nil
}

// OpponentActivePokemon is ActivePokemon for the opposing side.
func (b *DoubleBattle) OpponentActivePokemon(slot int) *Pokemon {
	if slot < 0 || slot >= NumSlots {
		return nil
	}
	if p := b.OpponentActive[slot]; p != nil && !p.Fainted {
		return p
	}
	return nil
}

// TeamMember returns the own Pokemon with the given ident, or nil.
func (b *DoubleBattle) TeamMember(ident string) *Pokemon {
	return findByIdent(b.Team, ident)
}

// OpponentMember returns the opposing Pokemon with the given ident, or nil.
func (b *DoubleBattle) OpponentMember(ident string) *Pokemon {
	return findByIdent(b.OpponentTeam, ident)
}

// AddTeamMember registers an own Pokemon, keeping first-seen order.
func (b *DoubleBattle) AddTeamMember(p *Pokemon) *Pokemon {
	if existing := b.TeamMember(p.Ident); existing != nil {
		return existing
	}
	b.Team = append(b.Team, p)
	return p
}

// AddOpponentMember registers an opposing Pokemon, keeping first-seen order.
func (b *DoubleBattle) AddOpponentMember(p *Pokemon) *Pokemon {
	if existing := b.OpponentMember(p.Ident); existing != nil {
		return existing
	}
	b.OpponentTeam = append(b.OpponentTeam, p)
	return p
}

// ClearRequest resets everything that is only valid for one server request.
func (b *DoubleBattle) ClearRequest() {
	for slot := 0; slot < NumSlots; slot++ {
		b.AvailableMoves[slot] = nil
		b.AvailableSwitches[slot] = nil
		b.ZCapableMoves[slot] = nil
		b.CanMegaEvolve[slot] = false
		b.CanZMove[slot] = false
		b.CanDynamax[slot] = false
		b.CanTerastallize[slot] = false
		b.Trapped[slot] = false
		b.ForceSwitch[slot] = false
	}
	b.Wait = false
	b.TeamPreview = false
}

// Idle reports whether the given slot has nothing to do this request.
func (b *DoubleBattle) Idle(slot int) bool {
	return len(b.AvailableMoves[slot]) == 0 && len(b.AvailableSwitches[slot]) == 0
}

func findByIdent(team []*Pokemon, ident string) *Pokemon {
	for _, p := range team {
		if p.Ident == ident {
			return p
		}
	}
	return nil
}
