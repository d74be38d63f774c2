package battle

import "fmt"

// Move is a move known by a Pokemon. Static fields come from the dex or the
// server request; PP and Disabled track the current battle.
type Move struct {
	ID        string
	Name      string
	Type      PokemonType
	Category  MoveCategory
	BasePower int
	// Accuracy in [0,1]; moves that cannot miss use 1.
	Accuracy float64
	Priority int
	Target   Target
	// NonGhostTarget overrides Target when the user is not Ghost-type (Curse).
	NonGhostTarget Target
	PP             int
	MaxPP          int
	Disabled       bool
	// InflictsStatus is the status applied by a status move, StatusNone otherwise.
	InflictsStatus Status
}

// IsStatus reports whether the move deals no direct damage.
func (m *Move) IsStatus() bool {
	return m.Category == CategoryStatus
}

func (m *Move) String() string {
	return fmt.Sprintf("%s(%s, bp=%d, %s)", m.ID, m.Type, m.BasePower, m.Target)
}

// Pokemon is one team member as seen from one side of a battle. Opponent
// Pokemon carry HP as a percentage (MaxHP 100) since that is all the protocol reveals.
type Pokemon struct {
	// Ident is the protocol identity without position, e.g. "p1: Incineroar".
	Ident       string
	Species     string
	BaseSpecies string
	Level       int
	CurrentHP   int
	MaxHP       int
	Status      Status
	Types       []PokemonType
	TeraType    PokemonType
	Item        string
	Ability     string
	// Moves keeps the order in which the moveset was first seen.
	Moves         []*Move
	Active        bool
	Fainted       bool
	Terastallized bool
	Dynamaxed     bool
}

// NewPokemon returns a Pokemon with no known tera type.
func NewPokemon(ident, species string, level int) *Pokemon {
	return &Pokemon{
		Ident:       ident,
		Species:     species,
		BaseSpecies: ToID(species),
		Level:       level,
		TeraType:    TypeUnknown,
	}
}

// HPRatio returns current/maximum HP, or 0 when the maximum is unknown.
func (p *Pokemon) HPRatio() float64 {
	if p == nil || p.MaxHP <= 0 {
		return 0
	}
	r := float64(p.CurrentHP) / float64(p.MaxHP)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// Move returns the known move with the given id, or nil.
func (p *Pokemon) Move(id string) *Move {
	for _, m := range p.Moves {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// AddMove appends a move to the moveset unless it is already known or the
// moveset is full. It returns the stored move.
func (p *Pokemon) AddMove(m *Move) *Move {
	if existing := p.Move(m.ID); existing != nil {
		return existing
	}
	if len(p.Moves) >= 4 {
		return m
	}
	p.Moves = append(p.Moves, m)
	return m
}

// HasType reports whether t is one of the Pokemon's current types.
func (p *Pokemon) HasType(t PokemonType) bool {
	for _, own := range p.Types {
		if own == t {
			return true
		}
	}
	return false
}

// SetFainted marks the Pokemon as fainted with zero HP.
func (p *Pokemon) SetFainted() {
	p.Fainted = true
	p.CurrentHP = 0
	p.Status = StatusFNT
}

func (p *Pokemon) String() string {
	if p == nil {
		return "<empty>"
	}
	return fmt.Sprintf("%s %d/%d %s", p.Species, p.CurrentHP, p.MaxHP, p.Status)
}
