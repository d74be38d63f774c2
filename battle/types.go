package battle

import "strings"

// PokemonType is one of the 18 elemental types. The numeric value is the
// type's position in the observation one-hot block.
type PokemonType int

const (
	TypeUnknown PokemonType = iota - 1
	TypeNormal
	TypeFire
	TypeWater
	TypeElectric
	TypeGrass
	TypeIce
	TypeFighting
	TypePoison
	TypeGround
	TypeFlying
	TypePsychic
	TypeBug
	TypeRock
	TypeGhost
	TypeDragon
	TypeDark
	TypeSteel
	TypeFairy
)

// NumTypes is the width of the elemental type block of an observation.
const NumTypes = 18

// TypeNames lists the type vocabulary in encoding order.
var TypeNames = [NumTypes]string{
	"NORMAL", "FIRE", "WATER", "ELECTRIC", "GRASS", "ICE",
	"FIGHTING", "POISON", "GROUND", "FLYING", "PSYCHIC", "BUG",
	"ROCK", "GHOST", "DRAGON", "DARK", "STEEL", "FAIRY",
}

// ParseType maps a type name in any case ("Fire", "FIRE", "fire") to a PokemonType.
func ParseType(name string) (PokemonType, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range TypeNames {
		if n == upper {
			return PokemonType(i), true
		}
	}
	return TypeUnknown, false
}

func (t PokemonType) String() string {
	if t < 0 || int(t) >= NumTypes {
		return "UNKNOWN"
	}
	return TypeNames[t]
}

// Status is a non-volatile status condition.
type Status int

const (
	StatusNone Status = iota
	StatusSLP
	StatusPAR
	StatusBRN
	StatusFRZ
	StatusPSN
	StatusTOX
	// StatusFNT marks a fainted Pokemon. It is tracked but never one-hot encoded.
	StatusFNT
)

// NumStatuses is the width of the status block of an observation.
const NumStatuses = 6

// StatusNames lists the encoded status vocabulary in encoding order.
var StatusNames = [NumStatuses]string{"SLP", "PAR", "BRN", "FRZ", "PSN", "TOX"}

// ParseStatus maps a protocol status token ("par", "tox", "fnt") to a Status.
// Unrecognized tokens map to StatusNone.
func ParseStatus(token string) Status {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "slp":
		return StatusSLP
	case "par":
		return StatusPAR
	case "brn":
		return StatusBRN
	case "frz":
		return StatusFRZ
	case "psn":
		return StatusPSN
	case "tox":
		return StatusTOX
	case "fnt":
		return StatusFNT
	default:
		return StatusNone
	}
}

func (s Status) String() string {
	switch {
	case s == StatusNone:
		return ""
	case s == StatusFNT:
		return "fnt"
	case s > StatusNone && s < StatusFNT:
		return strings.ToLower(StatusNames[s-1])
	default:
		return ""
	}
}

// encodingIndex returns the one-hot position of s, or -1 when s is not encoded.
func (s Status) encodingIndex() int {
	if s > StatusNone && s < StatusFNT {
		return int(s) - 1
	}
	return -1
}

// MoveCategory is the damage class of a move.
type MoveCategory string

const (
	CategoryPhysical MoveCategory = "Physical"
	CategorySpecial  MoveCategory = "Special"
	CategoryStatus   MoveCategory = "Status"
)

// Target is a Showdown move target class.
type Target string

const (
	TargetAdjacentAlly       Target = "adjacentAlly"
	TargetAdjacentAllyOrSelf Target = "adjacentAllyOrSelf"
	TargetAdjacentFoe        Target = "adjacentFoe"
	TargetAll                Target = "all"
	TargetAllAdjacent        Target = "allAdjacent"
	TargetAllAdjacentFoes    Target = "allAdjacentFoes"
	TargetAllies             Target = "allies"
	TargetAllySide           Target = "allySide"
	TargetAllyTeam           Target = "allyTeam"
	TargetAny                Target = "any"
	TargetFoeSide            Target = "foeSide"
	TargetNormal             Target = "normal"
	TargetRandomNormal       Target = "randomNormal"
	TargetScripted           Target = "scripted"
	TargetSelf               Target = "self"
)

// IsSpread reports whether the target class hits several Pokemon at once.
func (t Target) IsSpread() bool {
	return t == TargetAllAdjacent || t == TargetAllAdjacentFoes
}
