// Package teams reads Showdown team texts, converts between the export and
// packed formats, and supplies teams to battles.
package teams

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vgc-imitation/collector/battle"
)

// ErrEmptyTeam is returned when a team text holds no Pokemon.
var ErrEmptyTeam = errors.New("team has no pokemon")

// StatNames lists stat labels in Showdown order.
var StatNames = [6]string{"HP", "Atk", "Def", "SpA", "SpD", "Spe"}

// Set is one team member as written by a player.
type Set struct {
	Nickname string
	Species  string
	Item     string
	Ability  string
	Moves    []string
	Nature   string
	Gender   string
	EVs      [6]int
	IVs      [6]int
	Shiny    bool
	Level    int
	TeraType string
}

// NewSet returns a set with default IVs and level.
func NewSet(species string) Set {
	return Set{Species: species, IVs: [6]int{31, 31, 31, 31, 31, 31}, Level: 100}
}

// Name returns the nickname, or the species when there is none.
func (s Set) Name() string {
	if s.Nickname != "" {
		return s.Nickname
	}
	return s.Species
}

// Team is an ordered list of sets.
type Team []Set

// Validate checks the structural limits of a team.
func (t Team) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTeam
	}
	if len(t) > battle.MaxTeamSize {
		return fmt.Errorf("team has %d pokemon, at most %d allowed", len(t), battle.MaxTeamSize)
	}
	for i, s := range t {
		if strings.TrimSpace(s.Species) == "" {
			return fmt.Errorf("pokemon %d: missing species", i+1)
		}
		if len(s.Moves) == 0 {
			return fmt.Errorf("pokemon %d (%s): no moves", i+1, s.Species)
		}
		if len(s.Moves) > 4 {
			return fmt.Errorf("pokemon %d (%s): %d moves, at most 4 allowed", i+1, s.Species, len(s.Moves))
		}
	}
	return nil
}

// ParseTeam parses a team in either format: texts containing "|" are packed,
// everything else is export format.
func ParseTeam(text string) (Team, error) {
	var (
		t   Team
		err error
	)
	if strings.Contains(text, "|") {
		t, err = ParsePacked(text)
	} else {
		t, err = ParseExport(text)
	}
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
