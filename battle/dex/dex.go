// Package dex holds the static species and move data bundled with the
// collector. Live battles learn most of this from the server; the offline
// engine and the heuristic policies fall back to it for what the protocol
// does not reveal (opponent types before they are seen, base stats, targets).
package dex

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vgc-imitation/collector/battle"
)

//go:embed data/pokedex.yaml data/movedex.yaml
var files embed.FS

// Stat indices into Species.BaseStats.
const (
	StatHP = iota
	StatAtk
	StatDef
	StatSpA
	StatSpD
	StatSpe
)

// Species is one pokedex entry.
type Species struct {
	ID        string   `yaml:"-"`
	Name      string   `yaml:"name"`
	Types     []string `yaml:"types"`
	BaseStats []int    `yaml:"base_stats"`
}

// PokemonTypes returns the species' types in battle form.
func (s *Species) PokemonTypes() []battle.PokemonType {
	out := make([]battle.PokemonType, 0, len(s.Types))
	for _, name := range s.Types {
		if t, ok := battle.ParseType(name); ok {
			out = append(out, t)
		}
	}
	return out
}

// MoveEntry is one movedex entry.
type MoveEntry struct {
	ID             string  `yaml:"-"`
	Name           string  `yaml:"name"`
	Type           string  `yaml:"type"`
	Category       string  `yaml:"category"`
	BasePower      int     `yaml:"base_power"`
	Accuracy       float64 `yaml:"accuracy"`
	Priority       int     `yaml:"priority"`
	Target         string  `yaml:"target"`
	NonGhostTarget string  `yaml:"non_ghost_target"`
	PP             int     `yaml:"pp"`
	Status         string  `yaml:"status"`
}

// Dex indexes species and moves by Showdown id.
type Dex struct {
	species map[string]*Species
	moves   map[string]*MoveEntry
}

// Parse builds a Dex from pokedex and movedex YAML documents. Unknown keys
// are rejected.
func Parse(pokedex, movedex []byte) (*Dex, error) {
	d := &Dex{}
	if err := decodeStrict(pokedex, &d.species); err != nil {
		return nil, fmt.Errorf("parsing pokedex: %w", err)
	}
	if err := decodeStrict(movedex, &d.moves); err != nil {
		return nil, fmt.Errorf("parsing movedex: %w", err)
	}
	for id, s := range d.species {
		if len(s.BaseStats) != 6 {
			return nil, fmt.Errorf("species %s: want 6 base stats, got %d", id, len(s.BaseStats))
		}
		if len(s.PokemonTypes()) == 0 {
			return nil, fmt.Errorf("species %s: no known type in %v", id, s.Types)
		}
		s.ID = id
	}
	for id, m := range d.moves {
		if _, ok := battle.ParseType(m.Type); !ok {
			return nil, fmt.Errorf("move %s: unknown type %q", id, m.Type)
		}
		m.ID = id
	}
	return d, nil
}

func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}

var (
	defaultOnce sync.Once
	defaultDex  *Dex
	defaultErr  error
)

// Default returns the embedded dex, parsed once.
func Default() *Dex {
	defaultOnce.Do(func() {
		var pokedex, movedex []byte
		pokedex, defaultErr = files.ReadFile("data/pokedex.yaml")
		if defaultErr != nil {
			return
		}
		movedex, defaultErr = files.ReadFile("data/movedex.yaml")
		if defaultErr != nil {
			return
		}
		defaultDex, defaultErr = Parse(pokedex, movedex)
	})
	if defaultErr != nil {
		// The embedded files are part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("dex: embedded data: %v", defaultErr))
	}
	return defaultDex
}

// Species looks a species up by name or id.
func (d *Dex) Species(name string) (*Species, bool) {
	s, ok := d.species[battle.ToID(name)]
	return s, ok
}

// MoveEntry looks a move up by name or id.
func (d *Dex) MoveEntry(name string) (*MoveEntry, bool) {
	m, ok := d.moves[battle.ToID(name)]
	return m, ok
}

// Move returns a fresh battle.Move for name with full PP, or false when the
// move is unknown.
func (d *Dex) Move(name string) (*battle.Move, bool) {
	e, ok := d.MoveEntry(name)
	if !ok {
		return nil, false
	}
	return e.BattleMove(), true
}

// BattleMove converts the entry into a battle.Move with full PP.
func (e *MoveEntry) BattleMove() *battle.Move {
	typ, _ := battle.ParseType(e.Type)
	return &battle.Move{
		ID:             e.ID,
		Name:           e.Name,
		Type:           typ,
		Category:       battle.MoveCategory(e.Category),
		BasePower:      e.BasePower,
		Accuracy:       e.Accuracy,
		Priority:       e.Priority,
		Target:         battle.Target(e.Target),
		NonGhostTarget: battle.Target(e.NonGhostTarget),
		PP:             e.PP,
		MaxPP:          e.PP,
		InflictsStatus: battle.ParseStatus(e.Status),
	}
}

// NewMove returns the move for id from the dex, or a typeless placeholder
// carrying only the id when the dex does not know it. Callers that only need
// to index or name a move can always rely on the result.
func (d *Dex) NewMove(id string) *battle.Move {
	if m, ok := d.Move(id); ok {
		return m
	}
	return &battle.Move{
		ID:       battle.ToID(id),
		Name:     id,
		Type:     battle.TypeUnknown,
		Category: battle.CategoryStatus,
		Accuracy: 1,
		Target:   battle.TargetNormal,
	}
}

// Len returns the number of species and moves.
func (d *Dex) Len() (species, moves int) {
	return len(d.species), len(d.moves)
}
