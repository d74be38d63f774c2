// Package dataset writes and reads the imitation dataset: one JSON object per
// line, one line per decision of the recorded player, plus a YAML sidecar
// describing the run that produced it.
//
// This package depends only on the battle core types.
package dataset

import "github.com/vgc-imitation/collector/battle"

// Record is one decision of the recorded player.
type Record struct {
	BattleTag string `json:"battle_tag"`
	Turn      int    `json:"turn"`
	Teacher   string `json:"teacher"`
	Format    string `json:"format"`
	// Observation is computed before the decision is made.
	Observation []float64 `json:"obs_v0"`
	// Action holds the per-slot action indices of the chosen order.
	Action [battle.NumSlots]int `json:"action"`
	// Mask holds the per-slot legality masks at decision time.
	Mask [battle.NumSlots]battle.Mask `json:"mask"`
}

// Consistent reports whether each slot's action is allowed by that slot's mask.
func (r Record) Consistent() bool {
	for slot := 0; slot < battle.NumSlots; slot++ {
		if !r.Mask[slot].Allows(r.Action[slot]) {
			return false
		}
	}
	return true
}
