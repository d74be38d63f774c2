package battle

// PossibleTargets returns the target positions a move used by mon may legally
// name in a /choose command. Positions whose slot is currently empty are
// dropped; TargetEmpty is always kept when the target class allows it.
func PossibleTargets(b *DoubleBattle, m *Move, mon *Pokemon, dynamax bool) []int {
	if m == nil || mon == nil {
		return nil
	}
	if m.ID == "recharge" {
		return []int{TargetEmpty}
	}

	selfPos := 0
	for slot := 0; slot < NumSlots; slot++ {
		if b.Active[slot] == mon {
			selfPos = -1 - slot
		}
	}
	if selfPos == 0 {
		return nil
	}
	allyPos := TargetSelfA
	if selfPos == TargetSelfA {
		allyPos = TargetSelfB
	}

	var targets []int
	switch {
	case dynamax || mon.Dynamaxed:
		if m.IsStatus() {
			targets = []int{TargetEmpty}
		} else {
			targets = []int{TargetOpponentA, TargetOpponentB}
		}
	case m.NonGhostTarget != "" && !mon.HasType(TypeGhost):
		targets = []int{TargetEmpty}
	default:
		switch m.Target {
		case TargetAdjacentAlly:
			targets = []int{allyPos}
		case TargetAdjacentAllyOrSelf:
			targets = []int{allyPos, selfPos}
		case TargetAdjacentFoe:
			targets = []int{TargetOpponentA, TargetOpponentB}
		case TargetAny, TargetNormal:
			targets = []int{allyPos, TargetOpponentA, TargetOpponentB}
		default:
			targets = []int{TargetEmpty}
		}
	}

	occupied := map[int]bool{TargetEmpty: true}
	for slot := 0; slot < NumSlots; slot++ {
		if b.ActivePokemon(slot) != nil {
			occupied[-1-slot] = true
		}
		if b.OpponentActivePokemon(slot) != nil {
			occupied[slot+1] = true
		}
	}
	kept := targets[:0]
	for _, t := range targets {
		if occupied[t] {
			kept = append(kept, t)
		}
	}
	return kept
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
