package battle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Reserved per-slot action indices.
const (
	ActionDefault = -2
	ActionForfeit = -1
	ActionPass    = 0
)

const (
	switchBlockStart = 1
	moveBlockStart   = switchBlockStart + MaxTeamSize // 7
	targetsPerMove   = 5
	movesPerGimmick  = 4 * targetsPerMove // 20
)

var (
	// ErrInvalidAction marks an action that is well-formed but not legal in the
	// current battle state. It is the expected failure while probing masks.
	ErrInvalidAction = errors.New("invalid action")
	// ErrNoActivePokemon is returned when a move action names an empty slot.
	ErrNoActivePokemon = errors.New("no active pokemon in slot")
	// ErrActionIndex is returned for indices that do not map to any order.
	ErrActionIndex = errors.New("action index out of range")
)

// gimmickGenerations lists, per format prefix, how many gimmick blocks the
// action space carries. Each generation that introduced a battle gimmick adds one.
var gimmickGenerations = []struct {
	prefix string
	count  int
}{
	{"gen6", 1},
	{"gen7", 2},
	{"gen8", 3},
	{"gen9", 4},
}

// GimmickCount returns the number of gimmick blocks of the format's action space.
func GimmickCount(format string) int {
	f := strings.ToLower(format)
	for _, g := range gimmickGenerations {
		if strings.HasPrefix(f, g.prefix) {
			return g.count
		}
	}
	return 0
}

// ActionSpaceSize returns the per-slot action-space size for a format:
// pass, six switches, and 4 moves x 5 targets for the plain block plus one
// block per gimmick.
func ActionSpaceSize(format string) int {
	return 1 + MaxTeamSize + movesPerGimmick*(GimmickCount(format)+1)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidAction, fmt.Sprintf(format, args...))
}

// indexedMoves returns the move list that action indices refer to for a slot:
// the active Pokemon's moveset, or the forced single move (struggle, recharge).
func indexedMoves(b *DoubleBattle, slot int, active *Pokemon) []*Move {
	avail := b.AvailableMoves[slot]
	if len(avail) == 1 && (avail[0].ID == "struggle" || avail[0].ID == "recharge") {
		return avail
	}
	return active.Moves
}

// ActionToOrder materializes action index action for slot. With fake set, the
// order is built without checking legality; otherwise any rule violation returns
// an error wrapping ErrInvalidAction. Structural problems (no active Pokemon,
// index beyond the moveset or team) return other errors regardless of fake.
func ActionToOrder(b *DoubleBattle, slot, action int, fake bool) (Order, error) {
	if slot < 0 || slot >= NumSlots {
		return Order{}, fmt.Errorf("%w: slot %d", ErrActionIndex, slot)
	}
	switch {
	case action < ActionDefault:
		return Order{}, fmt.Errorf("%w: %d", ErrActionIndex, action)
	case action == ActionDefault:
		return DefaultOrder(), nil
	case action == ActionForfeit:
		return ForfeitOrder(), nil
	case action == ActionPass:
		if !fake && !b.Idle(slot) {
			return Order{}, invalid("slot %d cannot pass while it has moves or switches", slot)
		}
		return PassOrder(), nil
	case action < moveBlockStart:
		return switchToOrder(b, slot, action, fake)
	default:
		return moveToOrder(b, slot, action, fake)
	}
}

func switchToOrder(b *DoubleBattle, slot, action int, fake bool) (Order, error) {
	member := action - switchBlockStart
	if member >= len(b.Team) {
		return Order{}, fmt.Errorf("%w: switch to team member %d of %d", ErrActionIndex, member, len(b.Team))
	}
	target := b.Team[member]
	if !fake {
		if b.Trapped[slot] {
			return Order{}, invalid("slot %d is trapped", slot)
		}
		allowed := false
		for _, p := range b.AvailableSwitches[slot] {
			if p.BaseSpecies == target.BaseSpecies {
				allowed = true
				break
			}
		}
		if !allowed {
			return Order{}, invalid("%s is not an available switch for slot %d", target.Species, slot)
		}
	}
	return SwitchOrder(target), nil
}

func moveToOrder(b *DoubleBattle, slot, action int, fake bool) (Order, error) {
	active := b.ActivePokemon(slot)
	if active == nil {
		return Order{}, fmt.Errorf("%w: slot %d", ErrNoActivePokemon, slot)
	}
	offset := action - moveBlockStart
	moves := indexedMoves(b, slot, active)
	moveIdx := offset % movesPerGimmick / targetsPerMove
	if moveIdx >= len(moves) {
		return Order{}, fmt.Errorf("%w: move %d of %d", ErrActionIndex, moveIdx, len(moves))
	}
	move := moves[moveIdx]
	target := offset%targetsPerMove - 2
	gimmick := Gimmick(offset / movesPerGimmick)
	order := MoveOrder(move, target, gimmick)
	if fake {
		return order, nil
	}

	available := false
	for _, m := range b.AvailableMoves[slot] {
		if m.ID == move.ID {
			available = true
			break
		}
	}
	if !available {
		return Order{}, invalid("%s is not available for slot %d", move.ID, slot)
	}
	if !containsInt(PossibleTargets(b, move, active, gimmick == GimmickDynamax), target) {
		return Order{}, invalid("target %d is not valid for %s", target, move.ID)
	}
	switch gimmick {
	case GimmickNone:
	case GimmickMega:
		if !b.CanMegaEvolve[slot] {
			return Order{}, invalid("slot %d cannot mega evolve", slot)
		}
	case GimmickZMove:
		if !b.CanZMove[slot] || !moveIn(b.ZCapableMoves[slot], move.ID) {
			return Order{}, invalid("%s cannot be used as a z-move", move.ID)
		}
	case GimmickDynamax:
		if !b.CanDynamax[slot] {
			return Order{}, invalid("slot %d cannot dynamax", slot)
		}
	case GimmickTerastallize:
		if !b.CanTerastallize[slot] {
			return Order{}, invalid("slot %d cannot terastallize", slot)
		}
	default:
		return Order{}, invalid("unknown gimmick block %d", gimmick)
	}
	return order, nil
}

func moveIn(moves []*Move, id string) bool {
	for _, m := range moves {
		if m.ID == id {
			return true
		}
	}
	return false
}

// OrderToAction converts an order for slot back into its action index. With
// fake unset the resulting index is re-validated through ActionToOrder.
func OrderToAction(b *DoubleBattle, slot int, order Order, fake bool) (int, error) {
	var action int
	switch order.Kind {
	case OrderDefault:
		return ActionDefault, nil
	case OrderForfeit:
		return ActionForfeit, nil
	case OrderPass:
		action = ActionPass
	case OrderSwitch:
		if order.Pokemon == nil {
			return 0, fmt.Errorf("%w: switch order without a pokemon", ErrActionIndex)
		}
		action = -1
		for i, p := range b.Team {
			if p.BaseSpecies == order.Pokemon.BaseSpecies {
				action = switchBlockStart + i
				break
			}
		}
		if action < 0 {
			return 0, fmt.Errorf("%w: %s is not on the team", ErrActionIndex, order.Pokemon.Species)
		}
	case OrderMove:
		active := b.ActivePokemon(slot)
		if active == nil {
			return 0, fmt.Errorf("%w: slot %d", ErrNoActivePokemon, slot)
		}
		if order.Move == nil {
			return 0, fmt.Errorf("%w: move order without a move", ErrActionIndex)
		}
		moveIdx := -1
		for i, m := range indexedMoves(b, slot, active) {
			if m.ID == order.Move.ID {
				moveIdx = i
				break
			}
		}
		if moveIdx < 0 {
			return 0, fmt.Errorf("%w: %s is not in the moveset of %s", ErrActionIndex, order.Move.ID, active.Species)
		}
		if order.Target < TargetSelfB || order.Target > TargetOpponentB {
			return 0, fmt.Errorf("%w: target %d", ErrActionIndex, order.Target)
		}
		action = moveBlockStart + targetsPerMove*moveIdx + (order.Target + 2) + movesPerGimmick*int(order.Gimmick)
	default:
		return 0, fmt.Errorf("%w: order kind %d", ErrActionIndex, order.Kind)
	}
	if !fake {
		if _, err := ActionToOrder(b, slot, action, false); err != nil {
			return 0, err
		}
	}
	return action, nil
}

// DoubleOrderToActions encodes both slots of order. When strict is unset a
// failure is logged and both slots fall back to ActionDefault instead of
// returning an error.
func DoubleOrderToActions(b *DoubleBattle, order DoubleOrder, fake, strict bool) ([2]int, error) {
	var pair [2]int
	for slot := 0; slot < NumSlots; slot++ {
		action, err := OrderToAction(b, slot, order.Slot(slot), fake)
		if err != nil {
			if strict {
				return [2]int{ActionDefault, ActionDefault}, fmt.Errorf("slot %d: %w", slot, err)
			}
			logrus.Warnf("battle %s: cannot encode %q for slot %d: %v", b.Tag, order.Slot(slot).Choice(), slot, err)
			return [2]int{ActionDefault, ActionDefault}, nil
		}
		pair[slot] = action
	}
	return pair, nil
}
