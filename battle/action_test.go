package battle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionSpaceSize_ByGeneration(t *testing.T) {
	tests := []struct {
		format string
		want   int
	}{
		{"gen9doublesou", 107},
		{"GEN9VGC2024RegH", 107},
		{"gen8doublesou", 87},
		{"gen7doublesou", 67},
		{"gen6doublesou", 47},
		{"gen5doublesou", 27},
		{"", 27},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, ActionSpaceSize(tt.format))
		})
	}
}

func TestActionToOrder_ReservedIndices(t *testing.T) {
	b := newTestBattle()

	o, err := ActionToOrder(b, 0, ActionDefault, false)
	require.NoError(t, err)
	assert.Equal(t, OrderDefault, o.Kind)

	o, err = ActionToOrder(b, 0, ActionForfeit, false)
	require.NoError(t, err)
	assert.Equal(t, OrderForfeit, o.Kind)

	_, err = ActionToOrder(b, 0, -3, true)
	assert.ErrorIs(t, err, ErrActionIndex)
}

func TestActionToOrder_PassOnlyWhenIdle(t *testing.T) {
	// GIVEN slot 0 with moves available
	b := newTestBattle()

	// WHEN pass is validated
	_, err := ActionToOrder(b, 0, ActionPass, false)

	// THEN it is rejected until the slot has nothing else to do
	assert.ErrorIs(t, err, ErrInvalidAction)
	b.AvailableMoves[0], b.AvailableSwitches[0] = nil, nil
	o, err := ActionToOrder(b, 0, ActionPass, false)
	require.NoError(t, err)
	assert.Equal(t, OrderPass, o.Kind)
}

func TestActionToOrder_Switch(t *testing.T) {
	b := newTestBattle()

	// Team[2] is Rillaboom, an available switch.
	o, err := ActionToOrder(b, 0, 3, false)
	require.NoError(t, err)
	assert.Equal(t, OrderSwitch, o.Kind)
	assert.Equal(t, "Rillaboom", o.Pokemon.Species)

	// Team[1] is the active Amoonguss, not an available switch.
	_, err = ActionToOrder(b, 0, 2, false)
	assert.ErrorIs(t, err, ErrInvalidAction)

	// Team has four members, index 6 points past it.
	_, err = ActionToOrder(b, 0, 6, true)
	assert.ErrorIs(t, err, ErrActionIndex)
	assert.False(t, errors.Is(err, ErrInvalidAction))

	b.Trapped[0] = true
	_, err = ActionToOrder(b, 0, 3, false)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestActionToOrder_MoveDecoding(t *testing.T) {
	b := newTestBattle()

	// flareblitz (index 1) into opponent b with terastallization.
	o, err := ActionToOrder(b, 0, moveAction(1, TargetOpponentB, GimmickTerastallize), false)
	require.NoError(t, err)
	assert.Equal(t, "flareblitz", o.Move.ID)
	assert.Equal(t, TargetOpponentB, o.Target)
	assert.Equal(t, GimmickTerastallize, o.Gimmick)
	assert.Equal(t, "move flareblitz 2 terastallize", o.Choice())
}

func TestActionToOrder_MoveValidation(t *testing.T) {
	b := newTestBattle()

	// Ally target is legal for a "normal" move.
	assert.True(t, IsLegal(b, 0, moveAction(1, TargetSelfB, GimmickNone)))
	// Targeting yourself is not.
	assert.False(t, IsLegal(b, 0, moveAction(1, TargetSelfA, GimmickNone)))
	// Empty target is not valid for a single-target move.
	assert.False(t, IsLegal(b, 0, moveAction(1, TargetEmpty, GimmickNone)))
	// Mega evolution is unavailable.
	assert.False(t, IsLegal(b, 0, moveAction(1, TargetOpponentA, GimmickMega)))

	// Amoonguss knows three moves; index 3 is structural.
	_, err := ActionToOrder(b, 1, moveAction(3, TargetOpponentA, GimmickNone), false)
	assert.ErrorIs(t, err, ErrActionIndex)

	// A disabled (unavailable) move is a validation failure.
	b.AvailableMoves[0] = b.AvailableMoves[0][1:]
	_, err = ActionToOrder(b, 0, moveAction(0, TargetOpponentA, GimmickNone), false)
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestActionToOrder_NoActivePokemon(t *testing.T) {
	b := newTestBattle()
	b.Active[1].SetFainted()

	_, err := ActionToOrder(b, 1, moveAction(0, TargetOpponentA, GimmickNone), true)

	assert.ErrorIs(t, err, ErrNoActivePokemon)
}

func TestActionToOrder_StruggleIndexesForcedMove(t *testing.T) {
	// GIVEN slot 0 can only struggle
	b := newTestBattle()
	b.AvailableMoves[0] = []*Move{testMove("struggle", TypeNormal, CategoryPhysical, 50, TargetRandomNormal)}

	// WHEN index 0 of the move block is decoded
	o, err := ActionToOrder(b, 0, moveAction(0, TargetEmpty, GimmickNone), false)

	// THEN it refers to struggle rather than the first known move
	require.NoError(t, err)
	assert.Equal(t, "struggle", o.Move.ID)
}

func TestOrderToAction_RoundTripsLegalIndices(t *testing.T) {
	// GIVEN every legal index of both slots
	b := newTestBattle()
	for slot := 0; slot < NumSlots; slot++ {
		mask := LegalityMask(b, slot, ActionSpaceSize(b.Format))
		require.NotZero(t, mask.Count())
		for _, i := range mask.Legal() {
			// WHEN decoded then re-encoded
			o, err := ActionToOrder(b, slot, i, false)
			require.NoError(t, err)
			got, err := OrderToAction(b, slot, o, false)

			// THEN the original index comes back
			require.NoError(t, err)
			assert.Equal(t, i, got, "slot %d order %s", slot, o)
		}
	}
}

func TestOrderToAction_FakeSkipsValidation(t *testing.T) {
	b := newTestBattle()
	b.Trapped[0] = true
	rilla := b.Team[2]

	_, err := OrderToAction(b, 0, SwitchOrder(rilla), false)
	assert.ErrorIs(t, err, ErrInvalidAction)

	got, err := OrderToAction(b, 0, SwitchOrder(rilla), true)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestDoubleOrderToActions_NonStrictFallsBackToDefault(t *testing.T) {
	// GIVEN an order naming a Pokemon that is not on the team
	b := newTestBattle()
	stranger := NewPokemon("p1: Pikachu", "Pikachu", 50)
	order := DoubleOrder{First: MoveOrder(b.Team[0].Moves[1], TargetOpponentA, GimmickNone), Second: SwitchOrder(stranger)}

	// WHEN encoded non-strictly
	pair, err := DoubleOrderToActions(b, order, true, false)

	// THEN both slots fall back to default without an error
	require.NoError(t, err)
	assert.Equal(t, [2]int{ActionDefault, ActionDefault}, pair)

	// AND strict mode reports the failure
	_, err = DoubleOrderToActions(b, order, true, true)
	assert.Error(t, err)
}

func TestDoubleOrderToActions_EncodesBothSlots(t *testing.T) {
	b := newTestBattle()
	order := DoubleOrder{
		First:  MoveOrder(b.Team[0].Moves[0], TargetOpponentA, GimmickNone),
		Second: SwitchOrder(b.Team[3]),
	}

	pair, err := DoubleOrderToActions(b, order, true, false)

	require.NoError(t, err)
	assert.Equal(t, [2]int{moveAction(0, TargetOpponentA, GimmickNone), 4}, pair)
	assert.Equal(t, "/choose move fakeout 1, switch fluttermane", order.Message())
}
