package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dataset"
)

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"heuristic":        KindHeuristic,
		"Simple":           KindHeuristic,
		"SimpleHeuristics": KindHeuristic,
		"MAXBP":            KindMaxBasePower,
		"maxbasepower":     KindMaxBasePower,
		" random ":         KindRandom,
	}
	for name, want := range tests {
		got, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseKind("minimax")
	assert.ErrorContains(t, err, "unknown policy")
}

func TestParseKinds(t *testing.T) {
	kinds, err := ParseKinds("simple,maxbp, random")
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindHeuristic, KindMaxBasePower, KindRandom}, kinds)

	_, err = ParseKinds("simple,nope")
	assert.Error(t, err)
}

func TestKind_AgentName(t *testing.T) {
	assert.Equal(t, "SimpleHeuristicsPlayer", KindHeuristic.AgentName())
	assert.Equal(t, "MaxBasePowerPlayer", KindMaxBasePower.AgentName())
	assert.Equal(t, "RandomPlayer", KindRandom.AgentName())
	assert.Equal(t, "other", Kind("other").AgentName())
}

func TestNew_EveryKindProducesLegalOrders(t *testing.T) {
	for _, kind := range []Kind{KindHeuristic, KindMaxBasePower, KindRandom} {
		t.Run(string(kind), func(t *testing.T) {
			// GIVEN an agent of each kind
			agent := New(kind, newRNG())
			b := newBattle()

			for i := 0; i < 20; i++ {
				// WHEN it decides
				order, err := agent.Decide(context.Background(), b)

				// THEN both slots are legal
				require.NoError(t, err)
				assert.True(t, orderIsLegal(b, order), "order %s", order)
			}
		})
	}
}

func TestNew_PanicsOnUnknownKind(t *testing.T) {
	assert.Panics(t, func() { New(Kind("bogus"), newRNG()) })
}

func TestRandom_SlotsNeverSwitchToSamePokemon(t *testing.T) {
	// GIVEN both slots forced to switch with two reserves
	b := newBattle()
	for slot := range b.AvailableMoves {
		b.AvailableMoves[slot] = nil
		b.ForceSwitch[slot] = true
	}
	agent := NewRandom(newRNG())

	for i := 0; i < 50; i++ {
		order, err := agent.Decide(context.Background(), b)
		require.NoError(t, err)
		// THEN the two slots bring in different Pokemon
		require.Equal(t, battle.OrderSwitch, order.First.Kind)
		require.Equal(t, battle.OrderSwitch, order.Second.Kind)
		assert.NotEqual(t, order.First.Pokemon.BaseSpecies, order.Second.Pokemon.BaseSpecies)
	}
}

func TestRandom_AtMostOneTeraPerTurn(t *testing.T) {
	b := newBattle()
	b.CanTerastallize = [battle.NumSlots]bool{true, true}
	agent := NewRandom(newRNG())

	for i := 0; i < 200; i++ {
		order, err := agent.Decide(context.Background(), b)
		require.NoError(t, err)
		both := order.First.Gimmick == battle.GimmickTerastallize && order.Second.Gimmick == battle.GimmickTerastallize
		assert.False(t, both, "order %s", order)
	}
}

func TestRandom_SingleReserveLeavesSecondSlotPassing(t *testing.T) {
	// GIVEN both slots must switch but only Rillaboom is left
	b := newBattle()
	for slot := range b.AvailableMoves {
		b.AvailableMoves[slot] = nil
		b.AvailableSwitches[slot] = []*battle.Pokemon{b.Team[2]}
		b.ForceSwitch[slot] = true
	}

	order, err := NewRandom(newRNG()).Decide(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, "/choose switch rillaboom, pass", order.Message())
}

func TestMaxBasePower_PicksStrongestMoveAtWeakerFoe(t *testing.T) {
	// GIVEN Tornadus is the weaker opponent
	b := newBattle()
	b.OpponentActive[1].CurrentHP = 30

	order, err := NewMaxBasePower(newRNG()).Decide(context.Background(), b)

	// THEN Incineroar uses Flare Blitz into Tornadus and Amoonguss Pollen Puff into Tornadus
	require.NoError(t, err)
	assert.Equal(t, "move flareblitz 2", order.First.Choice())
	assert.Equal(t, "move pollenpuff 2", order.Second.Choice())
}

func TestMaxBasePower_FallsBackToRandomLegal(t *testing.T) {
	// GIVEN slot 0 only has status moves
	b := newBattle()
	b.AvailableMoves[0] = []*battle.Move{b.Team[0].Move("partingshot")}

	order, err := NewMaxBasePower(newRNG()).Decide(context.Background(), b)

	require.NoError(t, err)
	assert.True(t, orderIsLegal(b, order))
	assert.NotEqual(t, battle.OrderDefault, order.First.Kind)
}

func TestSimpleHeuristics_PrefersSuperEffectiveSTAB(t *testing.T) {
	// GIVEN Incineroar facing Urshifu-Rapid-Strike and Tornadus
	b := newBattle()

	order, err := NewSimpleHeuristics(newRNG()).Decide(context.Background(), b)

	require.NoError(t, err)
	assert.True(t, orderIsLegal(b, order))
	// Flare Blitz with STAB (120*1.5) outscores everything Incineroar has.
	assert.Equal(t, "flareblitz", order.First.Move.ID)
}

func TestSimpleHeuristics_SleepsHealthyFoe(t *testing.T) {
	b := newBattle()
	b.AvailableMoves[1] = []*battle.Move{b.Team[1].Move("spore"), b.Team[1].Move("protect")}

	order, err := NewSimpleHeuristics(newRNG()).Decide(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, "spore", order.Second.Move.ID)
}

func TestSimpleHeuristics_TerastallizesMatchingMove(t *testing.T) {
	// GIVEN Incineroar has a Fire tera type and may terastallize
	b := newBattle()
	b.Active[0].TeraType = battle.TypeFire
	b.CanTerastallize[0] = true

	order, err := NewSimpleHeuristics(newRNG()).Decide(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, battle.GimmickTerastallize, order.First.Gimmick)
	assert.Equal(t, "flareblitz", order.First.Move.ID)
}

func TestSimpleHeuristics_SwitchesOutOfLosingMatchup(t *testing.T) {
	// GIVEN Charizard in slot a facing two Rock-type attackers
	b := newBattle()
	char := member("p1: Charizard", "Charizard", "heatwave", "hurricane", "protect", "tailwind")
	b.Team[0], b.Active[0] = char, char
	b.AvailableMoves[0] = append([]*battle.Move(nil), char.Moves...)
	b.OpponentActive[0].Types = []battle.PokemonType{battle.TypeRock, battle.TypeDark}
	b.OpponentActive[1].Types = []battle.PokemonType{battle.TypeRock, battle.TypePoison}

	// WHEN the heuristic decides
	order, err := NewSimpleHeuristics(newRNG()).Decide(context.Background(), b)

	// THEN Charizard leaves for the reserve with the best matchup
	require.NoError(t, err)
	require.Equal(t, battle.OrderSwitch, order.First.Kind)
	assert.Equal(t, "Flutter Mane", order.First.Pokemon.Species)
}

func TestSimpleHeuristics_ForcedSwitchPicksBestReserve(t *testing.T) {
	b := newBattle()
	b.Active[0].SetFainted()
	b.AvailableMoves[0], b.ForceSwitch[0] = nil, true
	b.AvailableMoves[1], b.AvailableSwitches[1] = nil, nil

	order, err := NewSimpleHeuristics(newRNG()).Decide(context.Background(), b)

	require.NoError(t, err)
	assert.Equal(t, battle.OrderSwitch, order.First.Kind)
	assert.Equal(t, battle.OrderPass, order.Second.Kind)
}

type memoryWriter struct {
	records []dataset.Record
	err     error
}

func (w *memoryWriter) Write(rec dataset.Record) error {
	if w.err != nil {
		return w.err
	}
	w.records = append(w.records, rec)
	return nil
}

func TestRecording_WritesConsistentRecord(t *testing.T) {
	// GIVEN a recording heuristic agent
	out := &memoryWriter{}
	rec := NewRecording(NewSimpleHeuristics(newRNG()), "heuristic", "gen9doublesou", out)
	b := newBattle()
	before := battle.EncodeObservation(b)

	// WHEN it decides
	order, err := rec.Decide(context.Background(), b)

	// THEN one record is written matching the returned order
	require.NoError(t, err)
	require.Len(t, out.records, 1)
	r := out.records[0]
	assert.Equal(t, b.Tag, r.BattleTag)
	assert.Equal(t, 1, r.Turn)
	assert.Equal(t, "heuristic", r.Teacher)
	assert.Equal(t, "gen9doublesou", r.Format)
	assert.Equal(t, before, r.Observation)
	assert.True(t, r.Consistent())
	want, err := battle.DoubleOrderToActions(b, order, true, true)
	require.NoError(t, err)
	assert.Equal(t, want, r.Action)
	written, dropped := rec.Counts()
	assert.Equal(t, 1, written)
	assert.Zero(t, dropped)
}

func TestRecording_ObservationCapturedBeforeDelegation(t *testing.T) {
	// GIVEN an agent that mutates the battle while deciding
	out := &memoryWriter{}
	b := newBattle()
	before := battle.EncodeObservation(b)
	mutating := battle.AgentFunc(func(ctx context.Context, b *battle.DoubleBattle) (battle.DoubleOrder, error) {
		order, err := NewMaxBasePower(newRNG()).Decide(ctx, b)
		b.OpponentActive[0].CurrentHP = 1
		return order, err
	})

	_, err := NewRecording(mutating, "maxbp", "", out).Decide(context.Background(), b)

	require.NoError(t, err)
	require.Len(t, out.records, 1)
	assert.Equal(t, before, out.records[0].Observation)
}

func TestRecording_DropsDefaultOrders(t *testing.T) {
	// GIVEN an agent that always lets the server choose
	out := &memoryWriter{}
	lazy := battle.AgentFunc(func(context.Context, *battle.DoubleBattle) (battle.DoubleOrder, error) {
		return battle.DoubleOrder{First: battle.DefaultOrder(), Second: battle.DefaultOrder()}, nil
	})
	rec := NewRecording(lazy, "lazy", "", out)

	// WHEN it decides
	order, err := rec.Decide(context.Background(), newBattle())

	// THEN the order still goes out but no record is written
	require.NoError(t, err)
	assert.Equal(t, "/choose default", order.Message())
	assert.Empty(t, out.records)
	_, dropped := rec.Counts()
	assert.Equal(t, 1, dropped)
}

func TestRecording_PropagatesAgentErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := battle.AgentFunc(func(context.Context, *battle.DoubleBattle) (battle.DoubleOrder, error) {
		return battle.DoubleOrder{}, boom
	})
	out := &memoryWriter{}

	_, err := NewRecording(failing, "x", "", out).Decide(context.Background(), newBattle())

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, out.records)
}

func TestRecording_WriteFailureCountsAsDropped(t *testing.T) {
	out := &memoryWriter{err: errors.New("disk full")}
	rec := NewRecording(NewRandom(newRNG()), "random", "", out)

	_, err := rec.Decide(context.Background(), newBattle())

	require.NoError(t, err)
	written, dropped := rec.Counts()
	assert.Zero(t, written)
	assert.Equal(t, 1, dropped)
}

func TestRecording_WrittenForCountsPerBattleTag(t *testing.T) {
	// GIVEN a recording agent deciding in two battles, twice in the first
	out := &memoryWriter{}
	rec := NewRecording(NewMaxBasePower(newRNG()), "maxbp", "gen9doublesou", out)
	first := newBattle()
	first.Tag = "battle-gen9doublesou-1"
	second := newBattle()
	second.Tag = "battle-gen9doublesou-2"

	// WHEN it decides
	for _, b := range []*battle.DoubleBattle{first, second, first} {
		_, err := rec.Decide(context.Background(), b)
		require.NoError(t, err)
	}

	// THEN records are attributed to the battle they were made in
	assert.Equal(t, 2, rec.WrittenFor(first.Tag))
	assert.Equal(t, 1, rec.WrittenFor(second.Tag))
	assert.Zero(t, rec.WrittenFor("battle-gen9doublesou-3"))
	written, _ := rec.Counts()
	assert.Equal(t, 3, written)
}

func TestRecording_DroppedRecordsAreNotAttributed(t *testing.T) {
	// GIVEN an agent whose orders cannot be encoded into the mask
	out := &memoryWriter{}
	lazy := battle.AgentFunc(func(context.Context, *battle.DoubleBattle) (battle.DoubleOrder, error) {
		return battle.DoubleOrder{First: battle.DefaultOrder(), Second: battle.DefaultOrder()}, nil
	})
	rec := NewRecording(lazy, "lazy", "", out)
	b := newBattle()

	// WHEN it decides
	_, err := rec.Decide(context.Background(), b)

	// THEN the battle has no written records
	require.NoError(t, err)
	assert.Zero(t, rec.WrittenFor(b.Tag))
}
