package policy

import (
	"math/rand"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/dex"
)

func newRNG() *rand.Rand {
	return battle.NewPartitionedRNG(battle.SeedKey(42)).ForSubsystem(battle.SubsystemPolicy("test"))
}

func member(ident, species string, moves ...string) *battle.Pokemon {
	d := dex.Default()
	p := battle.NewPokemon(ident, species, 50)
	p.CurrentHP, p.MaxHP = 100, 100
	if s, ok := d.Species(species); ok {
		p.Types = s.PokemonTypes()
	}
	for _, m := range moves {
		p.AddMove(d.NewMove(m))
	}
	return p
}

// newBattle returns a gen9 mid-battle state: Incineroar and Amoonguss against
// Urshifu-Rapid-Strike and Tornadus, with Rillaboom and Flutter Mane in reserve.
func newBattle() *battle.DoubleBattle {
	b := battle.NewDoubleBattle("battle-gen9doublesou-7", "", "teacher")
	b.PlayerRole = "p1"
	inc := member("p1: Incineroar", "Incineroar", "fakeout", "flareblitz", "partingshot", "knockoff")
	amo := member("p1: Amoonguss", "Amoonguss", "spore", "ragepowder", "pollenpuff", "protect")
	rilla := member("p1: Rillaboom", "Rillaboom", "grassyglide", "woodhammer", "uturn", "fakeout")
	flutter := member("p1: Flutter Mane", "Flutter Mane", "moonblast", "shadowball", "dazzlinggleam", "protect")
	for _, p := range []*battle.Pokemon{inc, amo, rilla, flutter} {
		b.AddTeamMember(p)
	}
	b.Active = [battle.NumSlots]*battle.Pokemon{inc, amo}

	urshifu := member("p2: Urshifu", "Urshifu-Rapid-Strike", "surgingstrikes", "closecombat")
	tornadus := member("p2: Tornadus", "Tornadus", "bleakwindstorm", "tailwind")
	b.AddOpponentMember(urshifu)
	b.AddOpponentMember(tornadus)
	b.OpponentActive = [battle.NumSlots]*battle.Pokemon{urshifu, tornadus}

	for slot, p := range b.Active {
		b.AvailableMoves[slot] = append([]*battle.Move(nil), p.Moves...)
		b.AvailableSwitches[slot] = []*battle.Pokemon{rilla, flutter}
	}
	b.Turn = 1
	return b
}

// orderIsLegal reports whether both slots of order are inside their masks.
func orderIsLegal(b *battle.DoubleBattle, order battle.DoubleOrder) bool {
	n := battle.ActionSpaceSize(b.Format)
	actions, err := battle.DoubleOrderToActions(b, order, true, true)
	if err != nil {
		return false
	}
	for slot := 0; slot < battle.NumSlots; slot++ {
		if !battle.LegalityMask(b, slot, n).Allows(actions[slot]) {
			return false
		}
	}
	return true
}
