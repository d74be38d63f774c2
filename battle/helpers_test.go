package battle

// Shared fixtures for battle package tests.

func testMove(id string, typ PokemonType, cat MoveCategory, bp int, target Target) *Move {
	return &Move{ID: id, Name: id, Type: typ, Category: cat, BasePower: bp, Accuracy: 1, Target: target, PP: 8, MaxPP: 8}
}

func testPokemon(ident, species string, hp int, types ...PokemonType) *Pokemon {
	p := NewPokemon(ident, species, 50)
	p.CurrentHP, p.MaxHP = hp, hp
	p.Types = types
	return p
}

// newTestBattle returns a gen9 battle with four own Pokemon (two active) and two
// active opponents. Slot 0 (Incineroar) may use fakeout/flareblitz/partingshot/knockoff
// and switch to either reserve; slot 1 (Amoonguss) may use spore/ragepowder/pollenpuff
// and switch to either reserve. Both slots may terastallize.
func newTestBattle() *DoubleBattle {
	b := NewDoubleBattle("battle-gen9doublesou-42", "", "teacher")
	b.PlayerRole = "p1"

	inc := testPokemon("p1: Incineroar", "Incineroar", 202, TypeFire, TypeDark)
	inc.AddMove(testMove("fakeout", TypeNormal, CategoryPhysical, 40, TargetNormal))
	inc.AddMove(testMove("flareblitz", TypeFire, CategoryPhysical, 120, TargetNormal))
	inc.AddMove(testMove("partingshot", TypeDark, CategoryStatus, 0, TargetNormal))
	inc.AddMove(testMove("knockoff", TypeDark, CategoryPhysical, 65, TargetNormal))

	amo := testPokemon("p1: Amoonguss", "Amoonguss", 221, TypeGrass, TypePoison)
	amo.AddMove(testMove("spore", TypeGrass, CategoryStatus, 0, TargetNormal))
	amo.AddMove(testMove("ragepowder", TypeBug, CategoryStatus, 0, TargetSelf))
	amo.AddMove(testMove("pollenpuff", TypeBug, CategorySpecial, 90, TargetNormal))

	rilla := testPokemon("p1: Rillaboom", "Rillaboom", 207, TypeGrass)
	rilla.AddMove(testMove("grassyglide", TypeGrass, CategoryPhysical, 55, TargetNormal))
	flutter := testPokemon("p1: Flutter Mane", "Flutter Mane", 162, TypeGhost, TypeFairy)
	flutter.AddMove(testMove("moonblast", TypeFairy, CategorySpecial, 95, TargetNormal))

	for _, p := range []*Pokemon{inc, amo, rilla, flutter} {
		b.AddTeamMember(p)
	}
	inc.Active, amo.Active = true, true
	b.Active = [NumSlots]*Pokemon{inc, amo}

	opA := testPokemon("p2: Urshifu", "Urshifu-Rapid-Strike", 100, TypeFighting, TypeWater)
	opB := testPokemon("p2: Tornadus", "Tornadus", 100, TypeFlying)
	b.AddOpponentMember(opA)
	b.AddOpponentMember(opB)
	b.OpponentActive = [NumSlots]*Pokemon{opA, opB}

	b.AvailableMoves[0] = append([]*Move(nil), inc.Moves...)
	b.AvailableMoves[1] = append([]*Move(nil), amo.Moves...)
	b.AvailableSwitches[0] = []*Pokemon{rilla, flutter}
	b.AvailableSwitches[1] = []*Pokemon{rilla, flutter}
	b.CanTerastallize = [NumSlots]bool{true, true}
	b.Turn = 3
	return b
}

// moveAction returns the action index of move idx, target t and gimmick g.
func moveAction(idx, t int, g Gimmick) int {
	return 7 + 5*idx + (t + 2) + 20*int(g)
}
