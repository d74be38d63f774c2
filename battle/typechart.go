package battle

// typeChart[attacker][defender] is the damage multiplier of a single-type matchup.
var typeChart [NumTypes][NumTypes]float64

type matchups struct {
	superEffective []PokemonType
	resisted       []PokemonType
	immune         []PokemonType
}

var attackMatchups = map[PokemonType]matchups{
	TypeNormal: {
		resisted: []PokemonType{TypeRock, TypeSteel},
		immune:   []PokemonType{TypeGhost},
	},
	TypeFire: {
		superEffective: []PokemonType{TypeGrass, TypeIce, TypeBug, TypeSteel},
		resisted:       []PokemonType{TypeFire, TypeWater, TypeRock, TypeDragon},
	},
	TypeWater: {
		superEffective: []PokemonType{TypeFire, TypeGround, TypeRock},
		resisted:       []PokemonType{TypeWater, TypeGrass, TypeDragon},
	},
	TypeElectric: {
		superEffective: []PokemonType{TypeWater, TypeFlying},
		resisted:       []PokemonType{TypeElectric, TypeGrass, TypeDragon},
		immune:         []PokemonType{TypeGround},
	},
	TypeGrass: {
		superEffective: []PokemonType{TypeWater, TypeGround, TypeRock},
		resisted:       []PokemonType{TypeFire, TypeGrass, TypePoison, TypeFlying, TypeBug, TypeDragon, TypeSteel},
	},
	TypeIce: {
		superEffective: []PokemonType{TypeGrass, TypeGround, TypeFlying, TypeDragon},
		resisted:       []PokemonType{TypeFire, TypeWater, TypeIce, TypeSteel},
	},
	TypeFighting: {
		superEffective: []PokemonType{TypeNormal, TypeIce, TypeRock, TypeDark, TypeSteel},
		resisted:       []PokemonType{TypePoison, TypeFlying, TypePsychic, TypeBug, TypeFairy},
		immune:         []PokemonType{TypeGhost},
	},
	TypePoison: {
		superEffective: []PokemonType{TypeGrass, TypeFairy},
		resisted:       []PokemonType{TypePoison, TypeGround, TypeRock, TypeGhost},
		immune:         []PokemonType{TypeSteel},
	},
	TypeGround: {
		superEffective: []PokemonType{TypeFire, TypeElectric, TypePoison, TypeRock, TypeSteel},
		resisted:       []PokemonType{TypeGrass, TypeBug},
		immune:         []PokemonType{TypeFlying},
	},
	TypeFlying: {
		superEffective: []PokemonType{TypeGrass, TypeFighting, TypeBug},
		resisted:       []PokemonType{TypeElectric, TypeRock, TypeSteel},
	},
	TypePsychic: {
		superEffective: []PokemonType{TypeFighting, TypePoison},
		resisted:       []PokemonType{TypePsychic, TypeSteel},
		immune:         []PokemonType{TypeDark},
	},
	TypeBug: {
		superEffective: []PokemonType{TypeGrass, TypePsychic, TypeDark},
		resisted:       []PokemonType{TypeFire, TypeFighting, TypePoison, TypeFlying, TypeGhost, TypeSteel, TypeFairy},
	},
	TypeRock: {
		superEffective: []PokemonType{TypeFire, TypeIce, TypeFlying, TypeBug},
		resisted:       []PokemonType{TypeFighting, TypeGround, TypeSteel},
	},
	TypeGhost: {
		superEffective: []PokemonType{TypePsychic, TypeGhost},
		resisted:       []PokemonType{TypeDark},
		immune:         []PokemonType{TypeNormal},
	},
	TypeDragon: {
		superEffective: []PokemonType{TypeDragon},
		resisted:       []PokemonType{TypeSteel},
		immune:         []PokemonType{TypeFairy},
	},
	TypeDark: {
		superEffective: []PokemonType{TypePsychic, TypeGhost},
		resisted:       []PokemonType{TypeFighting, TypeDark, TypeFairy},
	},
	TypeSteel: {
		superEffective: []PokemonType{TypeIce, TypeRock, TypeFairy},
		resisted:       []PokemonType{TypeFire, TypeWater, TypeElectric, TypeSteel},
	},
	TypeFairy: {
		superEffective: []PokemonType{TypeFighting, TypeDragon, TypeDark},
		resisted:       []PokemonType{TypeFire, TypePoison, TypeSteel},
	},
}

func init() {
	for atk := range typeChart {
		for def := range typeChart[atk] {
			typeChart[atk][def] = 1
		}
	}
	for atk, m := range attackMatchups {
		for _, def := range m.superEffective {
			typeChart[atk][def] = 2
		}
		for _, def := range m.resisted {
			typeChart[atk][def] = 0.5
		}
		for _, def := range m.immune {
			typeChart[atk][def] = 0
		}
	}
}

// Effectiveness returns the damage multiplier of an attack of type attack against a
// Pokemon with the given defending types. Unknown types are neutral.
func Effectiveness(attack PokemonType, defenders ...PokemonType) float64 {
	mult := 1.0
	if attack < 0 || int(attack) >= NumTypes {
		return mult
	}
	for _, def := range defenders {
		if def < 0 || int(def) >= NumTypes {
			continue
		}
		mult *= typeChart[attack][def]
	}
	return mult
}
