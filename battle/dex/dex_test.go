package dex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgc-imitation/collector/battle"
)

func TestDefault_LoadsEmbeddedData(t *testing.T) {
	d := Default()

	species, moves := d.Len()
	assert.Greater(t, species, 30)
	assert.Greater(t, moves, 80)
	assert.Same(t, d, Default())
}

func TestSpecies_LookupByNameOrID(t *testing.T) {
	d := Default()

	s, ok := d.Species("Urshifu-Rapid-Strike")
	require.True(t, ok)
	assert.Equal(t, "urshifurapidstrike", s.ID)
	assert.Equal(t, []battle.PokemonType{battle.TypeFighting, battle.TypeWater}, s.PokemonTypes())
	assert.Equal(t, 97, s.BaseStats[StatSpe])

	_, ok = d.Species("Missingno")
	assert.False(t, ok)
}

func TestMove_ConvertsToBattleMove(t *testing.T) {
	d := Default()

	m, ok := d.Move("Fake Out")
	require.True(t, ok)
	assert.Equal(t, "fakeout", m.ID)
	assert.Equal(t, battle.TypeNormal, m.Type)
	assert.Equal(t, 3, m.Priority)
	assert.Equal(t, battle.TargetNormal, m.Target)
	assert.Equal(t, m.MaxPP, m.PP)

	spore, ok := d.Move("spore")
	require.True(t, ok)
	assert.Equal(t, battle.StatusSLP, spore.InflictsStatus)
	assert.True(t, spore.IsStatus())

	curse, ok := d.Move("curse")
	require.True(t, ok)
	assert.Equal(t, battle.TargetSelf, curse.NonGhostTarget)
}

func TestMove_ReturnsFreshCopies(t *testing.T) {
	d := Default()
	a, _ := d.Move("protect")
	b, _ := d.Move("protect")
	a.PP = 0
	assert.NotEqual(t, a.PP, b.PP)
}

func TestNewMove_UnknownIsPlaceholder(t *testing.T) {
	m := Default().NewMove("Some New Move")
	assert.Equal(t, "somenewmove", m.ID)
	assert.Equal(t, battle.TypeUnknown, m.Type)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("pikachu: {name: Pikachu, types: [Electric], base_stats: [35,55,40,50,50,90], color: yellow}"), []byte("{}"))
	assert.Error(t, err)
}

func TestParse_RejectsShortStats(t *testing.T) {
	_, err := Parse([]byte("pikachu: {name: Pikachu, types: [Electric], base_stats: [35]}"), []byte("{}"))
	assert.ErrorContains(t, err, "base stats")
}
