package teams

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportTeam = `Incineroar @ Safety Goggles
Ability: Intimidate
Level: 50
Tera Type: Ghost
EVs: 252 HP / 4 Atk / 252 SpD
Careful Nature
IVs: 0 Spe
- Fake Out
- Flare Blitz
- Parting Shot
- Knock Off

Shroom (Amoonguss) (F) @ Rocky Helmet
Ability: Regenerator
Level: 50
Tera Type: Water
EVs: 236 HP / 156 Def / 116 SpD
Relaxed Nature
- Spore
- Rage Powder
- Pollen Puff
- Protect
`

func TestParseExport_ReadsAllFields(t *testing.T) {
	team, err := ParseTeam(exportTeam)
	require.NoError(t, err)
	require.Len(t, team, 2)

	inc := team[0]
	assert.Equal(t, "Incineroar", inc.Species)
	assert.Equal(t, "Safety Goggles", inc.Item)
	assert.Equal(t, "Intimidate", inc.Ability)
	assert.Equal(t, 50, inc.Level)
	assert.Equal(t, "Ghost", inc.TeraType)
	assert.Equal(t, [6]int{252, 4, 0, 0, 252, 0}, inc.EVs)
	assert.Equal(t, [6]int{31, 31, 31, 31, 31, 0}, inc.IVs)
	assert.Equal(t, "Careful", inc.Nature)
	assert.Equal(t, []string{"Fake Out", "Flare Blitz", "Parting Shot", "Knock Off"}, inc.Moves)

	amo := team[1]
	assert.Equal(t, "Shroom", amo.Nickname)
	assert.Equal(t, "Amoonguss", amo.Species)
	assert.Equal(t, "F", amo.Gender)
}

func TestPack_SurvivesReparse(t *testing.T) {
	// GIVEN a parsed export team
	team, err := ParseTeam(exportTeam)
	require.NoError(t, err)

	// WHEN packed and parsed again
	packed := team.Pack()
	again, err := ParseTeam(packed)
	require.NoError(t, err)

	// THEN the battle-relevant fields survive, with names reduced to ids
	require.Len(t, again, 2)
	assert.Equal(t, "Incineroar", again[0].Species)
	assert.Equal(t, "safetygoggles", again[0].Item)
	assert.Equal(t, []string{"fakeout", "flareblitz", "partingshot", "knockoff"}, again[0].Moves)
	assert.Equal(t, team[0].EVs, again[0].EVs)
	assert.Equal(t, team[0].IVs, again[0].IVs)
	assert.Equal(t, 50, again[0].Level)
	assert.Equal(t, "Ghost", again[0].TeraType)
	assert.Equal(t, "Shroom", again[1].Nickname)
	assert.Equal(t, "Amoonguss", again[1].Species)
	assert.Equal(t, packed, again.Pack())
}

func TestPack_Layout(t *testing.T) {
	s := NewSet("Pikachu")
	s.Moves = []string{"Thunderbolt"}
	s.Level = 50

	assert.Equal(t, "Pikachu||||thunderbolt||||||50", Team{s}.Pack())
}

func TestParseTeam_Errors(t *testing.T) {
	_, err := ParseTeam("   ")
	assert.ErrorIs(t, err, ErrEmptyTeam)

	_, err = ParseTeam("Pikachu\nAbility: Static\n")
	assert.ErrorContains(t, err, "no moves")

	_, err = ParseTeam("a|b|c")
	assert.Error(t, err)
}

func TestLoadTeamsFromDir_SortedAndSkipsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("Pikachu\n- Thunderbolt\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(exportTeam), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("  \n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	texts, err := LoadTeamsFromDir(dir)

	require.NoError(t, err)
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Incineroar")
	assert.Equal(t, "Pikachu\n- Thunderbolt", texts[1])
}

func TestRotation_SkipsInvalidAndDrawsFromPool(t *testing.T) {
	// GIVEN one valid and two invalid candidates
	r, err := NewRotation([]string{"", "Pikachu\n", exportTeam}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// THEN only the valid team is handed out
	assert.Equal(t, 1, r.Len())
	team, err := ParseTeam(r.NextTeam())
	require.NoError(t, err)
	assert.Equal(t, "Incineroar", team[0].Species)
}

func TestRotation_NoValidTeam(t *testing.T) {
	_, err := NewRotation([]string{"Pikachu\n"}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNoValidTeam)
}

func TestRotation_SeededDrawsRepeat(t *testing.T) {
	texts := []string{exportTeam, "Pikachu\n- Thunderbolt\n", "Charizard\n- Heat Wave\n"}
	a, err := NewRotation(texts, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	b, err := NewRotation(texts, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.NextTeam(), b.NextTeam())
	}
}

func TestConstant(t *testing.T) {
	c, err := NewConstant(exportTeam)
	require.NoError(t, err)
	assert.Equal(t, c.NextTeam(), c.NextTeam())

	_, err = NewConstant("")
	assert.Error(t, err)
}
