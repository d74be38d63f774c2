package teams

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vgc-imitation/collector/battle"
)

const packedFields = 12

// ParsePacked parses the packed format used by /utm: sets separated by "]",
// fields separated by "|".
func ParsePacked(text string) (Team, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyTeam
	}
	var team Team
	for i, raw := range strings.Split(text, "]") {
		f := strings.Split(raw, "|")
		if len(f) < packedFields-1 {
			return nil, fmt.Errorf("packed set %d: want at least %d fields, got %d", i+1, packedFields-1, len(f))
		}
		s := NewSet(f[1])
		s.Nickname = f[0]
		if s.Species == "" {
			s.Species = s.Nickname
			s.Nickname = ""
		}
		s.Item = f[2]
		s.Ability = f[3]
		if f[4] != "" {
			s.Moves = strings.Split(f[4], ",")
		}
		s.Nature = f[5]
		if err := parsePackedSpread(f[6], 0, &s.EVs); err != nil {
			return nil, fmt.Errorf("packed set %d evs: %w", i+1, err)
		}
		s.Gender = f[7]
		if err := parsePackedSpread(f[8], 31, &s.IVs); err != nil {
			return nil, fmt.Errorf("packed set %d ivs: %w", i+1, err)
		}
		s.Shiny = f[9] == "S"
		if f[10] != "" {
			lvl, err := strconv.Atoi(f[10])
			if err != nil {
				return nil, fmt.Errorf("packed set %d level: %w", i+1, err)
			}
			s.Level = lvl
		}
		if len(f) >= packedFields {
			misc := strings.Split(f[11], ",")
			if len(misc) >= 6 {
				s.TeraType = misc[5]
			}
		}
		team = append(team, s)
	}
	return team, nil
}

func parsePackedSpread(field string, def int, out *[6]int) error {
	for i := range out {
		out[i] = def
	}
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	if len(parts) != 6 {
		return fmt.Errorf("want 6 values, got %d", len(parts))
	}
	for i, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

// Pack renders the team in the packed format.
func (t Team) Pack() string {
	sets := make([]string, len(t))
	for i, s := range t {
		f := make([]string, packedFields)
		f[0] = s.Name()
		if s.Nickname != "" && battle.ToID(s.Nickname) != battle.ToID(s.Species) {
			f[1] = s.Species
		}
		f[2] = battle.ToID(s.Item)
		f[3] = battle.ToID(s.Ability)
		moves := make([]string, len(s.Moves))
		for j, m := range s.Moves {
			moves[j] = battle.ToID(m)
		}
		f[4] = strings.Join(moves, ",")
		f[5] = s.Nature
		f[6] = packSpread(s.EVs, 0)
		f[7] = s.Gender
		f[8] = packSpread(s.IVs, 31)
		if s.Shiny {
			f[9] = "S"
		}
		if s.Level != 0 && s.Level != 100 {
			f[10] = strconv.Itoa(s.Level)
		}
		if s.TeraType != "" {
			f[11] = ",,,,," + s.TeraType
		}
		line := strings.Join(f, "|")
		if f[11] == "" {
			line = strings.TrimSuffix(line, "|")
		}
		sets[i] = line
	}
	return strings.Join(sets, "]")
}

func packSpread(values [6]int, def int) string {
	same := true
	for _, v := range values {
		if v != def {
			same = false
			break
		}
	}
	if same {
		return ""
	}
	parts := make([]string, 6)
	for i, v := range values {
		if v != def {
			parts[i] = strconv.Itoa(v)
		}
	}
	return strings.Join(parts, ",")
}
