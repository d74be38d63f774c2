package teams

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseExport parses the human-readable Showdown export format. Sets are
// separated by blank lines; unknown lines are ignored like the client does.
func ParseExport(text string) (Team, error) {
	var (
		team Team
		cur  *Set
	)
	flush := func() {
		if cur != nil {
			team = append(team, *cur)
			cur = nil
		}
	}
	for n, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}
		if strings.HasPrefix(line, "===") {
			// Teambuilder folder headers.
			flush()
			continue
		}
		if cur == nil {
			s := NewSet("")
			parseHeadLine(line, &s)
			cur = &s
			continue
		}
		if err := parseDetailLine(line, cur); err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
	}
	flush()
	if len(team) == 0 {
		return nil, ErrEmptyTeam
	}
	return team, nil
}

// parseHeadLine handles "Nickname (Species) (F) @ Item".
func parseHeadLine(line string, s *Set) {
	if i := strings.LastIndex(line, " @ "); i >= 0 {
		s.Item = strings.TrimSpace(line[i+3:])
		line = strings.TrimSpace(line[:i])
	}
	for _, g := range []string{" (M)", " (F)"} {
		if strings.HasSuffix(line, g) {
			s.Gender = g[2:3]
			line = strings.TrimSuffix(line, g)
		}
	}
	if strings.HasSuffix(line, ")") {
		if i := strings.LastIndex(line, " ("); i > 0 {
			s.Nickname = strings.TrimSpace(line[:i])
			s.Species = strings.TrimSpace(line[i+2 : len(line)-1])
			return
		}
	}
	s.Species = line
}

func parseDetailLine(line string, s *Set) error {
	switch {
	case strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "~ "):
		move := strings.TrimSpace(line[2:])
		if move != "" {
			s.Moves = append(s.Moves, move)
		}
	case strings.HasPrefix(line, "Ability:"):
		s.Ability = strings.TrimSpace(strings.TrimPrefix(line, "Ability:"))
	case strings.HasPrefix(line, "Level:"):
		lvl, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Level:")))
		if err != nil {
			return fmt.Errorf("bad level: %w", err)
		}
		s.Level = lvl
	case strings.HasPrefix(line, "Tera Type:"):
		s.TeraType = strings.TrimSpace(strings.TrimPrefix(line, "Tera Type:"))
	case strings.HasPrefix(line, "Shiny:"):
		s.Shiny = strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(line, "Shiny:")), "yes")
	case strings.HasPrefix(line, "EVs:"):
		return parseSpread(strings.TrimPrefix(line, "EVs:"), &s.EVs)
	case strings.HasPrefix(line, "IVs:"):
		return parseSpread(strings.TrimPrefix(line, "IVs:"), &s.IVs)
	case strings.HasSuffix(line, " Nature"):
		s.Nature = strings.TrimSuffix(line, " Nature")
	}
	return nil
}

// parseSpread handles "252 HP / 4 Atk / 252 SpD".
func parseSpread(text string, out *[6]int) error {
	for _, part := range strings.Split(text, "/") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			continue
		}
		v, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("bad stat value %q: %w", fields[0], err)
		}
		idx := statIndex(fields[1])
		if idx < 0 {
			return fmt.Errorf("unknown stat %q", fields[1])
		}
		out[idx] = v
	}
	return nil
}

func statIndex(name string) int {
	for i, s := range StatNames {
		if strings.EqualFold(s, name) {
			return i
		}
	}
	return -1
}

// Export renders the team in the export format.
func (t Team) Export() string {
	var b strings.Builder
	for i, s := range t {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Nickname != "" && s.Nickname != s.Species {
			fmt.Fprintf(&b, "%s (%s)", s.Nickname, s.Species)
		} else {
			b.WriteString(s.Species)
		}
		if s.Gender != "" {
			fmt.Fprintf(&b, " (%s)", s.Gender)
		}
		if s.Item != "" {
			fmt.Fprintf(&b, " @ %s", s.Item)
		}
		b.WriteString("\n")
		if s.Ability != "" {
			fmt.Fprintf(&b, "Ability: %s\n", s.Ability)
		}
		if s.Level != 0 && s.Level != 100 {
			fmt.Fprintf(&b, "Level: %d\n", s.Level)
		}
		if s.Shiny {
			b.WriteString("Shiny: Yes\n")
		}
		if s.TeraType != "" {
			fmt.Fprintf(&b, "Tera Type: %s\n", s.TeraType)
		}
		if evs := formatSpread(s.EVs, 0); evs != "" {
			fmt.Fprintf(&b, "EVs: %s\n", evs)
		}
		if s.Nature != "" {
			fmt.Fprintf(&b, "%s Nature\n", s.Nature)
		}
		if ivs := formatSpread(s.IVs, 31); ivs != "" {
			fmt.Fprintf(&b, "IVs: %s\n", ivs)
		}
		for _, m := range s.Moves {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}
	return b.String()
}

func formatSpread(values [6]int, skip int) string {
	var parts []string
	for i, v := range values {
		if v != skip {
			parts = append(parts, fmt.Sprintf("%d %s", v, StatNames[i]))
		}
	}
	return strings.Join(parts, " / ")
}
