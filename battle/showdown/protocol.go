package showdown

import (
	"strconv"
	"strings"

	"github.com/vgc-imitation/collector/battle"
)

// Line is one protocol line, "|kind|arg|arg...".
type Line struct {
	Kind string
	Args []string
}

// Arg returns the i-th argument or "".
func (l Line) Arg(i int) string {
	if i < 0 || i >= len(l.Args) {
		return ""
	}
	return l.Args[i]
}

// Frame is one websocket message: an optional room id and its lines.
type Frame struct {
	Room  string
	Lines []Line
}

// ParseFrame splits a websocket message. Messages addressed to a room start
// with ">roomid". Lines not starting with "|" are plain chat text and become
// Lines with an empty kind.
func ParseFrame(msg string) Frame {
	var f Frame
	rows := strings.Split(strings.ReplaceAll(msg, "\r\n", "\n"), "\n")
	if len(rows) > 0 && strings.HasPrefix(rows[0], ">") {
		f.Room = strings.TrimSpace(rows[0][1:])
		rows = rows[1:]
	}
	for _, row := range rows {
		if row == "" {
			continue
		}
		f.Lines = append(f.Lines, ParseLine(row))
	}
	return f
}

// ParseLine parses a single protocol line.
func ParseLine(row string) Line {
	if !strings.HasPrefix(row, "|") {
		return Line{Args: []string{row}}
	}
	parts := strings.Split(row[1:], "|")
	return Line{Kind: parts[0], Args: parts[1:]}
}

// position is a parsed "p1a: Incineroar" reference.
type position struct {
	Role  string
	Slot  int // -1 when the reference names no position ("p1: Incineroar")
	Name  string
	Ident string // "p1: Incineroar"
}

func parsePosition(ref string) (position, bool) {
	head, name, ok := strings.Cut(ref, ": ")
	if !ok || len(head) < 2 || head[0] != 'p' {
		return position{}, false
	}
	pos := position{Role: head[:2], Slot: -1, Name: name}
	if len(head) > 2 {
		switch head[2] {
		case 'a':
			pos.Slot = 0
		case 'b':
			pos.Slot = 1
		default:
			return position{}, false
		}
	}
	pos.Ident = pos.Role + ": " + name
	return pos, true
}

// details is a parsed "Incineroar, L50, M, tera:Fire" string.
type details struct {
	Species  string
	Level    int
	TeraType battle.PokemonType
}

func parseDetails(s string) details {
	parts := strings.Split(s, ", ")
	d := details{Species: parts[0], Level: 100, TeraType: battle.TypeUnknown}
	for _, p := range parts[1:] {
		switch {
		case strings.HasPrefix(p, "L"):
			if lvl, err := strconv.Atoi(p[1:]); err == nil {
				d.Level = lvl
			}
		case strings.HasPrefix(p, "tera:"):
			if t, ok := battle.ParseType(p[len("tera:"):]); ok {
				d.TeraType = t
			}
		}
	}
	return d
}

// condition is a parsed "150/202 par" or "0 fnt" string.
type condition struct {
	HP, MaxHP int
	Status    battle.Status
}

func parseCondition(s string) condition {
	hpPart, statusPart, _ := strings.Cut(strings.TrimSpace(s), " ")
	c := condition{Status: battle.ParseStatus(statusPart)}
	cur, max, hasMax := strings.Cut(hpPart, "/")
	c.HP, _ = strconv.Atoi(cur)
	if hasMax {
		c.MaxHP, _ = strconv.Atoi(max)
	}
	return c
}

// apply copies the condition onto p. A condition without a maximum keeps the
// previous one ("0 fnt").
func (c condition) apply(p *battle.Pokemon) {
	if c.MaxHP > 0 {
		p.MaxHP = c.MaxHP
	}
	p.CurrentHP = c.HP
	if c.Status == battle.StatusFNT || c.HP == 0 {
		p.SetFainted()
		return
	}
	p.Status = c.Status
}
