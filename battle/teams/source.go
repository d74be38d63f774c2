package teams

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ReadTeam reads a team file and returns its trimmed text.
func ReadTeam(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading team %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// LoadTeamsFromDir returns the texts of every *.txt file in dir, in file-name
// order. Unreadable and empty files are skipped.
func LoadTeamsFromDir(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("listing teams in %s: %w", dir, err)
	}
	sort.Strings(paths)
	var out []string
	for _, p := range paths {
		text, err := ReadTeam(p)
		if err != nil {
			logrus.Debugf("skipping team file: %v", err)
			continue
		}
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return out, nil
}

// ErrNoValidTeam is returned when none of the candidate texts parses.
var ErrNoValidTeam = errors.New("no valid team text")

// Rotation hands out a uniformly drawn team from a fixed pool each time a
// battle asks for one.
type Rotation struct {
	mu    sync.Mutex
	rng   *rand.Rand
	teams []string // packed
}

// NewRotation parses every candidate text, silently skipping the ones that do
// not parse, and fails when nothing valid remains.
func NewRotation(texts []string, rng *rand.Rand) (*Rotation, error) {
	r := &Rotation{rng: rng}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		team, err := ParseTeam(text)
		if err != nil {
			logrus.Debugf("rotation: skipping team %d: %v", i, err)
			continue
		}
		r.teams = append(r.teams, team.Pack())
	}
	if len(r.teams) == 0 {
		return nil, ErrNoValidTeam
	}
	return r, nil
}

// NextTeam returns a packed team drawn uniformly from the pool.
func (r *Rotation) NextTeam() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.teams[r.rng.Intn(len(r.teams))]
}

// Len returns the number of valid teams in the pool.
func (r *Rotation) Len() int {
	return len(r.teams)
}

// Constant always hands out the same team.
type Constant struct {
	packed string
}

// NewConstant parses text once and keeps its packed form.
func NewConstant(text string) (*Constant, error) {
	team, err := ParseTeam(text)
	if err != nil {
		return nil, err
	}
	return &Constant{packed: team.Pack()}, nil
}

// NextTeam returns the packed team.
func (c *Constant) NextTeam() string {
	return c.packed
}
