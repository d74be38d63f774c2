package collect

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vgc-imitation/collector/battle"
	"github.com/vgc-imitation/collector/battle/policy"
	"github.com/vgc-imitation/collector/battle/showdown"
	"github.com/vgc-imitation/collector/battle/teams"
)

// Plan is a validated run: everything Setup resolved before the first battle.
type Plan struct {
	Settings      Settings
	ActSize       int
	Server        showdown.ServerConfig // zero when offline
	TeacherKind   policy.Kind
	OpponentKinds []policy.Kind
	OurTeam       string
	// OpponentPool never contains OurTeam unless it is the only team.
	OpponentPool []string
}

// Setup resolves settings into a Plan. Any error here is fatal to the run.
func Setup(s Settings) (*Plan, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	plan := &Plan{Settings: s, ActSize: battle.ActionSpaceSize(s.Format)}

	plan.TeacherKind, _ = policy.ParseKind(s.Teacher)
	for _, o := range s.Opponents {
		k, _ := policy.ParseKind(o)
		plan.OpponentKinds = append(plan.OpponentKinds, k)
	}

	if !s.IsOffline() {
		cfg, err := showdown.ServerConfigForURL(s.ServerURL)
		if err != nil {
			return nil, err
		}
		plan.Server = cfg
	}

	ours, err := teams.ReadTeam(s.OurTeamPath)
	if err != nil {
		return nil, fmt.Errorf("reading our team: %w", err)
	}
	if ours == "" {
		return nil, fmt.Errorf("our team %s is empty", s.OurTeamPath)
	}
	if _, err := teams.ParseTeam(ours); err != nil {
		return nil, fmt.Errorf("parsing our team %s: %w", s.OurTeamPath, err)
	}
	plan.OurTeam = ours

	var candidates []string
	if s.OpponentTeamsDir != "" {
		candidates, err = teams.LoadTeamsFromDir(s.OpponentTeamsDir)
		if err != nil {
			return nil, fmt.Errorf("loading opponent teams: %w", err)
		}
	}
	plan.OpponentPool = opponentPool(ours, candidates)
	return plan, nil
}

// opponentPool drops every candidate textually identical to ours. An empty
// result falls back to ours alone.
func opponentPool(ours string, candidates []string) []string {
	var pool []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c != "" && c != strings.TrimSpace(ours) {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		logrus.Warnf("no opponent team differs from ours; opponents will use our team")
		pool = []string{ours}
	}
	return pool
}

// chooseKind draws an opponent kind with the truncated priority weights.
// Draws are proportional to the truncated weights, so two kinds split 5:3.
func chooseKind(kinds []policy.Kind, rng *rand.Rand) policy.Kind {
	weights := opponentWeights[:len(kinds)]
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return kinds[i]
		}
		r -= w
	}
	return kinds[len(kinds)-1]
}
