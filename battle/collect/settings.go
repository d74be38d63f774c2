// Package collect runs the imitation-data collection loop: a persistent
// recorded teacher plays a series of battles against freshly drawn scripted
// opponents, and every teacher decision lands in a JSONL dataset.
package collect

import (
	"fmt"
	"strings"
	"time"

	"github.com/vgc-imitation/collector/battle/policy"
)

// OfflineScheme selects the in-process engine instead of a live server.
const OfflineScheme = "local://"

// opponentWeights is the fixed priority schedule of opponent kinds.
var opponentWeights = []float64{0.5, 0.3, 0.2}

// Settings is the configuration of one collection run.
type Settings struct {
	NBattles         int           `yaml:"n_battles"`
	ServerURL        string        `yaml:"server_url"`
	Format           string        `yaml:"format"`
	OurTeamPath      string        `yaml:"our_team"`
	OpponentTeamsDir string        `yaml:"opponent_teams_dir"`
	Teacher          string        `yaml:"teacher"`
	Opponents        []string      `yaml:"opponents"`
	OutPath          string        `yaml:"out"`
	BattleTimeout    time.Duration `yaml:"battle_timeout"`
	Seed             int64         `yaml:"seed"`
	RunsDB           string        `yaml:"runs_db"`
	Offline          bool          `yaml:"offline"`
	MaxTurns         int           `yaml:"max_turns"`

	Username         string `yaml:"username"`
	OpponentUsername string `yaml:"opponent_username"`
	// Passwords come from the environment only.
	Password         string `yaml:"-"`
	OpponentPassword string `yaml:"-"`
}

// DefaultSettings returns the settings of a plain `collect` invocation.
func DefaultSettings() Settings {
	return Settings{
		NBattles:         50,
		ServerURL:        "http://localhost:8000",
		Format:           "gen9doublesou",
		OurTeamPath:      "teams/gen9dou_fixed.txt",
		OpponentTeamsDir: "teams",
		Teacher:          "simple",
		Opponents:        []string{"simple", "maxbp", "random"},
		OutPath:          "data/imitation.jsonl",
		BattleTimeout:    60 * time.Second,
		Seed:             42,
		MaxTurns:         100,
		Username:         "rl-bot-1",
		OpponentUsername: "rl-bot-2",
	}
}

// IsOffline reports whether battles run in the in-process engine.
func (s Settings) IsOffline() bool {
	return s.Offline || strings.HasPrefix(strings.ToLower(s.ServerURL), OfflineScheme)
}

// Validate checks everything that can be checked without touching the
// filesystem or the network.
func (s Settings) Validate() error {
	if s.NBattles < 0 {
		return fmt.Errorf("n_battles must be >= 0, got %d", s.NBattles)
	}
	if strings.TrimSpace(s.Format) == "" {
		return fmt.Errorf("format must not be empty")
	}
	if _, err := policy.ParseKind(s.Teacher); err != nil {
		return fmt.Errorf("teacher: %w", err)
	}
	if len(s.Opponents) == 0 {
		return fmt.Errorf("at least one opponent kind is required")
	}
	if len(s.Opponents) > len(opponentWeights) {
		return fmt.Errorf("at most %d opponent kinds are supported, got %d", len(opponentWeights), len(s.Opponents))
	}
	for _, o := range s.Opponents {
		if _, err := policy.ParseKind(o); err != nil {
			return fmt.Errorf("opponents: %w", err)
		}
	}
	if s.OutPath == "" {
		return fmt.Errorf("out path must not be empty")
	}
	if s.OurTeamPath == "" {
		return fmt.Errorf("our team path must not be empty")
	}
	if s.BattleTimeout <= 0 {
		return fmt.Errorf("battle_timeout must be > 0, got %s", s.BattleTimeout)
	}
	if s.MaxTurns < 0 {
		return fmt.Errorf("max_turns must be >= 0, got %d", s.MaxTurns)
	}
	if !s.IsOffline() {
		if s.Username == "" || s.OpponentUsername == "" {
			return fmt.Errorf("usernames must not be empty")
		}
		if strings.EqualFold(s.Username, s.OpponentUsername) {
			return fmt.Errorf("teacher and opponent usernames must differ")
		}
	}
	return nil
}
