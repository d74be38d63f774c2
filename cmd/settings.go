package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/vgc-imitation/collector/battle/collect"
)

// Environment variables read for Showdown credentials.
const (
	envUsername         = "SHOWDOWN_USERNAME"
	envPassword         = "SHOWDOWN_PASSWORD"
	envOpponentUsername = "SHOWDOWN_OPPONENT_USERNAME"
	envOpponentPassword = "SHOWDOWN_OPPONENT_PASSWORD"
)

// loadSettingsFile decodes a YAML settings file over base.
// Uses strict field checking: a misspelled key is an error, not a silent default.
func loadSettingsFile(path string, base collect.Settings) (collect.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading config %s: %w", path, err)
	}
	s := base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return base, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return s, nil
}

// loadEnv reads env files and copies Showdown credentials from the
// environment into s. With no files it reads .env when present; files named
// explicitly must exist.
func loadEnv(s *collect.Settings, files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		if len(files) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading env file: %w", err)
		}
	}
	if v := os.Getenv(envUsername); v != "" {
		s.Username = v
	}
	if v := os.Getenv(envOpponentUsername); v != "" {
		s.OpponentUsername = v
	}
	s.Password = os.Getenv(envPassword)
	s.OpponentPassword = os.Getenv(envOpponentPassword)
	return nil
}

// splitList parses a comma-separated flag value, dropping blanks.
func splitList(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// applyFlags overwrites s with every collect flag the user set explicitly,
// so that flags win over the config file and the environment.
func applyFlags(flags *pflag.FlagSet, s *collect.Settings) {
	if flags.Changed("n-battles") {
		s.NBattles = nBattles
	}
	if flags.Changed("server-url") {
		s.ServerURL = serverURL
	}
	if flags.Changed("format") {
		s.Format = battleFormat
	}
	if flags.Changed("our-team") {
		s.OurTeamPath = ourTeam
	}
	if flags.Changed("opponent-teams-dir") {
		s.OpponentTeamsDir = opponentTeamsDir
	}
	if flags.Changed("teacher") {
		s.Teacher = teacher
	}
	if flags.Changed("opponents") {
		// An empty list keeps the default opponent mix.
		if kinds := splitList(opponents); len(kinds) > 0 {
			s.Opponents = kinds
		}
	}
	if flags.Changed("out") {
		s.OutPath = outPath
	}
	if flags.Changed("battle-timeout") {
		s.BattleTimeout = battleTimeout
	}
	if flags.Changed("seed") {
		s.Seed = seed
	}
	if flags.Changed("runs-db") {
		s.RunsDB = runsDB
	}
	if flags.Changed("offline") {
		s.Offline = offline
	}
	if flags.Changed("max-turns") {
		s.MaxTurns = maxTurns
	}
	if flags.Changed("username") {
		s.Username = username
	}
	if flags.Changed("opponent-username") {
		s.OpponentUsername = opponentUsername
	}
}

// resolveSettings layers defaults, the optional config file, the environment
// and explicit flags, in that order.
func resolveSettings(flags *pflag.FlagSet) (collect.Settings, error) {
	s := collect.DefaultSettings()
	if configPath != "" {
		loaded, err := loadSettingsFile(configPath, s)
		if err != nil {
			return s, err
		}
		s = loaded
	}
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	if err := loadEnv(&s, envFiles...); err != nil {
		return s, err
	}
	applyFlags(flags, &s)
	return s, nil
}
