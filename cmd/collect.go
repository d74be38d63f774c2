package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vgc-imitation/collector/battle/collect"
)

var (
	nBattles         int           // Number of battles to collect
	serverURL        string        // Showdown server URL, or local:// for the in-process engine
	battleFormat     string        // Battle format id
	ourTeam          string        // Path of the teacher's team file
	opponentTeamsDir string        // Directory of opponent team files
	teacher          string        // Teacher policy kind
	opponents        string        // Comma-separated opponent policy kinds
	outPath          string        // JSONL dataset path
	battleTimeout    time.Duration // Per-battle wall-clock budget
	seed             int64         // Master seed
	runsDB           string        // SQLite run registry path, empty to disable
	offline          bool          // Play in-process instead of against a server
	maxTurns         int           // Offline turn cap
	username         string        // Teacher account name
	opponentUsername string        // Opponent account name
	configPath       string        // Optional YAML settings file
	envFile          string        // Optional .env file
)

// collectCmd runs the collection pipeline
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Play teacher battles and record imitation data",
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := resolveSettings(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		plan, err := collect.Setup(settings)
		if err != nil {
			logrus.Fatalf("Setup failed: %v", err)
		}
		c, err := collect.NewCollector(plan, nil)
		if err != nil {
			logrus.Fatalf("Setup failed: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logrus.Infof("Collecting %d battles of %s (teacher=%s, opponents=%v)",
			settings.NBattles, settings.Format, plan.TeacherKind, plan.OpponentKinds)
		summary, err := c.Run(ctx)
		if err != nil {
			logrus.Errorf("Collection stopped: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary.String())
	},
}

// bindCollectFlags registers the collect flags on fs.
func bindCollectFlags(fs *pflag.FlagSet) {
	d := collect.DefaultSettings()
	fs.IntVar(&nBattles, "n-battles", d.NBattles, "Number of battles to collect")
	fs.StringVar(&serverURL, "server-url", d.ServerURL, "Showdown server URL (local:// plays in-process)")
	fs.StringVar(&battleFormat, "format", d.Format, "Battle format")
	fs.StringVar(&ourTeam, "our-team", d.OurTeamPath, "Path of the teacher's team file")
	fs.StringVar(&opponentTeamsDir, "opponent-teams-dir", d.OpponentTeamsDir, "Directory of opponent team files")
	fs.StringVar(&teacher, "teacher", d.Teacher, "Teacher policy (simple, maxbp, random)")
	fs.StringVar(&opponents, "opponents", "simple,maxbp,random", "Comma-separated opponent policies, in priority order")
	fs.StringVar(&outPath, "out", d.OutPath, "Output JSONL path")
	fs.DurationVar(&battleTimeout, "battle-timeout", d.BattleTimeout, "Wall-clock budget per battle")
	fs.Int64Var(&seed, "seed", d.Seed, "Seed for opponent, team and policy draws")
	fs.StringVar(&runsDB, "runs-db", d.RunsDB, "SQLite run registry (empty disables it)")
	fs.BoolVar(&offline, "offline", d.Offline, "Play battles in the in-process engine")
	fs.IntVar(&maxTurns, "max-turns", d.MaxTurns, "Turn cap for offline battles (0 = none)")
	fs.StringVar(&username, "username", d.Username, "Teacher account name (overrides "+envUsername+")")
	fs.StringVar(&opponentUsername, "opponent-username", d.OpponentUsername, "Opponent account name (overrides "+envOpponentUsername+")")
	fs.StringVar(&configPath, "config", "", "YAML settings file; explicit flags win over its values")
	fs.StringVar(&envFile, "env-file", "", "Env file with Showdown credentials (default .env)")
}

func init() {
	bindCollectFlags(collectCmd.Flags())
	rootCmd.AddCommand(collectCmd)
}
