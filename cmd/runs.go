package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vgc-imitation/collector/battle/runlog"
)

var (
	runsPath  string // Run registry to read
	runsLimit int    // Maximum rows to print
)

// runsCmd lists the run registry
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded collection runs",
	Run: func(cmd *cobra.Command, args []string) {
		log, err := runlog.Open(runsPath)
		if err != nil {
			logrus.Fatalf("Opening run registry: %v", err)
		}
		defer log.Close()
		list, err := log.ListRuns(runsLimit)
		if err != nil {
			logrus.Fatalf("Listing runs: %v", err)
		}
		printRuns(cmd.OutOrStdout(), list)
	},
}

func printRuns(w io.Writer, runs []runlog.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tFORMAT\tTEACHER\tOPPONENTS\tBATTLES\tRECORDS\tSTATUS")
	for _, r := range runs {
		status := "running"
		if !r.FinishedAt.IsZero() {
			status = "done"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%d\t%s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Format, r.Teacher,
			strings.Join(r.Opponents, ","), r.Collected, r.NBattles, r.Records, status)
	}
	_ = tw.Flush()
}

func init() {
	runsCmd.Flags().StringVar(&runsPath, "db", "data/runs.db", "SQLite run registry")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list (0 = all)")
	rootCmd.AddCommand(runsCmd)
}
