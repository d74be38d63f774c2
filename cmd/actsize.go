package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vgc-imitation/collector/battle"
)

var actsizeFormat string // Format whose action space is printed

// actsizeCmd prints the encoding dimensions a model trained on a format needs
var actsizeCmd = &cobra.Command{
	Use:   "actsize",
	Short: "Print action-space size and observation width for a format",
	Run: func(cmd *cobra.Command, args []string) {
		printActSize(cmd.OutOrStdout(), actsizeFormat)
	},
}

func printActSize(w io.Writer, format string) {
	fmt.Fprintf(w, "format=%s gimmicks=%d act_size=%d obs_width=%d block_width=%d\n",
		format, battle.GimmickCount(format), battle.ActionSpaceSize(format),
		battle.ObservationWidth, battle.BlockWidth)
}

func init() {
	actsizeCmd.Flags().StringVar(&actsizeFormat, "format", "gen9doublesou", "Battle format")
	rootCmd.AddCommand(actsizeCmd)
}
