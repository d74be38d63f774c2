package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vgc-imitation/collector/battle/dataset"
)

// datasetReport is what `inspect` prints, as YAML.
type datasetReport struct {
	Path           string          `yaml:"path"`
	Records        int             `yaml:"records"`
	Battles        int             `yaml:"battles"`
	MaskViolations int             `yaml:"mask_violations"`
	MaxTurn        int             `yaml:"max_turn"`
	ByTeacher      map[string]int  `yaml:"by_teacher"`
	ByFormat       map[string]int  `yaml:"by_format"`
	Header         *dataset.Header `yaml:"header,omitempty"`
}

// inspectCmd summarizes a collected dataset
var inspectCmd = &cobra.Command{
	Use:   "inspect <dataset.jsonl>",
	Short: "Print dataset statistics: records, battles, mask violations",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := inspectDataset(cmd.OutOrStdout(), args[0]); err != nil {
			logrus.Fatalf("Inspect failed: %v", err)
		}
	},
}

func inspectDataset(w io.Writer, path string) error {
	records, err := dataset.ReadRecords(path)
	if err != nil {
		return err
	}
	stats := dataset.Summarize(records)
	report := datasetReport{
		Path:           path,
		Records:        stats.Records,
		Battles:        stats.Battles,
		MaskViolations: stats.MaskViolations,
		MaxTurn:        stats.MaxTurn,
		ByTeacher:      stats.ByTeacher,
		ByFormat:       stats.ByFormat,
	}
	h, err := dataset.LoadHeader(dataset.HeaderPath(path))
	switch {
	case err == nil:
		report.Header = h
	case errors.Is(err, fs.ErrNotExist):
	default:
		logrus.Warnf("Ignoring unreadable header: %v", err)
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
