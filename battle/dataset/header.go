package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vgc-imitation/collector/battle"
)

// Version is bumped whenever the record layout or the observation encoding changes.
const Version = 0

// Header is the YAML sidecar describing a dataset file.
type Header struct {
	Version          int      `yaml:"dataset_version"`
	RunID            string   `yaml:"run_id,omitempty"`
	CreatedAt        string   `yaml:"created_at,omitempty"`
	FinishedAt       string   `yaml:"finished_at,omitempty"`
	Format           string   `yaml:"format"`
	Teacher          string   `yaml:"teacher"`
	Opponents        []string `yaml:"opponents,omitempty"`
	ActionSpaceSize  int      `yaml:"action_space_size"`
	ObservationWidth int      `yaml:"observation_width"`
	BlockWidth       int      `yaml:"block_width"`
	Statuses         []string `yaml:"statuses"`
	Types            []string `yaml:"types"`

	BattlesRequested int `yaml:"battles_requested"`
	BattlesCollected int `yaml:"battles_collected"`
	Records          int `yaml:"records"`
	RecordsDropped   int `yaml:"records_dropped"`
}

// NewHeader fills the encoding-related fields for format.
func NewHeader(format, teacher string) *Header {
	return &Header{
		Version:          Version,
		Format:           format,
		Teacher:          teacher,
		ActionSpaceSize:  battle.ActionSpaceSize(format),
		ObservationWidth: battle.ObservationWidth,
		BlockWidth:       battle.BlockWidth,
		Statuses:         append([]string(nil), battle.StatusNames[:]...),
		Types:            append([]string(nil), battle.TypeNames[:]...),
	}
}

// HeaderPath returns the sidecar path for a dataset path.
func HeaderPath(datasetPath string) string {
	return datasetPath + ".meta.yaml"
}

// WriteHeader writes h to path.
func WriteHeader(h *Header, path string) error {
	data, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshaling dataset header: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing dataset header: %w", err)
	}
	return nil
}

// LoadHeader reads a sidecar written by WriteHeader.
func LoadHeader(path string) (*Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}
	var h Header
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parsing dataset header: %w", err)
	}
	return &h, nil
}
