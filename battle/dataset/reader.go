package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// ReadRecords loads every complete record of a dataset. A trailing line
// without a newline is treated as still being written and ignored; a
// malformed complete line is an error.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	if i := bytes.LastIndexByte(data, '\n'); i >= 0 {
		data = data[:i+1]
	} else {
		data = nil
	}
	var records []Record
	for n, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("dataset line %d: %w", n+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Stats summarizes a dataset.
type Stats struct {
	Records        int
	Battles        int
	MaskViolations int
	// ByTeacher counts records per recorded policy.
	ByTeacher map[string]int
	// ByFormat counts records per format.
	ByFormat map[string]int
	// MaxTurn is the highest turn seen in any record.
	MaxTurn int
}

// Summarize computes Stats over records.
func Summarize(records []Record) Stats {
	s := Stats{ByTeacher: map[string]int{}, ByFormat: map[string]int{}}
	battles := map[string]bool{}
	for _, r := range records {
		s.Records++
		battles[r.BattleTag] = true
		if !r.Consistent() {
			s.MaskViolations++
		}
		s.ByTeacher[r.Teacher]++
		s.ByFormat[r.Format]++
		if r.Turn > s.MaxTurn {
			s.MaxTurn = r.Turn
		}
	}
	s.Battles = len(battles)
	return s
}
