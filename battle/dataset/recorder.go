package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("recorder closed")

// Recorder appends records to a JSONL file. Each record reaches the file in a
// single write, so concurrent writers never interleave partial lines
// (goroutine-safe).
type Recorder struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	written int
}

// NewRecorder opens path for appending, creating parent directories as needed.
func NewRecorder(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating dataset directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	return &Recorder{path: path, file: f}, nil
}

// Write appends one record as a single line.
func (r *Recorder) Write(rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return ErrClosed
	}
	if _, err := r.file.Write(line); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	r.written++
	return nil
}

// Written returns the number of records written so far.
func (r *Recorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Path returns the dataset path.
func (r *Recorder) Path() string {
	return r.path
}

// Close releases the file. It is safe to call more than once and never fails;
// close errors are logged.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return
	}
	if err := r.file.Close(); err != nil {
		logrus.Warnf("closing dataset %s: %v", r.path, err)
	}
	r.file = nil
}
