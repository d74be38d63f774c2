// Package runlog keeps a SQLite registry of collection runs and the battles
// each run played.
package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	finished_at TEXT,
	format      TEXT NOT NULL,
	teacher     TEXT NOT NULL,
	opponents   TEXT NOT NULL,
	n_battles   INTEGER NOT NULL,
	collected   INTEGER NOT NULL DEFAULT 0,
	records     INTEGER NOT NULL DEFAULT 0,
	out_path    TEXT NOT NULL,
	notes       TEXT
);

CREATE TABLE IF NOT EXISTS battles (
	run_id        TEXT NOT NULL,
	idx           INTEGER NOT NULL,
	opponent_kind TEXT NOT NULL,
	battle_tag    TEXT,
	status        TEXT NOT NULL,
	turns         INTEGER NOT NULL DEFAULT 0,
	records       INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	PRIMARY KEY (run_id, idx),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// timeLayout is fixed-width so that text ordering of UTC timestamps is
// chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Battle statuses.
const (
	StatusCollected = "collected"
	StatusTimeout   = "timeout"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

// Run is one row of the runs table.
type Run struct {
	ID         string
	CreatedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	Format     string
	Teacher    string
	Opponents  []string
	NBattles   int
	Collected  int
	Records    int
	OutPath    string
	Notes      string
}

// Battle is one row of the battles table.
type Battle struct {
	Index        int
	OpponentKind string
	BattleTag    string
	Status       string
	Turns        int
	Records      int
	CreatedAt    time.Time
}

// Log is an open run registry.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the registry at path.
func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create run registry dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Log{db: db}, nil
}

// Close closes the database.
func (l *Log) Close() error {
	return l.db.Close()
}

// StartRun inserts a run and returns its id. A run without an id gets a new UUID.
func (l *Log) StartRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.Exec(
		`INSERT INTO runs (run_id, created_at, format, teacher, opponents, n_battles, out_path, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UTC().Format(timeLayout), r.Format, r.Teacher,
		strings.Join(r.Opponents, ","), r.NBattles, r.OutPath, r.Notes,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return r.ID, nil
}

// RecordBattle stores the result of one battle of a run.
func (l *Log) RecordBattle(runID string, b Battle) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.Exec(
		`INSERT INTO battles (run_id, idx, opponent_kind, battle_tag, status, turns, records, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, b.Index, b.OpponentKind, b.BattleTag, b.Status, b.Turns, b.Records,
		b.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert battle %d: %w", b.Index, err)
	}
	return nil
}

// FinishRun stores the final counts of a run.
func (l *Log) FinishRun(runID string, collected, records int, notes string) error {
	res, err := l.db.Exec(
		`UPDATE runs SET finished_at = ?, collected = ?, records = ?, notes = ? WHERE run_id = ?`,
		time.Now().UTC().Format(timeLayout), collected, records, notes, runID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (l *Log) ListRuns(limit int) ([]Run, error) {
	query := `SELECT run_id, created_at, finished_at, format, teacher, opponents, n_battles,
		collected, records, out_path, notes FROM runs ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                  Run
			created, opponents string
			finished, notes    sql.NullString
		)
		if err := rows.Scan(&r.ID, &created, &finished, &r.Format, &r.Teacher, &opponents,
			&r.NBattles, &r.Collected, &r.Records, &r.OutPath, &notes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(timeLayout, finished.String)
		}
		if opponents != "" {
			r.Opponents = strings.Split(opponents, ",")
		}
		r.Notes = notes.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Battles returns the battles of a run in play order.
func (l *Log) Battles(runID string) ([]Battle, error) {
	rows, err := l.db.Query(
		`SELECT idx, opponent_kind, battle_tag, status, turns, records, created_at
		 FROM battles WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("query battles: %w", err)
	}
	defer rows.Close()

	var out []Battle
	for rows.Next() {
		var (
			b       Battle
			tag     sql.NullString
			created string
		)
		if err := rows.Scan(&b.Index, &b.OpponentKind, &tag, &b.Status, &b.Turns, &b.Records, &created); err != nil {
			return nil, fmt.Errorf("scan battle: %w", err)
		}
		b.BattleTag = tag.String
		b.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, b)
	}
	return out, rows.Err()
}
