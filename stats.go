package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// Attempt is one verify outcome.
type Attempt struct {
	Exercise  string
	SessionID string
	Outcome   Result
	At        time.Time
}

// ExerciseStats aggregates the attempts of one exercise.
type ExerciseStats struct {
	Exercise string `json:"exercise"`
	Correct  int    `json:"correct"`
	Errors   int    `json:"errors"`
}

// AttemptRecorder stores verify outcomes.
type AttemptRecorder interface {
	Record(ctx context.Context, a Attempt) error
	Stats(ctx context.Context) ([]ExerciseStats, error)
	Close() error
}

// MemoryRecorder keeps attempt counters in memory.
type MemoryRecorder struct {
	mu     sync.Mutex
	counts map[string]*ExerciseStats
}

// NewMemoryRecorder returns an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{counts: make(map[string]*ExerciseStats)}
}

// Record counts one attempt. Any outcome other than correct is an error.
func (m *MemoryRecorder) Record(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.counts[a.Exercise]
	if !ok {
		st = &ExerciseStats{Exercise: a.Exercise}
		m.counts[a.Exercise] = st
	}
	if a.Outcome == ResultCorrect {
		st.Correct++
	} else {
		st.Errors++
	}
	return nil
}

// Stats returns the counters sorted by exercise.
func (m *MemoryRecorder) Stats(_ context.Context) ([]ExerciseStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ExerciseStats, 0, len(m.counts))
	for _, st := range m.counts {
		out = append(out, *st)
	}
	sortStats(out)
	return out, nil
}

// Close is a no-op.
func (m *MemoryRecorder) Close() error { return nil }

// SQLiteRecorder persists attempts in a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// OpenSQLiteRecorder opens (and creates if needed) the database at path.
func OpenSQLiteRecorder(ctx context.Context, path string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create stats dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	db.SetMaxOpenConns(1)

	r := &SQLiteRecorder{db: db}
	if err := r.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRecorder) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS verify_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exercise TEXT NOT NULL,
			session_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			attempt_ts TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_verify_attempts_exercise ON verify_attempts(exercise);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Record inserts one attempt row.
func (r *SQLiteRecorder) Record(ctx context.Context, a Attempt) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verify_attempts(exercise, session_id, outcome, attempt_ts) VALUES(?,?,?,?)`,
		a.Exercise,
		a.SessionID,
		string(a.Outcome),
		a.At.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// Stats aggregates the attempt rows per exercise, sorted by exercise.
func (r *SQLiteRecorder) Stats(ctx context.Context) ([]ExerciseStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT exercise,
			SUM(CASE WHEN outcome = 'correct' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'correct' THEN 0 ELSE 1 END)
		FROM verify_attempts
		GROUP BY exercise
		ORDER BY exercise`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	out := []ExerciseStats{}
	for rows.Next() {
		var st ExerciseStats
		if err := rows.Scan(&st.Exercise, &st.Correct, &st.Errors); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func sortStats(s []ExerciseStats) {
	slices.SortFunc(s, func(a, b ExerciseStats) int {
		return strings.Compare(a.Exercise, b.Exercise)
	})
}
