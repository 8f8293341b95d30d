package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"marketnerd/internal/consultation"
)

// Archive persists finished sessions to SQLite so completed consultations
// survive restarts and can be listed or re-converted later.
type Archive struct {
	db *sql.DB
}

const archiveSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	created_at      TIMESTAMP NOT NULL,
	archived_at     TIMESTAMP NOT NULL,
	stage           TEXT NOT NULL,
	goal            TEXT NOT NULL DEFAULT '',
	audience        TEXT NOT NULL DEFAULT '',
	channels        TEXT NOT NULL DEFAULT '[]',
	budget          TEXT NOT NULL DEFAULT '',
	tone            TEXT NOT NULL DEFAULT '',
	timeline        TEXT NOT NULL DEFAULT '',
	question_count  INTEGER NOT NULL DEFAULT 0,
	has_enough_info INTEGER NOT NULL DEFAULT 0,
	final_plan      TEXT NOT NULL DEFAULT '',
	transcript      TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_sessions_stage ON sessions(stage);
CREATE INDEX IF NOT EXISTS idx_sessions_archived_at ON sessions(archived_at);
`

// OpenArchive opens or creates the archive database at path.
func OpenArchive(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save upserts one session. Saving the same session twice is harmless.
func (a *Archive) Save(st *consultation.State) error {
	channels, err := json.Marshal(st.Intent.Channels)
	if err != nil {
		return fmt.Errorf("marshal channels: %w", err)
	}
	transcript, err := json.Marshal(st.QAHistory)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	_, err = a.db.Exec(`
INSERT INTO sessions (id, created_at, archived_at, stage, goal, audience, channels, budget, tone, timeline, question_count, has_enough_info, final_plan, transcript)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	archived_at = excluded.archived_at,
	stage = excluded.stage,
	goal = excluded.goal,
	audience = excluded.audience,
	channels = excluded.channels,
	budget = excluded.budget,
	tone = excluded.tone,
	timeline = excluded.timeline,
	question_count = excluded.question_count,
	has_enough_info = excluded.has_enough_info,
	final_plan = excluded.final_plan,
	transcript = excluded.transcript`,
		st.SessionID, st.CreatedAt, time.Now(), string(st.Stage),
		st.Intent.Goal, st.Intent.Audience, string(channels),
		st.Intent.Budget, st.Intent.Tone, st.Intent.Timeline,
		st.QuestionCount, st.HasEnoughInfo, st.FinalPlan, string(transcript))
	if err != nil {
		return fmt.Errorf("save session %s: %w", st.SessionID, err)
	}
	return nil
}

// Record is one archived session row.
type Record struct {
	ID            string
	CreatedAt     time.Time
	ArchivedAt    time.Time
	Stage         consultation.Stage
	Intent        consultation.Intent
	QuestionCount int
	HasEnoughInfo bool
	FinalPlan     string
	Transcript    []consultation.QA
}

// Get loads one archived session.
func (a *Archive) Get(id string) (*Record, error) {
	row := a.db.QueryRow(`
SELECT id, created_at, archived_at, stage, goal, audience, channels, budget, tone, timeline, question_count, has_enough_info, final_plan, transcript
FROM sessions WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", consultation.ErrSessionNotFound, id)
	}
	return rec, err
}

// List returns the most recently archived sessions, newest first.
func (a *Archive) List(limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.Query(`
SELECT id, created_at, archived_at, stage, goal, audience, channels, budget, tone, timeline, question_count, has_enough_info, final_plan, transcript
FROM sessions ORDER BY archived_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec            Record
		stage          string
		channelsJSON   string
		transcriptJSON string
	)
	err := s.Scan(&rec.ID, &rec.CreatedAt, &rec.ArchivedAt, &stage,
		&rec.Intent.Goal, &rec.Intent.Audience, &channelsJSON,
		&rec.Intent.Budget, &rec.Intent.Tone, &rec.Intent.Timeline,
		&rec.QuestionCount, &rec.HasEnoughInfo, &rec.FinalPlan, &transcriptJSON)
	if err != nil {
		return nil, err
	}
	rec.Stage = consultation.Stage(stage)
	if err := json.Unmarshal([]byte(channelsJSON), &rec.Intent.Channels); err != nil {
		return nil, fmt.Errorf("decode channels for %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(transcriptJSON), &rec.Transcript); err != nil {
		return nil, fmt.Errorf("decode transcript for %s: %w", rec.ID, err)
	}
	return &rec, nil
}
