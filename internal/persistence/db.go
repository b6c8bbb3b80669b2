// Package persistence provides the SQLite archive of finished simulation runs.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/ideology-sim/internal/engine"
)

// ErrNotFound is returned when a run id is not in the archive.
var ErrNotFound = errors.New("run not found")

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// RunSummary is one archived run without its payload.
type RunSummary struct {
	ID           string    `db:"id" json:"id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	Population   int       `db:"population" json:"population"`
	Steps        int       `db:"steps" json:"steps"`
	Seed         int64     `db:"seed" json:"seed"`
	AverageAge   float64   `db:"average_age" json:"average_age"`
	Conservative int       `db:"conservative" json:"conservative"`
	Liberal      int       `db:"liberal" json:"liberal"`
	Neutral      int       `db:"neutral" json:"neutral"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite serialises writers; one connection avoids lock churn.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		population INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		average_age REAL NOT NULL,
		conservative INTEGER NOT NULL,
		liberal INTEGER NOT NULL,
		neutral INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun archives a finished run and returns its new id.
func (db *DB) SaveRun(population, steps int, res *engine.Result) (string, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	id := uuid.NewString()
	_, err = db.conn.Exec(`INSERT INTO runs
		(id, created_at, population, steps, seed, average_age,
		 conservative, liberal, neutral, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC(), population, steps, res.Seed, res.AverageAge,
		res.FinalCounts["conservative"], res.FinalCounts["liberal"], res.FinalCounts["neutral"],
		string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", id, err)
	}

	slog.Info("run archived", "id", id, "population", population, "steps", steps, "bytes", len(payload))
	return id, nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]RunSummary, error) {
	runs := []RunSummary{}
	err := db.conn.Select(&runs, `SELECT id, created_at, population, steps, seed,
		average_age, conservative, liberal, neutral
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	return runs, err
}

// GetRun returns the archived summary and full result for id.
func (db *DB) GetRun(id string) (*RunSummary, *engine.Result, error) {
	var row struct {
		RunSummary
		ResultJSON string `db:"result_json"`
	}
	err := db.conn.Get(&row, "SELECT * FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get run %s: %w", id, err)
	}

	var res engine.Result
	if err := json.Unmarshal([]byte(row.ResultJSON), &res); err != nil {
		return nil, nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &row.RunSummary, &res, nil
}
